package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
)

// NewValidator returns a validator that reports json field names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate runs struct validation and converts failures into a shared.FieldError.
func Validate(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		if _, seen := fields[fieldErr.Field()]; seen {
			continue
		}
		fields[fieldErr.Field()] = describe(fieldErr)
	}
	return shared.NewFieldError(shared.ErrValidation, fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is not exists"
	case "email":
		return "is not an email"
	case "alphanum":
		return "is containing illegal character"
	case "min":
		if fe.Kind().String() == "slice" {
			return "is expected to have at least " + fe.Param() + " items"
		}
		return "is expected to be at least " + fe.Param() + " characters long"
	case "max":
		return "is expected to be at most " + fe.Param() + " characters long"
	case "eqfield":
		return "does not match " + strings.ToLower(fe.Param())
	case "oneof":
		return "is expected to be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}
