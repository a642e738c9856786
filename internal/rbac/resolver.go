package rbac

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
)

// Credential headers, checked in order.
const (
	HeaderAuthorization = "Authorization"
	HeaderAccessToken   = "x-access-token"
)

// TokenVerifier checks a signed credential and returns the principal id it binds.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Resolver turns a raw credential header into a Principal.
type Resolver struct {
	verifier TokenVerifier
}

// NewResolver constructs a Resolver over verifier.
func NewResolver(verifier TokenVerifier) *Resolver {
	return &Resolver{verifier: verifier}
}

// CredentialFromRequest returns the raw credential header value.
func CredentialFromRequest(r *http.Request) string {
	if raw := strings.TrimSpace(r.Header.Get(HeaderAuthorization)); raw != "" {
		return raw
	}
	return strings.TrimSpace(r.Header.Get(HeaderAccessToken))
}

// Resolve verifies header, accepting values with or without a "Bearer " prefix.
func (r *Resolver) Resolve(header string) (Principal, error) {
	token := stripBearer(header)
	if token == "" {
		return Principal{}, shared.ErrAuthenticationMissing
	}
	id, err := r.verifier.Verify(token)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", shared.ErrAuthenticationInvalid, err)
	}
	if id <= 0 {
		return Principal{}, shared.ErrAuthenticationInvalid
	}
	return Principal{ID: id}, nil
}

func stripBearer(header string) string {
	header = strings.TrimSpace(header)
	if strings.EqualFold(header, "bearer") {
		return ""
	}
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		header = header[7:]
	}
	return strings.TrimSpace(header)
}

// ContextWithPrincipal attaches p to ctx.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return shared.ContextWithUserID(ctx, p.ID)
}

// PrincipalFromContext returns the principal resolved for the request.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	id, ok := shared.UserIDFromContext(ctx)
	if !ok {
		return Principal{}, false
	}
	return Principal{ID: id}, true
}
