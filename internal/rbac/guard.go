package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
)

// OwnerLookup returns the owning principal id of a resource, or shared.ErrNotFound.
type OwnerLookup interface {
	OwnerOf(ctx context.Context, id int64) (int64, error)
}

// OwnerLookupFunc adapts a function to OwnerLookup.
type OwnerLookupFunc func(ctx context.Context, id int64) (int64, error)

// OwnerOf calls f.
func (f OwnerLookupFunc) OwnerOf(ctx context.Context, id int64) (int64, error) {
	return f(ctx, id)
}

// SelfOwned is the owner lookup for principals themselves: a user owns its own account.
func SelfOwned(exists func(ctx context.Context, id int64) (bool, error)) OwnerLookup {
	return OwnerLookupFunc(func(ctx context.Context, id int64) (int64, error) {
		ok, err := exists(ctx, id)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, shared.ErrNotFound
		}
		return id, nil
	})
}

// ResolveTarget confirms the resource exists and loads its owner.
func ResolveTarget(ctx context.Context, typ ResourceType, id int64, lookup OwnerLookup) (Resource, error) {
	owner, err := lookup.OwnerOf(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Resource{}, fmt.Errorf("%s with id %d: %w", typ, id, shared.ErrNotFound)
		}
		return Resource{}, fmt.Errorf("rbac: lookup %s %d: %w", typ, id, err)
	}
	return Resource{Type: typ, ID: id, OwnerID: owner}, nil
}

type resourceContextKey struct{}

// ContextWithResource stores the guarded resource in ctx.
func ContextWithResource(ctx context.Context, res Resource) context.Context {
	return context.WithValue(ctx, resourceContextKey{}, res)
}

// ResourceFromContext returns the resource stored by Guard.
func ResourceFromContext(ctx context.Context) (Resource, bool) {
	res, ok := ctx.Value(resourceContextKey{}).(Resource)
	return res, ok
}
