package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DonzTea/cms-crud-restful-api/internal/platform/httpx"
	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
)

// RoleLookup returns the role names currently granted to a user. An unknown
// user yields an empty slice. Results are never cached.
type RoleLookup interface {
	RolesForUser(ctx context.Context, userID int64) ([]string, error)
}

// DecisionRecorder observes authorization outcomes.
type DecisionRecorder interface {
	RecordDecision(d Decision)
}

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Resolver *Resolver
	Roles    RoleLookup
	Logger   *slog.Logger
	Recorder DecisionRecorder
}

// Authenticate resolves the request credential and stores the principal in context.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.Resolver.Resolve(CredentialFromRequest(r))
		if err != nil {
			if m.Logger != nil {
				m.Logger.Debug("authentication rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
			}
			// Verifier detail stays in the log.
			if errors.Is(err, shared.ErrAuthenticationInvalid) {
				err = shared.ErrAuthenticationInvalid
			}
			httpx.RespondError(w, m.Logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

// RequireRole ensures the current principal holds role. ADMIN always passes.
func (m Middleware) RequireRole(role Role) func(http.Handler) http.Handler {
	req := Requirement{Role: role}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := m.authorizeRequest(r, req, nil); err != nil {
				httpx.RespondError(w, m.Logger, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Guard confirms the resource addressed by the path parameter exists before
// anything else runs, answering 404 otherwise.
func (m Middleware) Guard(typ ResourceType, param string, lookup OwnerLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := httpx.PathID(r, param)
			if !ok {
				httpx.RespondError(w, m.Logger, fmt.Errorf("%s with id %q: %w", typ, chi.URLParam(r, param), shared.ErrNotFound))
				return
			}
			res, err := ResolveTarget(r.Context(), typ, id, lookup)
			if err != nil {
				httpx.RespondError(w, m.Logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithResource(r.Context(), res)))
		})
	}
}

// Self makes the principal's own account the guarded resource, for routes
// that act on the caller without an id in the path.
func (m Middleware) Self(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, m.Logger, shared.ErrAuthenticationMissing)
			return
		}
		res := Resource{Type: ResourceUser, ID: principal.ID, OwnerID: principal.ID}
		next.ServeHTTP(w, r.WithContext(ContextWithResource(r.Context(), res)))
	})
}

// RequireOwnership allows the owner of the guarded resource or an ADMIN.
// Destructive operations never pass for the bootstrap administrator.
func (m Middleware) RequireOwnership(destructive bool) func(http.Handler) http.Handler {
	req := Requirement{Destructive: destructive}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, ok := ResourceFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, m.Logger, errors.New("rbac: ownership check without guarded resource"))
				return
			}
			if err := m.authorizeRequest(r, req, &res); err != nil {
				httpx.RespondError(w, m.Logger, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authorize fetches the principal's current roles and evaluates the policy.
// A role lookup failure is returned as an error, not a denial.
func (m Middleware) Authorize(ctx context.Context, principal Principal, req Requirement, res *Resource) (Decision, error) {
	in := Input{Principal: principal, Requirement: req, Resource: res}
	if principal.Authenticated() && needsRoles(principal, req, res) {
		names, err := m.Roles.RolesForUser(ctx, principal.ID)
		if err != nil {
			return Decision{}, fmt.Errorf("rbac: roles for user %d: %w", principal.ID, err)
		}
		in.Roles = NewRoleSet(names...)
	}
	d := Decide(in)
	m.record(ctx, d, slog.Int64("principal", principal.ID))
	return d, nil
}

func (m Middleware) authorizeRequest(r *http.Request, req Requirement, res *Resource) error {
	principal, _ := PrincipalFromContext(r.Context())
	d, err := m.Authorize(r.Context(), principal, req, res)
	if err != nil {
		return err
	}
	return d.Err()
}

// needsRoles skips the role fetch when ownership alone settles the decision.
func needsRoles(p Principal, req Requirement, res *Resource) bool {
	if res == nil || req.Role != "" {
		return true
	}
	if req.Destructive && res.Type == ResourceUser && res.ID == BootstrapAdminID {
		return false
	}
	return res.OwnerID != p.ID
}

func (m Middleware) record(ctx context.Context, d Decision, attrs ...slog.Attr) {
	if m.Recorder != nil {
		m.Recorder.RecordDecision(d)
	}
	if m.Logger != nil {
		attrs = append(attrs, slog.Bool("allowed", d.Allowed), slog.String("reason", string(d.Reason)))
		m.Logger.LogAttrs(ctx, slog.LevelDebug, "authorization decision", attrs...)
	}
}
