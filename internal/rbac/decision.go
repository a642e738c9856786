package rbac

import (
	"fmt"

	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
)

// Reason explains an authorization outcome.
type Reason string

// Decision reasons.
const (
	ReasonUnauthenticated       Reason = "unauthenticated"
	ReasonProtectedTarget       Reason = "protected_target"
	ReasonOwner                 Reason = "owner"
	ReasonAdmin                 Reason = "admin"
	ReasonRole                  Reason = "role"
	ReasonInsufficientPrivilege Reason = "insufficient_privilege"
)

// Input is everything a decision is computed from.
type Input struct {
	Principal   Principal
	Roles       RoleSet
	Requirement Requirement
	Resource    *Resource
}

// Decision is the allow/deny outcome with its reason.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Err converts a denial into the matching taxonomy error.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonUnauthenticated:
		return shared.ErrAuthenticationMissing
	case d.Reason == ReasonProtectedTarget:
		return fmt.Errorf("bootstrap administrator cannot be modified: %w", shared.ErrAuthorizationDenied)
	default:
		return shared.ErrAuthorizationDenied
	}
}

// Decide evaluates the access policy. First match wins:
// the bootstrap administrator is never a destructive target, then ownership,
// then the ADMIN override, then the required role.
func Decide(in Input) Decision {
	if !in.Principal.Authenticated() {
		return deny(ReasonUnauthenticated)
	}
	res := in.Resource
	if in.Requirement.Destructive && res != nil && res.Type == ResourceUser && res.ID == BootstrapAdminID {
		return deny(ReasonProtectedTarget)
	}
	if in.Requirement.Role == "" && res != nil && res.OwnerID == in.Principal.ID {
		return allow(ReasonOwner)
	}
	if in.Roles.Has(RoleAdmin) {
		return allow(ReasonAdmin)
	}
	if in.Requirement.Role != "" && in.Roles.Has(in.Requirement.Role) {
		return allow(ReasonRole)
	}
	return deny(ReasonInsufficientPrivilege)
}

func allow(reason Reason) Decision {
	return Decision{Allowed: true, Reason: reason}
}

func deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}
