package rbac

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role is a named privilege grant held by a principal.
type Role string

// Roles known to the system.
const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
	RolePM    Role = "PM"
)

// AllRoles lists every role in catalog order.
var AllRoles = []Role{RoleUser, RoleAdmin, RolePM}

// ParseRole folds name to upper case and reports whether it is a known role.
func ParseRole(name string) (Role, bool) {
	role := Role(cases.Upper(language.Und).String(strings.TrimSpace(name)))
	return role, slices.Contains(AllRoles, role)
}

// RoleSet is the set of roles granted to a principal.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from raw role names, dropping unknown ones.
func NewRoleSet(names ...string) RoleSet {
	set := make(RoleSet, len(names))
	for _, name := range names {
		if role, ok := ParseRole(name); ok {
			set[role] = struct{}{}
		}
	}
	return set
}

// Has reports whether the set contains role.
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// Names returns the role names in catalog order.
func (s RoleSet) Names() []string {
	names := make([]string, 0, len(s))
	for _, role := range AllRoles {
		if s.Has(role) {
			names = append(names, string(role))
		}
	}
	return names
}

// BootstrapAdminID is the seeded administrator that may never be a destructive target.
const BootstrapAdminID int64 = 1

// ResourceType names an ownership-scoped entity.
type ResourceType string

// Resource types guarded by ownership checks.
const (
	ResourceArticle ResourceType = "article"
	ResourceComment ResourceType = "comment"
	ResourceUser    ResourceType = "user"
)

// Resource is a guarded target together with its owner.
type Resource struct {
	Type    ResourceType
	ID      int64
	OwnerID int64
}

// Principal describes the authenticated actor.
type Principal struct {
	ID int64
}

// Authenticated reports whether a principal was resolved.
func (p Principal) Authenticated() bool {
	return p.ID > 0
}

// Requirement describes what an operation demands beyond authentication.
// An empty Role means the operation is ownership-scoped.
type Requirement struct {
	Role        Role
	Destructive bool
}
