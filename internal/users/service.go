package users

import (
	"context"
	"fmt"

	"github.com/DonzTea/cms-crud-restful-api/internal/rbac"
	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, page shared.PageRequest) ([]User, int, error)
	Taken(ctx context.Context, username, email string, excludeID int64) (bool, bool, error)
	Create(ctx context.Context, rec Record, roleNames []string) (User, error)
	Update(ctx context.Context, id int64, f Fields, roleNames []string) (User, error)
	Delete(ctx context.Context, id int64) error
}

// Service handles user business logic.
type Service struct {
	repo  RepositoryPort
	roles rbac.RoleLookup
	cost  int
}

// NewService builds Service instance. cost is the bcrypt work factor.
func NewService(repo RepositoryPort, roles rbac.RoleLookup, cost int) *Service {
	return &Service{repo: repo, roles: roles, cost: cost}
}

// Exists reports whether user id is present.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// OwnerLookup returns the target lookup for user resources.
func (s *Service) OwnerLookup() rbac.OwnerLookup {
	return rbac.SelfOwned(s.repo.Exists)
}

// Register creates an account after checking for duplicates.
func (s *Service) Register(ctx context.Context, acc Account) (User, error) {
	if err := s.checkTaken(ctx, acc.Username, acc.Email, 0); err != nil {
		return User{}, err
	}
	roleNames, err := normalizeRoles(acc.Roles)
	if err != nil {
		return User{}, err
	}
	if len(roleNames) == 0 {
		roleNames = []string{string(rbac.RoleUser)}
	}
	hash, err := HashPassword(acc.Password, s.cost)
	if err != nil {
		return User{}, err
	}
	u, err := s.repo.Create(ctx, Record{
		Name:         acc.Name,
		Username:     acc.Username,
		Email:        acc.Email,
		PasswordHash: hash,
	}, roleNames)
	if err != nil {
		return User{}, err
	}
	u.Roles = roleNames
	return u, nil
}

// Profile loads a user together with its current roles.
func (s *Service) Profile(ctx context.Context, id int64) (User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	names, err := s.roles.RolesForUser(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("users: roles for %d: %w", id, err)
	}
	u.Roles = rbac.NewRoleSet(names...).Names()
	return u, nil
}

// Update applies changes to user id.
func (s *Service) Update(ctx context.Context, id int64, c Changes) (User, error) {
	if c.Username != nil || c.Email != nil {
		if err := s.checkTaken(ctx, deref(c.Username), deref(c.Email), id); err != nil {
			return User{}, err
		}
	}
	var roleNames []string
	if c.Roles != nil {
		var err error
		if roleNames, err = normalizeRoles(c.Roles); err != nil {
			return User{}, err
		}
	}
	f := Fields{Name: c.Name, Username: c.Username, Email: c.Email}
	if c.Password != nil {
		hash, err := HashPassword(*c.Password, s.cost)
		if err != nil {
			return User{}, err
		}
		f.PasswordHash = &hash
	}
	return s.repo.Update(ctx, id, f, roleNames)
}

// List returns one page of users.
func (s *Service) List(ctx context.Context, page shared.PageRequest) (shared.Page[User], error) {
	items, total, err := s.repo.List(ctx, page)
	if err != nil {
		return shared.Page[User]{}, err
	}
	return shared.NewPage(items, page, total), nil
}

// Delete removes user id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) checkTaken(ctx context.Context, username, email string, excludeID int64) error {
	usernameTaken, emailTaken, err := s.repo.Taken(ctx, username, email, excludeID)
	if err != nil {
		return err
	}
	fields := map[string]string{}
	if usernameTaken {
		fields["username"] = "is already taken"
	}
	if emailTaken {
		fields["email"] = "is already in use"
	}
	if len(fields) > 0 {
		return shared.NewFieldError(shared.ErrDuplicate, fields)
	}
	return nil
}

// normalizeRoles upper-cases role names and rejects unknown ones.
func normalizeRoles(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	seen := make(map[rbac.Role]bool, len(names))
	for _, name := range names {
		role, ok := rbac.ParseRole(name)
		if !ok {
			return nil, shared.NewFieldError(shared.ErrValidation, map[string]string{"roles": fmt.Sprintf("contains unknown role %q", name)})
		}
		if !seen[role] {
			seen[role] = true
			out = append(out, string(role))
		}
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
