package roles

import (
	"context"
	"fmt"

	"github.com/DonzTea/cms-crud-restful-api/internal/platform/db"
	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	db db.Querier
}

// NewRepository constructs a repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

// ListRoles returns the role catalog.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("roles: list: %w", err)
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("roles: scan: %w", err)
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

// RolesForUser returns the names of the roles granted to userID. Unknown
// users yield an empty slice.
func (r *Repository) RolesForUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("roles: for user %d: %w", userID, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("roles: scan: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ReplaceForUser sets the role set of userID to names using q, which is
// normally a transaction. Unknown role names fail with shared.ErrValidation.
func ReplaceForUser(ctx context.Context, q db.Querier, userID int64, names []string) error {
	if _, err := q.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("roles: clear user %d: %w", userID, err)
	}
	if len(names) == 0 {
		return nil
	}
	tag, err := q.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = ANY($2)`, userID, names)
	if err != nil {
		return fmt.Errorf("roles: assign user %d: %w", userID, err)
	}
	if tag.RowsAffected() != int64(len(names)) {
		return fmt.Errorf("roles: unknown role in %v: %w", names, shared.ErrValidation)
	}
	return nil
}
