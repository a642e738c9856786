package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/DonzTea/cms-crud-restful-api/internal/platform/db"
	"github.com/DonzTea/cms-crud-restful-api/internal/roles"
	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
)

const userColumns = `id, name, username, email, avatar, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	db db.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool db.Pool) *Repository {
	return &Repository{db: pool}
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Get loads a user by id.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
		}
		return User{}, fmt.Errorf("users: get %d: %w", id, err)
	}
	return u, nil
}

// Exists reports whether a user row is present.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("users: exists %d: %w", id, err)
	}
	return ok, nil
}

// List returns one page of users ordered by id together with the total count.
func (r *Repository) List(ctx context.Context, page shared.PageRequest) ([]User, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("users: count: %w", err)
	}
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("users: scan: %w", err)
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// Taken reports which of username and email already belong to a user other
// than excludeID. Pass 0 to check against every user.
func (r *Repository) Taken(ctx context.Context, username, email string, excludeID int64) (usernameTaken, emailTaken bool, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT COALESCE(bool_or(username = $1), false), COALESCE(bool_or(email = $2), false)
		FROM users
		WHERE (username = $1 OR email = $2) AND id <> $3`, username, email, excludeID).Scan(&usernameTaken, &emailTaken)
	if err != nil {
		return false, false, fmt.Errorf("users: taken: %w", err)
	}
	return usernameTaken, emailTaken, nil
}

// Create inserts the user and grants roleNames in one transaction.
func (r *Repository) Create(ctx context.Context, rec Record, roleNames []string) (User, error) {
	var created User
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		u, err := scanUser(tx.QueryRow(ctx, `
			INSERT INTO users (name, username, email, password)
			VALUES ($1, $2, $3, $4)
			RETURNING `+userColumns, rec.Name, rec.Username, rec.Email, rec.PasswordHash))
		if err != nil {
			return wrapWriteError("insert", err)
		}
		if err := roles.ReplaceForUser(ctx, tx, u.ID, roleNames); err != nil {
			return err
		}
		created = u
		return nil
	})
	return created, err
}

// Update applies fields to user id and, when roleNames is non-nil, replaces
// its role set, all in one transaction. The owner columns of other tables
// are never touched.
func (r *Repository) Update(ctx context.Context, id int64, f Fields, roleNames []string) (User, error) {
	var updated User
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		u, err := scanUser(tx.QueryRow(ctx, `
			UPDATE users SET
				name = COALESCE($2, name),
				username = COALESCE($3, username),
				email = COALESCE($4, email),
				password = COALESCE($5, password),
				updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns, id, f.Name, f.Username, f.Email, f.PasswordHash))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
			}
			return wrapWriteError("update", err)
		}
		if roleNames != nil {
			if err := roles.ReplaceForUser(ctx, tx, id, roleNames); err != nil {
				return err
			}
		}
		updated = u
		return nil
	})
	return updated, err
}

// Delete removes user id. Articles, comments and role grants cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("users: delete %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, shared.ErrNotFound)
	}
	return nil
}

func wrapWriteError(op string, err error) error {
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("users: %s: %w", op, shared.ErrDuplicate)
	}
	return fmt.Errorf("users: %s: %w", op, err)
}
