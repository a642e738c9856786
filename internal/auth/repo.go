package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/DonzTea/cms-crud-restful-api/internal/platform/db"
	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	SetResetToken(ctx context.Context, userID int64, tokenHash string, expires time.Time) error
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.Querier
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(q db.Querier) *PGRepository {
	return &PGRepository{db: q}
}

const credentialColumns = `id, username, email, password, reset_password_expires`

func (r *PGRepository) findOne(ctx context.Context, where string, args ...any) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx, `SELECT `+credentialColumns+` FROM users WHERE `+where, args...).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.ResetExpires)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("auth: find user: %w", err)
	}
	return &u, nil
}

// FindByUsername fetches a user by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx, `username = $1`, username)
}

// FindByEmail fetches a user by email, ignoring case.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, `lower(email) = lower($1) ORDER BY id LIMIT 1`, email)
}

// SetResetToken stores the hashed reset token and its expiry.
func (r *PGRepository) SetResetToken(ctx context.Context, userID int64, tokenHash string, expires time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET reset_password_token = $2, reset_password_expires = $3, updated_at = NOW()
		WHERE id = $1`, userID, tokenHash, expires.UTC())
	if err != nil {
		return fmt.Errorf("auth: set reset token: %w", err)
	}
	return nil
}

// FindByResetToken fetches the user holding an unexpired reset token.
func (r *PGRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*User, error) {
	return r.findOne(ctx, `reset_password_token = $1 AND reset_password_expires > $2`, tokenHash, now.UTC())
}

// UpdatePassword replaces the password hash and clears any reset token.
func (r *PGRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET password = $2, reset_password_token = NULL, reset_password_expires = NULL, updated_at = NOW()
		WHERE id = $1`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("auth: update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
