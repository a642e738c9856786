package articles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/DonzTea/cms-crud-restful-api/internal/platform/db"
	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
)

const articleColumns = `id, title, content, user_id, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	db db.Querier
}

// NewRepository constructs a repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

func scanArticle(row pgx.Row) (Article, error) {
	var a Article
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.UserID, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// OwnerOf returns the author of article id.
func (r *Repository) OwnerOf(ctx context.Context, id int64) (int64, error) {
	var owner int64
	if err := r.db.QueryRow(ctx, `SELECT user_id FROM articles WHERE id = $1`, id).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, fmt.Errorf("articles: owner of %d: %w", id, err)
	}
	return owner, nil
}

// Get loads article id.
func (r *Repository) Get(ctx context.Context, id int64) (Article, error) {
	a, err := scanArticle(r.db.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Article{}, fmt.Errorf("article %d: %w", id, shared.ErrNotFound)
		}
		return Article{}, fmt.Errorf("articles: get %d: %w", id, err)
	}
	return a, nil
}

// List returns one page of all articles with the total count.
func (r *Repository) List(ctx context.Context, page shared.PageRequest) ([]Article, int, error) {
	return r.list(ctx, page, 0)
}

// ListByUser returns one page of the articles authored by userID.
func (r *Repository) ListByUser(ctx context.Context, userID int64, page shared.PageRequest) ([]Article, int, error) {
	return r.list(ctx, page, userID)
}

// list filters by author when userID is positive.
func (r *Repository) list(ctx context.Context, page shared.PageRequest, userID int64) ([]Article, int, error) {
	const filter = ` WHERE ($1::bigint = 0 OR user_id = $1)`
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM articles`+filter, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("articles: count: %w", err)
	}
	rows, err := r.db.Query(ctx, `SELECT `+articleColumns+` FROM articles`+filter+`
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, userID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("articles: list: %w", err)
	}
	defer rows.Close()

	var out []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("articles: scan: %w", err)
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// Create inserts an article owned by userID.
func (r *Repository) Create(ctx context.Context, userID int64, title, content string) (Article, error) {
	a, err := scanArticle(r.db.QueryRow(ctx, `
		INSERT INTO articles (title, content, user_id)
		VALUES ($1, $2, $3)
		RETURNING `+articleColumns, title, content, userID))
	if err != nil {
		return Article{}, fmt.Errorf("articles: create: %w", err)
	}
	return a, nil
}

// Update applies c to article id. The author is never changed.
func (r *Repository) Update(ctx context.Context, id int64, c Changes) (Article, error) {
	a, err := scanArticle(r.db.QueryRow(ctx, `
		UPDATE articles SET
			title = COALESCE($2, title),
			content = COALESCE($3, content),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+articleColumns, id, c.Title, c.Content))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Article{}, fmt.Errorf("article %d: %w", id, shared.ErrNotFound)
		}
		return Article{}, fmt.Errorf("articles: update %d: %w", id, err)
	}
	return a, nil
}

// Delete removes article id and, by cascade, its comments.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("articles: delete %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("article %d: %w", id, shared.ErrNotFound)
	}
	return nil
}
