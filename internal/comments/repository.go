package comments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/DonzTea/cms-crud-restful-api/internal/platform/db"
	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
)

const commentColumns = `id, content, article_id, user_id, created_at, updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	db db.Querier
}

// NewRepository constructs a repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.Content, &c.ArticleID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// OwnerOf returns the author of comment id.
func (r *Repository) OwnerOf(ctx context.Context, id int64) (int64, error) {
	var owner int64
	if err := r.db.QueryRow(ctx, `SELECT user_id FROM comments WHERE id = $1`, id).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, fmt.Errorf("comments: owner of %d: %w", id, err)
	}
	return owner, nil
}

// Get loads comment id.
func (r *Repository) Get(ctx context.Context, id int64) (Comment, error) {
	c, err := scanComment(r.db.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comment{}, fmt.Errorf("comment %d: %w", id, shared.ErrNotFound)
		}
		return Comment{}, fmt.Errorf("comments: get %d: %w", id, err)
	}
	return c, nil
}

// List returns one page of comments matching f, oldest first.
func (r *Repository) List(ctx context.Context, f Filter, page shared.PageRequest) ([]Comment, int, error) {
	const where = ` WHERE ($1::bigint = 0 OR article_id = $1) AND ($2::bigint = 0 OR user_id = $2)`
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM comments`+where, f.ArticleID, f.UserID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("comments: count: %w", err)
	}
	rows, err := r.db.Query(ctx, `SELECT `+commentColumns+` FROM comments`+where+`
		ORDER BY created_at, id LIMIT $3 OFFSET $4`, f.ArticleID, f.UserID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("comments: list: %w", err)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("comments: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Create inserts a comment by userID on articleID.
func (r *Repository) Create(ctx context.Context, articleID, userID int64, content string) (Comment, error) {
	c, err := scanComment(r.db.QueryRow(ctx, `
		INSERT INTO comments (content, article_id, user_id)
		VALUES ($1, $2, $3)
		RETURNING `+commentColumns, content, articleID, userID))
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Comment{}, fmt.Errorf("article %d: %w", articleID, shared.ErrNotFound)
		}
		return Comment{}, fmt.Errorf("comments: create: %w", err)
	}
	return c, nil
}

// Update replaces the content of comment id. The author is never changed.
func (r *Repository) Update(ctx context.Context, id int64, content string) (Comment, error) {
	c, err := scanComment(r.db.QueryRow(ctx, `
		UPDATE comments SET content = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+commentColumns, id, content))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Comment{}, fmt.Errorf("comment %d: %w", id, shared.ErrNotFound)
		}
		return Comment{}, fmt.Errorf("comments: update %d: %w", id, err)
	}
	return c, nil
}

// Delete removes comment id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("comments: delete %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("comment %d: %w", id, shared.ErrNotFound)
	}
	return nil
}
