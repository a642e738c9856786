package comments

import (
	"context"

	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
)

// RepositoryPort defines data access methods for comments.
type RepositoryPort interface {
	OwnerOf(ctx context.Context, id int64) (int64, error)
	Get(ctx context.Context, id int64) (Comment, error)
	List(ctx context.Context, f Filter, page shared.PageRequest) ([]Comment, int, error)
	Create(ctx context.Context, articleID, userID int64, content string) (Comment, error)
	Update(ctx context.Context, id int64, content string) (Comment, error)
	Delete(ctx context.Context, id int64) error
}

// Service handles comment business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// OwnerOf returns the author of comment id. It is the comment target lookup.
func (s *Service) OwnerOf(ctx context.Context, id int64) (int64, error) {
	return s.repo.OwnerOf(ctx, id)
}

// Get loads comment id.
func (s *Service) Get(ctx context.Context, id int64) (Comment, error) {
	return s.repo.Get(ctx, id)
}

// List returns one page of comments matching f.
func (s *Service) List(ctx context.Context, f Filter, page shared.PageRequest) (shared.Page[Comment], error) {
	items, total, err := s.repo.List(ctx, f, page)
	if err != nil {
		return shared.Page[Comment]{}, err
	}
	return shared.NewPage(items, page, total), nil
}

// Create adds a comment by userID on articleID.
func (s *Service) Create(ctx context.Context, articleID, userID int64, content string) (Comment, error) {
	return s.repo.Create(ctx, articleID, userID, content)
}

// Update edits comment id.
func (s *Service) Update(ctx context.Context, id int64, content string) (Comment, error) {
	return s.repo.Update(ctx, id, content)
}

// Delete removes comment id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
