package articles

import (
	"context"

	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
)

// RepositoryPort defines data access methods for articles.
type RepositoryPort interface {
	OwnerOf(ctx context.Context, id int64) (int64, error)
	Get(ctx context.Context, id int64) (Article, error)
	List(ctx context.Context, page shared.PageRequest) ([]Article, int, error)
	ListByUser(ctx context.Context, userID int64, page shared.PageRequest) ([]Article, int, error)
	Create(ctx context.Context, userID int64, title, content string) (Article, error)
	Update(ctx context.Context, id int64, c Changes) (Article, error)
	Delete(ctx context.Context, id int64) error
}

// Service handles article business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// OwnerOf returns the author of article id. It is the article target lookup.
func (s *Service) OwnerOf(ctx context.Context, id int64) (int64, error) {
	return s.repo.OwnerOf(ctx, id)
}

// Get loads article id.
func (s *Service) Get(ctx context.Context, id int64) (Article, error) {
	return s.repo.Get(ctx, id)
}

// List returns one page of all articles.
func (s *Service) List(ctx context.Context, page shared.PageRequest) (shared.Page[Article], error) {
	items, total, err := s.repo.List(ctx, page)
	if err != nil {
		return shared.Page[Article]{}, err
	}
	return shared.NewPage(items, page, total), nil
}

// ListByUser returns one page of the articles authored by userID.
func (s *Service) ListByUser(ctx context.Context, userID int64, page shared.PageRequest) (shared.Page[Article], error) {
	items, total, err := s.repo.ListByUser(ctx, userID, page)
	if err != nil {
		return shared.Page[Article]{}, err
	}
	return shared.NewPage(items, page, total), nil
}

// Create publishes an article owned by userID.
func (s *Service) Create(ctx context.Context, userID int64, title, content string) (Article, error) {
	return s.repo.Create(ctx, userID, title, content)
}

// Update edits article id.
func (s *Service) Update(ctx context.Context, id int64, c Changes) (Article, error) {
	return s.repo.Update(ctx, id, c)
}

// Delete removes article id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
