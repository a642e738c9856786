package movies

import "context"

// RepositoryPort defines data access methods for movies and actors.
type RepositoryPort interface {
	ListMovies(ctx context.Context) ([]Movie, error)
	CreateMovie(ctx context.Context, in NewMovie) (Movie, error)
	ListActors(ctx context.Context) ([]Actor, error)
	CreateActor(ctx context.Context, name string) (Actor, error)
}

// Service handles movie catalog logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListMovies returns the catalog.
func (s *Service) ListMovies(ctx context.Context) ([]Movie, error) {
	return s.repo.ListMovies(ctx)
}

// CreateMovie adds a movie with its cast.
func (s *Service) CreateMovie(ctx context.Context, in NewMovie) (Movie, error) {
	return s.repo.CreateMovie(ctx, in)
}

// ListActors returns every actor.
func (s *Service) ListActors(ctx context.Context) ([]Actor, error) {
	return s.repo.ListActors(ctx)
}

// CreateActor adds an actor.
func (s *Service) CreateActor(ctx context.Context, name string) (Actor, error) {
	return s.repo.CreateActor(ctx, name)
}
