package admin

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/DonzTea/cms-crud-restful-api/internal/articles"
	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
	"github.com/DonzTea/cms-crud-restful-api/internal/users"
)

// UserDetail is an account together with its roles and latest articles.
type UserDetail struct {
	users.User
	Articles shared.Page[articles.Article] `json:"articles"`
}

// Service aggregates the data behind the administration screens.
type Service struct {
	users    *users.Service
	articles *articles.Service
}

// NewService builds Service instance.
func NewService(users *users.Service, articles *articles.Service) *Service {
	return &Service{users: users, articles: articles}
}

// UserDetail loads the profile and the article listing of user id concurrently.
func (s *Service) UserDetail(ctx context.Context, id int64, page shared.PageRequest) (UserDetail, error) {
	var detail UserDetail

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		u, err := s.users.Profile(ctx, id)
		if err != nil {
			return err
		}
		detail.User = u
		return nil
	})

	g.Go(func() error {
		list, err := s.articles.ListByUser(ctx, id, page)
		if err != nil {
			return err
		}
		detail.Articles = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return UserDetail{}, err
	}
	return detail, nil
}
