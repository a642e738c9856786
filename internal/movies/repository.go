package movies

import (
	"context"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"

	"github.com/DonzTea/cms-crud-restful-api/internal/platform/db"
	"github.com/DonzTea/cms-crud-restful-api/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	db db.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool db.Pool) *Repository {
	return &Repository{db: pool}
}

// ListMovies returns every movie with its cast.
func (r *Repository) ListMovies(ctx context.Context) ([]Movie, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.title, m.description, a.id, a.name
		FROM movies m
		LEFT JOIN movie_actors ma ON ma.movie_id = m.id
		LEFT JOIN actors a ON a.id = ma.actor_id
		ORDER BY m.id, a.id`)
	if err != nil {
		return nil, fmt.Errorf("movies: list: %w", err)
	}
	defer rows.Close()

	out := []Movie{}
	for rows.Next() {
		var (
			m         Movie
			actorID   *int64
			actorName *string
		)
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &actorID, &actorName); err != nil {
			return nil, fmt.Errorf("movies: scan: %w", err)
		}
		if n := len(out); n == 0 || out[n-1].ID != m.ID {
			m.Actors = []Actor{}
			out = append(out, m)
		}
		if actorID != nil && actorName != nil {
			last := &out[len(out)-1]
			last.Actors = append(last.Actors, Actor{ID: *actorID, Name: *actorName})
		}
	}
	return out, rows.Err()
}

// CreateMovie inserts a movie and its cast in one transaction. Unknown actor
// ids fail with shared.ErrValidation and nothing is written.
func (r *Repository) CreateMovie(ctx context.Context, in NewMovie) (Movie, error) {
	ids := slices.Clone(in.ActorIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	m := Movie{Title: in.Title, Description: in.Description, Actors: []Actor{}}
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO movies (title, description) VALUES ($1, $2) RETURNING id`,
			in.Title, in.Description).Scan(&m.ID); err != nil {
			return fmt.Errorf("movies: insert: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		actors, err := queryActors(ctx, tx, `SELECT id, name FROM actors WHERE id = ANY($1) ORDER BY id`, ids)
		if err != nil {
			return err
		}
		if len(actors) != len(ids) {
			return shared.NewFieldError(shared.ErrValidation, map[string]string{"actors": "contains an unknown actor"})
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO movie_actors (movie_id, actor_id)
			SELECT $1, unnest($2::bigint[])`, m.ID, ids); err != nil {
			return fmt.Errorf("movies: cast: %w", err)
		}
		m.Actors = actors
		return nil
	})
	if err != nil {
		return Movie{}, err
	}
	return m, nil
}

// ListActors returns every actor.
func (r *Repository) ListActors(ctx context.Context) ([]Actor, error) {
	return queryActors(ctx, r.db, `SELECT id, name FROM actors ORDER BY id`)
}

func queryActors(ctx context.Context, q db.Querier, sql string, args ...any) ([]Actor, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("movies: query actors: %w", err)
	}
	defer rows.Close()

	actors := []Actor{}
	for rows.Next() {
		var a Actor
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("movies: scan actor: %w", err)
		}
		actors = append(actors, a)
	}
	return actors, rows.Err()
}

// CreateActor inserts an actor.
func (r *Repository) CreateActor(ctx context.Context, name string) (Actor, error) {
	a := Actor{Name: name}
	if err := r.db.QueryRow(ctx, `INSERT INTO actors (name) VALUES ($1) RETURNING id`, name).Scan(&a.ID); err != nil {
		return Actor{}, fmt.Errorf("movies: insert actor: %w", err)
	}
	return a, nil
}
