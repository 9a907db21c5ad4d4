package actor

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskhq/deskhq/internal/db"
)

// ErrNotFound is returned when no actor matches the lookup.
var ErrNotFound = errors.New("actor not found")

// Store persists actors in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const actorColumns = `id, given_name, family_name, handle, provider, login, created_at`

// GetByProviderLogin looks up an actor by its unique (provider, login) pair.
func (s *Store) GetByProviderLogin(ctx context.Context, provider, login string) (Actor, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+actorColumns+` FROM actors WHERE provider = $1 AND login = $2`,
		provider, login)
	a, err := scanActor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Actor{}, ErrNotFound
	}
	if err != nil {
		return Actor{}, fmt.Errorf("get actor: %w", err)
	}
	return a, nil
}

// FindOrCreate returns the actor for (provider, login), inserting it when
// absent. Concurrent duplicate deliveries race on the unique index; the
// loser re-reads the winner's row, so the call never yields a duplicate.
func (s *Store) FindOrCreate(ctx context.Context, input CreateInput) (Actor, bool, error) {
	existing, err := s.GetByProviderLogin(ctx, input.Provider, input.Login)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Actor{}, false, err
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO actors (given_name, family_name, handle, provider, login)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+actorColumns,
		input.GivenName, input.FamilyName, input.Handle, input.Provider, input.Login)
	created, err := scanActor(row)
	if err == nil {
		return created, true, nil
	}
	if db.IsUniqueViolation(err) || errors.Is(err, pgx.ErrNoRows) {
		winner, readErr := s.GetByProviderLogin(ctx, input.Provider, input.Login)
		if readErr != nil {
			return Actor{}, false, fmt.Errorf("re-read actor after insert race: %w", readErr)
		}
		return winner, false, nil
	}
	return Actor{}, false, fmt.Errorf("create actor: %w", err)
}

func scanActor(row pgx.Row) (Actor, error) {
	var a Actor
	err := row.Scan(&a.ID, &a.GivenName, &a.FamilyName, &a.Handle,
		&a.Provider, &a.Login, &a.CreatedAt)
	return a, err
}
