package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nbazarov/teamforge/internal/repository"
)

type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

func (r *StatsRepository) Counts(ctx context.Context) (*repository.Stats, error) {
	var s repository.Stats
	err := r.pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM users),
		       (SELECT COUNT(*) FROM projects),
		       (SELECT COUNT(*) FROM vacancies)`,
	).Scan(&s.Users, &s.Projects, &s.Vacancies)
	if err != nil {
		return nil, fmt.Errorf("count entities: %w", err)
	}
	return &s, nil
}
