package repository

import "context"

type Stats struct {
	Users     int64
	Projects  int64
	Vacancies int64
}

type StatsRepository interface {
	Counts(ctx context.Context) (*Stats, error)
}
