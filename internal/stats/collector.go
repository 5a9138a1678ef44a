package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/nbazarov/teamforge/internal/metrics"
	"github.com/nbazarov/teamforge/internal/repository"
	"github.com/robfig/cron/v3"
)

// Collector periodically samples entity counts into Prometheus gauges.
// The schedule is a standard cron expression.
type Collector struct {
	repo     repository.StatsRepository
	schedule cron.Schedule
	logger   *slog.Logger
}

func NewCollector(repo repository.StatsRepository, cronExpr string, logger *slog.Logger) (*Collector, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Collector{
		repo:     repo,
		schedule: schedule,
		logger:   logger.With("component", "stats_collector"),
	}, nil
}

// Start blocks until ctx is cancelled, sampling once immediately and then
// on every cron tick.
func (c *Collector) Start(ctx context.Context) {
	c.logger.Info("stats collector started")
	c.sample(ctx)

	for {
		next := c.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			c.logger.Info("stats collector shut down")
			return
		case <-timer.C:
			c.sample(ctx)
		}
	}
}

func (c *Collector) sample(ctx context.Context) {
	sampleCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	counts, err := c.repo.Counts(sampleCtx)
	if err != nil {
		c.logger.Error("sample entity counts", "error", err)
		return
	}

	metrics.UsersCount.Set(float64(counts.Users))
	metrics.ProjectsCount.Set(float64(counts.Projects))
	metrics.VacanciesCount.Set(float64(counts.Vacancies))
}
