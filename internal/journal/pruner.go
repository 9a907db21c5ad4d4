package journal

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner runs the retention sweep on a cron schedule.
type Pruner struct {
	service   *Service
	cron      *cron.Cron
	schedule  string
	retention time.Duration
	logger    *slog.Logger
}

func NewPruner(log *slog.Logger, service *Service, schedule string, retentionDays int) *Pruner {
	return &Pruner{
		service:   service,
		cron:      cron.New(),
		schedule:  schedule,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    log.With(slog.String("service", "journal-pruner")),
	}
}

// Start registers the sweep job and starts the scheduler.
func (p *Pruner) Start() error {
	_, err := p.cron.AddFunc(p.schedule, p.sweep)
	if err != nil {
		return err
	}
	p.cron.Start()
	p.logger.Info("journal pruner started",
		slog.String("schedule", p.schedule),
		slog.Duration("retention", p.retention))
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (p *Pruner) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
}

func (p *Pruner) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	removed, err := p.service.Prune(ctx, p.retention)
	if err != nil {
		p.logger.Error("journal prune failed", slog.String("error", err.Error()))
		return
	}
	p.logger.Info("journal pruned", slog.Int64("removed", removed))
}
