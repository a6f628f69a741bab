package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/asten-tickets/triage-service/internal/service"
)

// DashboardRefresher keeps the dashboard cache warm on a schedule so
// interactive requests rarely pay for a cold recompute.
type DashboardRefresher struct {
	dashboard *service.DashboardService
	cron      *cron.Cron
	logger    *zap.Logger
}

// NewDashboardRefresher constructs the refresher.
func NewDashboardRefresher(dashboard *service.DashboardService, logger *zap.Logger) *DashboardRefresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardRefresher{
		dashboard: dashboard,
		cron:      cron.New(),
		logger:    logger,
	}
}

// Start warms the cache once immediately, then on the given cron spec
// (e.g. "@every 5m").
func (r *DashboardRefresher) Start(spec string) error {
	entryID, err := r.cron.AddFunc(spec, r.refresh)
	if err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("dashboard refresher started",
		zap.String("schedule", spec), zap.Int("entry_id", int(entryID)))
	go r.refresh()
	return nil
}

// Stop halts the schedule and waits for an in-flight refresh to finish.
func (r *DashboardRefresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *DashboardRefresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	started := time.Now()
	r.dashboard.RefreshCache(ctx)
	r.logger.Debug("dashboard cache refreshed", zap.Duration("took", time.Since(started)))
}
