package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"chainpulse/internal/config"
	"chainpulse/pkg/contracts/domain"
)

// Broadcaster receives fresh snapshots for push delivery.
type Broadcaster interface {
	BroadcastChainUpdate(snapshot *domain.ChainSnapshot)
}

// Refresher re-fetches a fixed watchlist on a cron schedule and pushes each
// fresh snapshot to the broadcaster.
type Refresher struct {
	service   *ChainService
	hub       Broadcaster
	schedule  string
	watchlist []string
	timeout   time.Duration
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewRefresher creates a refresher from configuration.
func NewRefresher(service *ChainService, hub Broadcaster, cfg config.RefreshConfig, logger *slog.Logger) *Refresher {
	return &Refresher{
		service:   service,
		hub:       hub,
		schedule:  cfg.Schedule,
		watchlist: cfg.Watchlist,
		timeout:   time.Minute,
		cron:      cron.New(),
		logger:    logger.With(slog.String("component", "refresher")),
	}
}

// Start registers the schedule and begins running. Returns an error for an
// unparseable cron expression.
func (r *Refresher) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, r.refreshAll); err != nil {
		return fmt.Errorf("register refresh schedule %q: %w", r.schedule, err)
	}
	r.cron.Start()
	r.logger.Info("refresher started",
		slog.String("schedule", r.schedule),
		slog.Int("watchlist", len(r.watchlist)),
	)
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish or the
// context to expire.
func (r *Refresher) Stop(ctx context.Context) {
	done := r.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		r.logger.Warn("refresher stop timed out")
	}
}

func (r *Refresher) refreshAll() {
	for _, ticker := range r.watchlist {
		r.refreshOne(ticker)
	}
}

func (r *Refresher) refreshOne(ticker string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	snapshot, err := r.service.GetChain(ctx, ticker, "")
	if err != nil {
		r.logger.ErrorContext(ctx, "watchlist refresh failed",
			slog.String("ticker", ticker),
			slog.String("error", err.Error()),
		)
		return
	}

	r.hub.BroadcastChainUpdate(snapshot)
	r.logger.DebugContext(ctx, "watchlist refresh pushed",
		slog.String("ticker", ticker),
		slog.Int("contracts", len(snapshot.Contracts)),
	)
}
