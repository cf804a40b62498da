package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/horizon-data/internal/horizon"
	"github.com/rickgao/horizon-data/internal/requests"
	"github.com/rickgao/horizon-data/internal/resources"
)

// FeeStatsHandler receives fetched fee stats.
type FeeStatsHandler interface {
	HandleFeeStats(ctx context.Context, stats resources.FeeStats, observedAt time.Time) error
}

// FeeStatsHandlerFunc is a function adapter for FeeStatsHandler.
type FeeStatsHandlerFunc func(ctx context.Context, stats resources.FeeStats, observedAt time.Time) error

func (f FeeStatsHandlerFunc) HandleFeeStats(ctx context.Context, stats resources.FeeStats, observedAt time.Time) error {
	return f(ctx, stats, observedAt)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Poll interval (default: 1m)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 1 * time.Minute,
	}
}

// Poller periodically fetches fee stats from Horizon.
type Poller struct {
	cfg     Config
	client  *horizon.Client
	handler FeeStatsHandler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, client *horizon.Client, handler FeeStatsHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:     cfg,
		client:  client,
		handler: handler,
		logger:  logger,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("fee stats poller started",
		"interval", p.cfg.Interval,
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("fee stats poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.poll()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

// poll fetches fee stats once and hands them off.
func (p *Poller) poll() {
	start := time.Now()

	stats, err := requests.FeeStats{}.Do(p.ctx, p.client)
	if err != nil {
		p.logger.Warn("failed to poll fee stats", "err", err)
		return
	}

	if p.handler != nil {
		if err := p.handler.HandleFeeStats(p.ctx, *stats, start); err != nil {
			p.logger.Warn("fee stats handler failed", "err", err)
			return
		}
	}

	p.logger.Debug("poll cycle complete",
		"last_ledger", stats.LastLedger,
		"duration", time.Since(start),
	)
}
