package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/horizon-data/internal/horizon"
)

// Pump drives a resumable stream and pushes each item into a sink. Error
// items from the stream do not terminate the pump: it backs off
// exponentially and keeps calling Next, so the stream's resume cursor is
// never abandoned.
type Pump[Item any] struct {
	name   string
	stream *horizon.Stream[Item]
	sink   func(item Item, receivedAt time.Time) bool
	logger *slog.Logger

	baseDelay time.Duration
	maxDelay  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	items atomic.Int64
	errs  atomic.Int64
	drops atomic.Int64
}

// PumpConfig holds backoff settings for a pump.
type PumpConfig struct {
	// Name labels the pump in logs.
	Name string

	// BaseDelay is the first backoff step after a stream error.
	BaseDelay time.Duration

	// MaxDelay caps the backoff.
	MaxDelay time.Duration
}

// NewPump creates a pump feeding items from stream into sink. The sink
// returns false when it can no longer accept items (closed buffer).
func NewPump[Item any](
	cfg PumpConfig,
	stream *horizon.Stream[Item],
	sink func(item Item, receivedAt time.Time) bool,
	logger *slog.Logger,
) *Pump[Item] {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	return &Pump[Item]{
		name:      cfg.Name,
		stream:    stream,
		sink:      sink,
		logger:    logger.With("pump", cfg.Name),
		baseDelay: cfg.BaseDelay,
		maxDelay:  cfg.MaxDelay,
	}
}

// Start begins pumping in a background goroutine.
func (p *Pump[Item]) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("stream pump started",
		"base_delay", p.baseDelay,
		"max_delay", p.maxDelay,
	)
	return nil
}

// Stop closes the stream and waits for the pump goroutine.
func (p *Pump[Item]) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.stream.Close()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("stream pump stopped",
			"items", p.items.Load(),
			"errors", p.errs.Load(),
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns counters for this pump.
func (p *Pump[Item]) Stats() PumpStats {
	return PumpStats{
		Items:  p.items.Load(),
		Errors: p.errs.Load(),
		Drops:  p.drops.Load(),
	}
}

// PumpStats holds pump counters.
type PumpStats struct {
	Items  int64
	Errors int64
	Drops  int64
}

// run is the pump loop. Backoff doubles on consecutive errors and resets
// on the next delivered item.
func (p *Pump[Item]) run() {
	defer p.wg.Done()

	delay := p.baseDelay
	for {
		item, err := p.stream.Next()
		if err != nil {
			if p.ctx.Err() != nil || errors.Is(err, horizon.ErrStreamClosed) {
				return
			}

			p.errs.Add(1)
			p.logger.Warn("stream error", "err", err, "retry_in", delay)

			select {
			case <-p.ctx.Done():
				return
			case <-time.After(delay):
			}

			delay *= 2
			if delay > p.maxDelay {
				delay = p.maxDelay
			}
			continue
		}

		delay = p.baseDelay
		p.items.Add(1)

		if !p.sink(*item, time.Now()) {
			p.drops.Add(1)
			p.logger.Warn("sink rejected item, stopping pump")
			return
		}
	}
}
