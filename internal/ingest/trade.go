package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/horizon-data/internal/resources"
)

// TradeRecord is a streamed trade with its local receipt time.
type TradeRecord struct {
	Trade      resources.Trade
	ReceivedAt time.Time
}

// TradeWriter consumes TradeRecord from the stream buffer and writes to
// the trades table.
type TradeWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	// Input from the stream pump
	input *GrowableBuffer[TradeRecord]

	// Database
	db batchSender

	// Batching
	batch       []tradeRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewTradeWriter creates a new TradeWriter.
func NewTradeWriter(
	cfg WriterConfig,
	input *GrowableBuffer[TradeRecord],
	db batchSender,
	logger *slog.Logger,
) *TradeWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TradeWriter{
		cfg:    cfg,
		input:  input,
		db:     db,
		logger: logger,
		batch:  make([]tradeRow, 0, cfg.BatchSize),
	}
}

// Start begins consuming records and writing to the database.
func (w *TradeWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	// Consumer goroutine
	w.wg.Add(1)
	go w.consumeLoop()

	// Flush ticker goroutine
	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("trade writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer.
func (w *TradeWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping trade writer")

	if w.cancel != nil {
		w.cancel()
	}

	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	// Wait for goroutines
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("trade writer stopped")
	case <-ctx.Done():
		w.logger.Warn("trade writer stop timed out")
	}

	// Final flush against the caller's context: the writer's own context is
	// canceled at this point and would fail the insert, dropping the tail batch.
	w.flush(ctx)

	return nil
}

// Stats returns current metrics.
func (w *TradeWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop drains the input buffer in batches.
func (w *TradeWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		recs := w.input.DrainTo(w.cfg.BatchSize)
		for _, rec := range recs {
			w.handleRecord(rec)
		}
		if len(recs) > 0 {
			continue
		}

		select {
		case <-w.ctx.Done():
			// Stage whatever the pump left behind; Stop flushes it.
			w.stageRemaining()
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// stageRemaining moves any still-buffered records into the batch without
// flushing, so the shutdown flush picks them up.
func (w *TradeWriter) stageRemaining() {
	recs := w.input.DrainTo(0)
	if len(recs) == 0 {
		return
	}

	w.batchMu.Lock()
	for _, rec := range recs {
		w.batch = append(w.batch, w.transform(rec))
	}
	w.batchMu.Unlock()
}

// flushLoop periodically flushes the batch.
func (w *TradeWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush(w.ctx)
		}
	}
}

// handleRecord transforms and adds a record to the batch.
func (w *TradeWriter) handleRecord(rec TradeRecord) {
	row := w.transform(rec)

	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush(w.ctx)
	}
}

// transform converts a TradeRecord to a tradeRow.
func (w *TradeWriter) transform(rec TradeRecord) tradeRow {
	t := rec.Trade
	return tradeRow{
		TradeID:         t.ID,
		LedgerCloseTime: t.LedgerCloseTime.UnixMicro(),
		ReceivedAt:      rec.ReceivedAt.UnixMicro(),
		BaseAsset:       baseAssetKey(t),
		CounterAsset:    counterAssetKey(t),
		BaseAmount:      amountToStroops(t.BaseAmount),
		CounterAmount:   amountToStroops(t.CounterAmount),
		PriceN:          t.Price.N,
		PriceD:          t.Price.D,
		BaseIsSeller:    t.BaseIsSeller,
		SessionID:       w.cfg.SessionID,
	}
}

// flush writes the current batch to the database.
func (w *TradeWriter) flush(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]tradeRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	conflicts, err := w.batchInsert(ctx, batch)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch) - conflicts)
	w.metrics.Conflicts += int64(conflicts)
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed trades",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *TradeWriter) batchInsert(ctx context.Context, rows []tradeRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO trades (trade_id, ledger_close_time, received_at, base_asset,
				counter_asset, base_amount, counter_amount, price_n, price_d,
				base_is_seller, session_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (trade_id) DO NOTHING
		`, r.TradeID, r.LedgerCloseTime, r.ReceivedAt, r.BaseAsset,
			r.CounterAsset, r.BaseAmount, r.CounterAmount, r.PriceN, r.PriceD,
			r.BaseIsSeller, r.SessionID)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
