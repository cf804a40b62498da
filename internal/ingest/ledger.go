package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/horizon-data/internal/resources"
)

// LedgerRecord is a streamed ledger with its local receipt time.
type LedgerRecord struct {
	Ledger     resources.Ledger
	ReceivedAt time.Time
}

// LedgerWriter consumes LedgerRecord from the stream buffer and writes to
// the ledgers table.
type LedgerWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	// Input from the stream pump
	input *GrowableBuffer[LedgerRecord]

	// Database
	db batchSender

	// Batching
	batch       []ledgerRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewLedgerWriter creates a new LedgerWriter.
func NewLedgerWriter(
	cfg WriterConfig,
	input *GrowableBuffer[LedgerRecord],
	db batchSender,
	logger *slog.Logger,
) *LedgerWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerWriter{
		cfg:    cfg,
		input:  input,
		db:     db,
		logger: logger,
		batch:  make([]ledgerRow, 0, cfg.BatchSize),
	}
}

// Start begins consuming records and writing to the database.
func (w *LedgerWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	// Consumer goroutine
	w.wg.Add(1)
	go w.consumeLoop()

	// Flush ticker goroutine
	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("ledger writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer.
func (w *LedgerWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping ledger writer")

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
		w.logger.Info("ledger writer stopped")
	case <-ctx.Done():
		w.logger.Warn("ledger writer stop timed out")
	}

	// Final flush against the caller's context: the writer's own context is
	// canceled at this point and would fail the insert, dropping the tail batch.
	w.flush(ctx)

	return nil
}

// Stats returns current metrics.
func (w *LedgerWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop drains the input buffer in batches.
func (w *LedgerWriter) consumeLoop() {
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
func (w *LedgerWriter) stageRemaining() {
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
func (w *LedgerWriter) flushLoop() {
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
func (w *LedgerWriter) handleRecord(rec LedgerRecord) {
	row := w.transform(rec)

	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush(w.ctx)
	}
}

// transform converts a LedgerRecord to a ledgerRow.
func (w *LedgerWriter) transform(rec LedgerRecord) ledgerRow {
	l := rec.Ledger
	return ledgerRow{
		Sequence:        l.Sequence,
		Hash:            l.Hash,
		PrevHash:        l.PrevHash,
		ClosedAt:        l.ClosedAt.UnixMicro(),
		ReceivedAt:      rec.ReceivedAt.UnixMicro(),
		SuccessfulTxs:   l.SuccessfulTransactionCount,
		FailedTxs:       l.FailedTransactionCount,
		OperationCount:  l.OperationCount,
		TotalCoins:      amountToStroops(l.TotalCoins),
		FeePool:         amountToStroops(l.FeePool),
		BaseFeeStroops:  l.BaseFeeInStroops,
		ProtocolVersion: l.ProtocolVersion,
		SessionID:       w.cfg.SessionID,
	}
}

// flush writes the current batch to the database.
func (w *LedgerWriter) flush(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]ledgerRow, 0, w.cfg.BatchSize)
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

	w.logger.Debug("flushed ledgers",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *LedgerWriter) batchInsert(ctx context.Context, rows []ledgerRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO ledgers (sequence, hash, prev_hash, closed_at, received_at,
				successful_txs, failed_txs, operation_count, total_coins, fee_pool,
				base_fee_stroops, protocol_version, session_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (sequence) DO NOTHING
		`, r.Sequence, r.Hash, r.PrevHash, r.ClosedAt, r.ReceivedAt,
			r.SuccessfulTxs, r.FailedTxs, r.OperationCount, r.TotalCoins, r.FeePool,
			r.BaseFeeStroops, r.ProtocolVersion, r.SessionID)
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
