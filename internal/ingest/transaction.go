package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/horizon-data/internal/resources"
)

// TransactionRecord is a streamed transaction with its local receipt time.
type TransactionRecord struct {
	Transaction resources.Transaction
	ReceivedAt  time.Time
}

// TransactionWriter consumes TransactionRecord from the stream buffer and
// writes to the transactions table.
type TransactionWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	// Input from the stream pump
	input *GrowableBuffer[TransactionRecord]

	// Database
	db batchSender

	// Batching
	batch       []transactionRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewTransactionWriter creates a new TransactionWriter.
func NewTransactionWriter(
	cfg WriterConfig,
	input *GrowableBuffer[TransactionRecord],
	db batchSender,
	logger *slog.Logger,
) *TransactionWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionWriter{
		cfg:    cfg,
		input:  input,
		db:     db,
		logger: logger,
		batch:  make([]transactionRow, 0, cfg.BatchSize),
	}
}

// Start begins consuming records and writing to the database.
func (w *TransactionWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(1)
	go w.consumeLoop()

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("transaction writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer.
func (w *TransactionWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping transaction writer")

	if w.cancel != nil {
		w.cancel()
	}

	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("transaction writer stopped")
	case <-ctx.Done():
		w.logger.Warn("transaction writer stop timed out")
	}

	// Final flush against the caller's context: the writer's own context is
	// canceled at this point and would fail the insert, dropping the tail batch.
	w.flush(ctx)

	return nil
}

// Stats returns current metrics.
func (w *TransactionWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

func (w *TransactionWriter) consumeLoop() {
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
func (w *TransactionWriter) stageRemaining() {
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

func (w *TransactionWriter) flushLoop() {
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

func (w *TransactionWriter) handleRecord(rec TransactionRecord) {
	row := w.transform(rec)

	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush(w.ctx)
	}
}

// transform converts a TransactionRecord to a transactionRow. Fees arrive
// as integer stroop strings, not decimal amounts.
func (w *TransactionWriter) transform(rec TransactionRecord) transactionRow {
	tx := rec.Transaction
	return transactionRow{
		Hash:           tx.Hash,
		Ledger:         tx.Ledger,
		CreatedAt:      tx.CreatedAt.UnixMicro(),
		ReceivedAt:     rec.ReceivedAt.UnixMicro(),
		Successful:     tx.Successful,
		SourceAccount:  tx.SourceAccount,
		FeeCharged:     parseInt64(tx.FeeCharged),
		MaxFee:         parseInt64(tx.MaxFee),
		OperationCount: tx.OperationCount,
		MemoType:       tx.MemoType,
		SessionID:      w.cfg.SessionID,
	}
}

func (w *TransactionWriter) flush(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	batch := w.batch
	w.batch = make([]transactionRow, 0, w.cfg.BatchSize)
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

	w.logger.Debug("flushed transactions",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

func (w *TransactionWriter) batchInsert(ctx context.Context, rows []transactionRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO transactions (hash, ledger, created_at, received_at,
				successful, source_account, fee_charged, max_fee,
				operation_count, memo_type, session_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (hash) DO NOTHING
		`, r.Hash, r.Ledger, r.CreatedAt, r.ReceivedAt,
			r.Successful, r.SourceAccount, r.FeeCharged, r.MaxFee,
			r.OperationCount, r.MemoType, r.SessionID)
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
