package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/horizon-data/internal/resources"
)

// FeeStatsRecorder writes one fee_stats row per poll. Fee stats are a
// low-volume signal, so there is no batching.
type FeeStatsRecorder struct {
	cfg    WriterConfig
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewFeeStatsRecorder creates a new FeeStatsRecorder.
func NewFeeStatsRecorder(cfg WriterConfig, db *pgxpool.Pool, logger *slog.Logger) *FeeStatsRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeeStatsRecorder{
		cfg:    cfg,
		db:     db,
		logger: logger,
	}
}

// Record inserts the observed fee stats.
func (r *FeeStatsRecorder) Record(ctx context.Context, stats resources.FeeStats, observedAt time.Time) error {
	row := r.transform(stats, observedAt)

	_, err := r.db.Exec(ctx, `
		INSERT INTO fee_stats (observed_at, last_ledger, last_ledger_base_fee,
			ledger_capacity_usage, fee_charged_p50, fee_charged_p95,
			fee_charged_p99, max_fee_p50, session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, row.ObservedAt, row.LastLedger, row.LastLedgerBaseFee,
		row.LedgerCapacityUsage, row.FeeChargedP50, row.FeeChargedP95,
		row.FeeChargedP99, row.MaxFeeP50, row.SessionID)
	if err != nil {
		return fmt.Errorf("insert fee stats: %w", err)
	}

	r.logger.Debug("recorded fee stats",
		"last_ledger", row.LastLedger,
		"capacity_usage", row.LedgerCapacityUsage,
	)
	return nil
}

// transform converts a FeeStats resource to a feeStatsRow.
func (r *FeeStatsRecorder) transform(stats resources.FeeStats, observedAt time.Time) feeStatsRow {
	return feeStatsRow{
		ObservedAt:          observedAt.UnixMicro(),
		LastLedger:          parseInt64(stats.LastLedger),
		LastLedgerBaseFee:   parseInt64(stats.LastLedgerBaseFee),
		LedgerCapacityUsage: parseFloat(stats.LedgerCapacityUsage),
		FeeChargedP50:       parseInt64(stats.FeeCharged.P50),
		FeeChargedP95:       parseInt64(stats.FeeCharged.P95),
		FeeChargedP99:       parseInt64(stats.FeeCharged.P99),
		MaxFeeP50:           parseInt64(stats.MaxFee.P50),
		SessionID:           r.cfg.SessionID,
	}
}
