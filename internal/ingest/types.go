package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// batchSender is the slice of pgxpool.Pool the batch writers need.
type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// WriterConfig contains configuration for batch writers.
type WriterConfig struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration

	// SessionID identifies this gatherer run for row provenance.
	SessionID uuid.UUID
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     1000,
		FlushInterval: 5 * time.Second,
		SessionID:     uuid.New(),
	}
}

// ledgerRow represents a row to be inserted into the ledgers table.
type ledgerRow struct {
	Sequence        int32
	Hash            string
	PrevHash        string
	ClosedAt        int64 // Microseconds
	ReceivedAt      int64 // Microseconds
	SuccessfulTxs   int32
	FailedTxs       int32
	OperationCount  int32
	TotalCoins      int64 // Stroops
	FeePool         int64 // Stroops
	BaseFeeStroops  int32
	ProtocolVersion int32
	SessionID       uuid.UUID
}

// tradeRow represents a row to be inserted into the trades table.
type tradeRow struct {
	TradeID         string
	LedgerCloseTime int64 // Microseconds
	ReceivedAt      int64 // Microseconds
	BaseAsset       string
	CounterAsset    string
	BaseAmount      int64 // Stroops
	CounterAmount   int64 // Stroops
	PriceN          int32
	PriceD          int32
	BaseIsSeller    bool
	SessionID       uuid.UUID
}

// transactionRow represents a row to be inserted into the transactions table.
type transactionRow struct {
	Hash           string
	Ledger         int32
	CreatedAt      int64 // Microseconds
	ReceivedAt     int64 // Microseconds
	Successful     bool
	SourceAccount  string
	FeeCharged     int64 // Stroops
	MaxFee         int64 // Stroops
	OperationCount int32
	MemoType       string
	SessionID      uuid.UUID
}

// feeStatsRow represents a row to be inserted into the fee_stats table.
type feeStatsRow struct {
	ObservedAt          int64 // Microseconds
	LastLedger          int64
	LastLedgerBaseFee   int64
	LedgerCapacityUsage float64
	FeeChargedP50       int64
	FeeChargedP95       int64
	FeeChargedP99       int64
	MaxFeeP50           int64
	SessionID           uuid.UUID
}

// WriterMetrics holds metrics for a writer.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
}
