// Package ingest buffers streamed Horizon records and batch-writes them to
// TimescaleDB.
//
// Writers:
//   - Ledger writer (ledgers table)
//   - Trade writer (trades table)
//   - Fee stats recorder (fee_stats table, one row per poll)
//
// All writers use append-only semantics (never update, only insert).
// Native amounts are stored as integer stroops (1 XLM = 10,000,000 stroops).
package ingest
