// Package database provides connection pool management for TimescaleDB.
//
// Each gatherer writes its ingested ledgers, trades and fee records to a
// local TimescaleDB instance; downstream consolidation happens elsewhere.
package database
