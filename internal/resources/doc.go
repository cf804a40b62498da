// Package resources defines the typed Horizon API schemas shared across the
// client and the gatherer.
//
// Conventions:
//   - Amounts and fees: decimal strings as returned by Horizon (e.g. "100.0000000")
//   - Timestamps: RFC 3339 (time.Time)
//   - Paging: every listable resource carries an opaque paging_token
package resources
