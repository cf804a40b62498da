package ingest

import (
	"math"
	"strconv"

	"github.com/rickgao/horizon-data/internal/resources"
)

// amountToStroops converts a decimal amount string (e.g., "100.1234567")
// to integer stroops (1,001,234,567).
func amountToStroops(amount string) int64 {
	if amount == "" {
		return 0
	}
	f, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0
	}
	// Round to avoid floating point errors (e.g., 0.1 * 1e7 = 999999.999...)
	return int64(math.Round(f * 10_000_000))
}

// parseInt64 parses a decimal integer string, returning 0 on failure.
// Horizon reports fees and ledger numbers as strings.
func parseInt64(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseFloat parses a decimal string, returning 0 on failure.
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// assetKey renders an asset as a single string column value:
// "native" for lumens, "CODE:ISSUER" for issued assets.
func assetKey(assetType, code, issuer string) string {
	if assetType == "native" {
		return "native"
	}
	return code + ":" + issuer
}

// baseAssetKey extracts the base asset key from a trade.
func baseAssetKey(t resources.Trade) string {
	return assetKey(t.BaseAssetType, t.BaseAssetCode, t.BaseAssetIssuer)
}

// counterAssetKey extracts the counter asset key from a trade.
func counterAssetKey(t resources.Trade) string {
	return assetKey(t.CounterAssetType, t.CounterAssetCode, t.CounterAssetIssuer)
}
