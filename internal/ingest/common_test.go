package ingest

import (
	"testing"

	"github.com/rickgao/horizon-data/internal/resources"
)

func TestAmountToStroops(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"", 0},
		{"0", 0},
		{"1", 10000000},
		{"100.1234567", 1001234567},
		{"0.0000001", 1},
		{"not a number", 0},
	}

	for _, tt := range tests {
		if got := amountToStroops(tt.amount); got != tt.want {
			t.Errorf("amountToStroops(%q) = %d, want %d", tt.amount, got, tt.want)
		}
	}
}

func TestParseInt64(t *testing.T) {
	if got := parseInt64("54321"); got != 54321 {
		t.Errorf("parseInt64(54321) = %d, want 54321", got)
	}
	if got := parseInt64(""); got != 0 {
		t.Errorf("parseInt64(\"\") = %d, want 0", got)
	}
	if got := parseInt64("abc"); got != 0 {
		t.Errorf("parseInt64(abc) = %d, want 0", got)
	}
}

func TestAssetKey(t *testing.T) {
	if got := assetKey("native", "", ""); got != "native" {
		t.Errorf("assetKey(native) = %q, want %q", got, "native")
	}

	trade := resources.Trade{
		BaseAssetType:      "native",
		CounterAssetType:   "credit_alphanum4",
		CounterAssetCode:   "USDC",
		CounterAssetIssuer: "GA5ZSEJYB37JRC5AVCIA5MOP4RHTM335X2KGX3IHOJAPP5RE34K4KZVN",
	}
	if got := baseAssetKey(trade); got != "native" {
		t.Errorf("baseAssetKey = %q, want %q", got, "native")
	}
	want := "USDC:GA5ZSEJYB37JRC5AVCIA5MOP4RHTM335X2KGX3IHOJAPP5RE34K4KZVN"
	if got := counterAssetKey(trade); got != want {
		t.Errorf("counterAssetKey = %q, want %q", got, want)
	}
}
