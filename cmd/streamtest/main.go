// streamtest connects to Horizon SSE endpoints and prints decoded records
// to the console.
// Usage: go run ./cmd/streamtest --url https://horizon.stellar.org
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/horizon-data/internal/horizon"
	"github.com/rickgao/horizon-data/internal/ingest"
	"github.com/rickgao/horizon-data/internal/requests"
	"github.com/rickgao/horizon-data/internal/resources"
)

func main() {
	url := flag.String("url", "https://horizon.stellar.org", "horizon instance URL")
	cursor := flag.String("cursor", "now", "stream cursor (\"now\" tails the log head)")
	verbose := flag.Bool("verbose", false, "print full record JSON")
	withLedgers := flag.Bool("ledgers", true, "stream ledgers")
	withTrades := flag.Bool("trades", true, "stream trades")
	withTransactions := flag.Bool("transactions", false, "stream transactions")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	client, err := horizon.NewClient(*url, horizon.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create horizon client", "error", err)
		os.Exit(1)
	}

	// Verify the instance is reachable before opening streams
	root, err := requests.Root{}.Do(ctx, client)
	if err != nil {
		logger.Error("failed to fetch horizon root", "error", err)
		os.Exit(1)
	}
	logger.Info("horizon instance",
		"horizon_version", root.HorizonVersion,
		"latest_ledger", root.HistoryLatestLedger,
	)

	pumpCfg := ingest.PumpConfig{
		BaseDelay: time.Second,
		MaxDelay:  30 * time.Second,
	}

	var pumps []pumpHandle
	startPump := func(name string, p lifecycle) {
		if err := p.Start(ctx); err != nil {
			logger.Error("failed to start pump", "pump", name, "error", err)
			os.Exit(1)
		}
		pumps = append(pumps, pumpHandle{name: name, pump: p})
	}

	if *withLedgers {
		stream := requests.Ledgers{Cursor: *cursor}.Stream(ctx, client)
		pc := pumpCfg
		pc.Name = "ledgers"
		startPump("ledgers", ingest.NewPump(pc, stream, func(l resources.Ledger, _ time.Time) bool {
			printLedger(l, *verbose)
			return true
		}, logger))
	}

	if *withTrades {
		stream := requests.Trades{Cursor: *cursor}.Stream(ctx, client)
		pc := pumpCfg
		pc.Name = "trades"
		startPump("trades", ingest.NewPump(pc, stream, func(t resources.Trade, _ time.Time) bool {
			printTrade(t, *verbose)
			return true
		}, logger))
	}

	if *withTransactions {
		stream := requests.Transactions{Cursor: *cursor, IncludeFailed: true}.Stream(ctx, client)
		pc := pumpCfg
		pc.Name = "transactions"
		startPump("transactions", ingest.NewPump(pc, stream, func(tx resources.Transaction, _ time.Time) bool {
			printTransaction(tx, *verbose)
			return true
		}, logger))
	}

	if len(pumps) == 0 {
		logger.Error("no streams enabled")
		os.Exit(1)
	}

	logger.Info("streaming started - press Ctrl+C to stop")

	// Wait for shutdown
	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Info("shutting down...")
	for _, h := range pumps {
		if err := h.pump.Stop(shutdownCtx); err != nil {
			logger.Warn("pump stop failed", "pump", h.name, "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// lifecycle erases the pump's item type for uniform start/stop handling.
type lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type pumpHandle struct {
	name string
	pump lifecycle
}

func printLedger(l resources.Ledger, verbose bool) {
	if verbose {
		data, _ := json.MarshalIndent(l, "", "  ")
		fmt.Printf("[LEDGER] %s\n", data)
		return
	}
	fmt.Printf("[LEDGER] seq=%d txs=%d/%d ops=%d closed=%s\n",
		l.Sequence, l.SuccessfulTransactionCount,
		l.SuccessfulTransactionCount+l.FailedTransactionCount,
		l.OperationCount, l.ClosedAt.Format(time.RFC3339))
}

func printTrade(t resources.Trade, verbose bool) {
	if verbose {
		data, _ := json.MarshalIndent(t, "", "  ")
		fmt.Printf("[TRADE] %s\n", data)
		return
	}
	fmt.Printf("[TRADE] id=%s base=%s %s counter=%s %s price=%d/%d\n",
		t.ID, t.BaseAmount, t.BaseAssetType, t.CounterAmount, t.CounterAssetType,
		t.Price.N, t.Price.D)
}

func printTransaction(tx resources.Transaction, verbose bool) {
	if verbose {
		data, _ := json.MarshalIndent(tx, "", "  ")
		fmt.Printf("[TX] %s\n", data)
		return
	}
	fmt.Printf("[TX] hash=%s ledger=%d ok=%v ops=%d fee=%s\n",
		tx.Hash, tx.Ledger, tx.Successful, tx.OperationCount, tx.FeeCharged)
}
