package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/horizon-data/internal/config"
	"github.com/rickgao/horizon-data/internal/database"
	"github.com/rickgao/horizon-data/internal/horizon"
	"github.com/rickgao/horizon-data/internal/ingest"
	"github.com/rickgao/horizon-data/internal/poller"
	"github.com/rickgao/horizon-data/internal/requests"
	"github.com/rickgao/horizon-data/internal/resources"
	"github.com/rickgao/horizon-data/internal/version"
)

// component is anything with the Start/Stop lifecycle.
type component interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

func main() {
	configPath := flag.String("config", "configs/gatherer.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting gatherer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"horizon_url", cfg.Horizon.URL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Timescale.Host,
		"port", cfg.Database.Timescale.Port,
		"database", cfg.Database.Timescale.Name,
	)

	db, err := database.Connect(ctx, cfg.Database.Timescale)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("database connected")

	// Create Horizon client
	clientOpts := []horizon.ClientOption{
		horizon.WithLogger(logger),
		horizon.WithTimeout(cfg.Horizon.Timeout),
	}
	if cfg.Horizon.ClientName != "" {
		clientOpts = append(clientOpts, horizon.WithClientName(cfg.Horizon.ClientName))
	}
	client, err := horizon.NewClient(cfg.Horizon.URL, clientOpts...)
	if err != nil {
		logger.Error("failed to create horizon client", "error", err)
		os.Exit(1)
	}

	// Check the instance before streaming from it
	logger.Info("checking horizon instance")
	root, err := requests.Root{}.Do(ctx, client)
	if err != nil {
		logger.Error("failed to fetch horizon root", "error", err)
		os.Exit(1)
	}
	logger.Info("horizon instance",
		"horizon_version", root.HorizonVersion,
		"latest_ledger", root.HistoryLatestLedger,
		"network", root.NetworkPassphrase,
	)

	writerCfg := ingest.WriterConfig{
		BatchSize:     cfg.Writers.BatchSize,
		FlushInterval: cfg.Writers.FlushInterval,
		SessionID:     uuid.New(),
	}
	logger.Info("ingest session", "session_id", writerCfg.SessionID)

	pumpCfg := ingest.PumpConfig{
		BaseDelay: cfg.Streams.ReconnectBaseDelay,
		MaxDelay:  cfg.Streams.ReconnectMaxDelay,
	}

	// Components stop in reverse start order.
	var components []component
	stopAll := func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		for i := len(components) - 1; i >= 0; i-- {
			if err := components[i].Stop(shutdownCtx); err != nil {
				logger.Warn("component stop failed", "error", err)
			}
		}
	}
	defer stopAll()

	start := func(name string, c component) {
		if err := c.Start(ctx); err != nil {
			logger.Error("failed to start component", "component", name, "error", err)
			stopAll()
			os.Exit(1)
		}
		components = append(components, c)
	}

	// Health stats, filled in as components come up.
	stats := map[string]func() any{}

	// Ledger stream
	if cfg.Streams.Ledgers {
		buf := ingest.NewGrowableBuffer[ingest.LedgerRecord](cfg.Writers.BufferSize)
		writer := ingest.NewLedgerWriter(writerCfg, buf, db, logger)
		start("ledger writer", writer)

		stream := requests.Ledgers{Cursor: "now"}.Stream(ctx, client)
		pc := pumpCfg
		pc.Name = "ledgers"
		pump := ingest.NewPump(pc, stream, func(l resources.Ledger, receivedAt time.Time) bool {
			return buf.Send(ingest.LedgerRecord{Ledger: l, ReceivedAt: receivedAt})
		}, logger)
		start("ledger pump", pump)

		stats["ledgers"] = func() any {
			return map[string]any{"pump": pump.Stats(), "writer": writer.Stats(), "buffer": buf.Stats()}
		}
	}

	// Trade stream
	if cfg.Streams.Trades {
		buf := ingest.NewGrowableBuffer[ingest.TradeRecord](cfg.Writers.BufferSize)
		writer := ingest.NewTradeWriter(writerCfg, buf, db, logger)
		start("trade writer", writer)

		stream := requests.Trades{Cursor: "now"}.Stream(ctx, client)
		pc := pumpCfg
		pc.Name = "trades"
		pump := ingest.NewPump(pc, stream, func(t resources.Trade, receivedAt time.Time) bool {
			return buf.Send(ingest.TradeRecord{Trade: t, ReceivedAt: receivedAt})
		}, logger)
		start("trade pump", pump)

		stats["trades"] = func() any {
			return map[string]any{"pump": pump.Stats(), "writer": writer.Stats(), "buffer": buf.Stats()}
		}
	}

	// Transaction stream
	if cfg.Streams.Transactions {
		buf := ingest.NewGrowableBuffer[ingest.TransactionRecord](cfg.Writers.BufferSize)
		writer := ingest.NewTransactionWriter(writerCfg, buf, db, logger)
		start("transaction writer", writer)

		stream := requests.Transactions{Cursor: "now", IncludeFailed: true}.Stream(ctx, client)
		pc := pumpCfg
		pc.Name = "transactions"
		pump := ingest.NewPump(pc, stream, func(tx resources.Transaction, receivedAt time.Time) bool {
			return buf.Send(ingest.TransactionRecord{Transaction: tx, ReceivedAt: receivedAt})
		}, logger)
		start("transaction pump", pump)

		stats["transactions"] = func() any {
			return map[string]any{"pump": pump.Stats(), "writer": writer.Stats(), "buffer": buf.Stats()}
		}
	}

	// Fee stats poller
	if cfg.Poller.Interval > 0 {
		recorder := ingest.NewFeeStatsRecorder(writerCfg, db, logger)
		p := poller.New(poller.Config{Interval: cfg.Poller.Interval}, client,
			poller.FeeStatsHandlerFunc(recorder.Record), logger)
		start("fee stats poller", p)
	}

	// Health server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(db, cfg.Health.Path, stats),
	}
	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("gatherer running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d%s", cfg.Health.Port, cfg.Health.Path),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	logger.Info("gatherer stopped")
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(db *pgxpool.Pool, path string, stats map[string]func() any) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		// Check database
		if err := db.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["timescaledb"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["timescaledb"] = "connected"
		}

		for name, s := range stats {
			health.Components[name] = s()
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
