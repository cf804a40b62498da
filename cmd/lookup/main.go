// lookup performs one-shot Horizon queries and prints the result as JSON.
// Usage:
//
//	go run ./cmd/lookup --account GDUK...
//	go run ./cmd/lookup --ledger 49892345
//	go run ./cmd/lookup --submit-tx AAAA...
//
// With no flags it prints the instance root document.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rickgao/horizon-data/internal/horizon"
	"github.com/rickgao/horizon-data/internal/requests"
)

func main() {
	url := flag.String("url", "https://horizon.stellar.org", "horizon instance URL")
	account := flag.String("account", "", "account address to fetch")
	ledger := flag.Int("ledger", 0, "ledger sequence to fetch")
	submitTx := flag.String("submit-tx", "", "base64 transaction envelope to submit")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	client, err := horizon.NewClient(*url,
		horizon.WithLogger(logger),
		horizon.WithTimeout(30*time.Second),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid horizon URL %q: %v\n", *url, err)
		os.Exit(1)
	}

	ctx := context.Background()

	var result any
	switch {
	case *account != "":
		result, err = requests.SingleAccount{AccountID: *account}.Do(ctx, client)
	case *ledger != 0:
		result, err = requests.SingleLedger{Sequence: int32(*ledger)}.Do(ctx, client)
	case *submitTx != "":
		result, err = requests.SubmitTransaction{TransactionXdr: *submitTx}.Do(ctx, client)
	default:
		result, err = requests.Root{}.Do(ctx, client)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
