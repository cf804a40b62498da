package requests

import (
	"context"
	"net/url"

	"github.com/rickgao/horizon-data/internal/horizon"
	"github.com/rickgao/horizon-data/internal/resources"
)

// Root requests the Horizon root document describing the instance and the
// ledger range it has ingested.
type Root struct{}

func (Root) ResolveURL(host *url.URL) (*url.URL, error) {
	return resolve(host, "/", nil)
}

func (Root) IsPost() bool { return false }

// Do fetches the root document.
func (r Root) Do(ctx context.Context, c *horizon.Client) (*resources.Root, error) {
	return horizon.Execute[resources.Root](ctx, c, r)
}

// FeeStats requests current network fee statistics.
type FeeStats struct{}

func (FeeStats) ResolveURL(host *url.URL) (*url.URL, error) {
	return resolve(host, "/fee_stats", nil)
}

func (FeeStats) IsPost() bool { return false }

// Do fetches the fee statistics.
func (r FeeStats) Do(ctx context.Context, c *horizon.Client) (*resources.FeeStats, error) {
	return horizon.Execute[resources.FeeStats](ctx, c, r)
}
