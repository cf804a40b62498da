package requests

import (
	"context"
	"net/url"

	"github.com/rickgao/horizon-data/internal/horizon"
	"github.com/rickgao/horizon-data/internal/resources"
)

// Trades requests a page of trades across all markets; streams new trades
// as they execute.
type Trades struct {
	Cursor string
	Limit  int
	Order  Order
}

func (r Trades) ResolveURL(host *url.URL) (*url.URL, error) {
	return resolve(host, "/trades", pageQuery(r.Cursor, r.Limit, r.Order))
}

func (Trades) IsPost() bool { return false }

// Do fetches one page of trades.
func (r Trades) Do(ctx context.Context, c *horizon.Client) (*resources.Page[resources.Trade], error) {
	return horizon.Execute[resources.Page[resources.Trade]](ctx, c, r)
}

// Stream opens a resumable stream of trades.
func (r Trades) Stream(ctx context.Context, c *horizon.Client) *horizon.Stream[resources.Trade] {
	return horizon.NewStream[resources.Trade](ctx, c, r)
}
