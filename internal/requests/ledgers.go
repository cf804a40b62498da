package requests

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rickgao/horizon-data/internal/horizon"
	"github.com/rickgao/horizon-data/internal/resources"
)

// Ledgers requests a page of closed ledgers. The same request streams new
// ledgers as they close.
type Ledgers struct {
	Cursor string
	Limit  int
	Order  Order
}

func (r Ledgers) ResolveURL(host *url.URL) (*url.URL, error) {
	return resolve(host, "/ledgers", pageQuery(r.Cursor, r.Limit, r.Order))
}

func (Ledgers) IsPost() bool { return false }

// Do fetches one page of ledgers.
func (r Ledgers) Do(ctx context.Context, c *horizon.Client) (*resources.Page[resources.Ledger], error) {
	return horizon.Execute[resources.Page[resources.Ledger]](ctx, c, r)
}

// Stream opens a resumable stream of ledgers.
func (r Ledgers) Stream(ctx context.Context, c *horizon.Client) *horizon.Stream[resources.Ledger] {
	return horizon.NewStream[resources.Ledger](ctx, c, r)
}

// SingleLedger requests one ledger by sequence number.
type SingleLedger struct {
	Sequence int32
}

func (r SingleLedger) ResolveURL(host *url.URL) (*url.URL, error) {
	if r.Sequence <= 0 {
		return nil, fmt.Errorf("ledger sequence must be positive, got %d", r.Sequence)
	}
	return resolve(host, "/ledgers/"+strconv.FormatInt(int64(r.Sequence), 10), nil)
}

func (SingleLedger) IsPost() bool { return false }

// Do fetches the ledger.
func (r SingleLedger) Do(ctx context.Context, c *horizon.Client) (*resources.Ledger, error) {
	return horizon.Execute[resources.Ledger](ctx, c, r)
}
