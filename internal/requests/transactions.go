package requests

import (
	"context"
	"errors"
	"net/url"

	"github.com/rickgao/horizon-data/internal/horizon"
	"github.com/rickgao/horizon-data/internal/resources"
)

// Transactions requests a page of transactions; streams new transactions as
// ledgers close.
type Transactions struct {
	Cursor        string
	Limit         int
	Order         Order
	IncludeFailed bool
}

func (r Transactions) ResolveURL(host *url.URL) (*url.URL, error) {
	q := pageQuery(r.Cursor, r.Limit, r.Order)
	if r.IncludeFailed {
		q.Set("include_failed", "true")
	}
	return resolve(host, "/transactions", q)
}

func (Transactions) IsPost() bool { return false }

// Do fetches one page of transactions.
func (r Transactions) Do(ctx context.Context, c *horizon.Client) (*resources.Page[resources.Transaction], error) {
	return horizon.Execute[resources.Page[resources.Transaction]](ctx, c, r)
}

// Stream opens a resumable stream of transactions.
func (r Transactions) Stream(ctx context.Context, c *horizon.Client) *horizon.Stream[resources.Transaction] {
	return horizon.NewStream[resources.Transaction](ctx, c, r)
}

// SubmitTransaction submits a base64-encoded transaction envelope. The
// envelope travels as a query parameter; the body stays empty.
type SubmitTransaction struct {
	TransactionXdr string
}

func (r SubmitTransaction) ResolveURL(host *url.URL) (*url.URL, error) {
	if r.TransactionXdr == "" {
		return nil, errors.New("transaction envelope is required")
	}
	q := url.Values{}
	q.Set("tx", r.TransactionXdr)
	return resolve(host, "/transactions", q)
}

func (SubmitTransaction) IsPost() bool { return true }

// Do submits the transaction and returns its ingested form.
func (r SubmitTransaction) Do(ctx context.Context, c *horizon.Client) (*resources.Transaction, error) {
	return horizon.Execute[resources.Transaction](ctx, c, r)
}
