package requests

import (
	"context"
	"errors"
	"net/url"

	"github.com/rickgao/horizon-data/internal/horizon"
	"github.com/rickgao/horizon-data/internal/resources"
)

// SingleAccount requests one account by address.
type SingleAccount struct {
	AccountID string
}

func (r SingleAccount) ResolveURL(host *url.URL) (*url.URL, error) {
	if r.AccountID == "" {
		return nil, errors.New("account id is required")
	}
	return resolve(host, "/accounts/"+r.AccountID, nil)
}

func (SingleAccount) IsPost() bool { return false }

// Do fetches the account.
func (r SingleAccount) Do(ctx context.Context, c *horizon.Client) (*resources.Account, error) {
	return horizon.Execute[resources.Account](ctx, c, r)
}
