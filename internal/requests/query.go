package requests

import (
	"net/url"
	"strconv"
)

// Order selects the paging direction for listable endpoints.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// pageQuery builds the shared cursor/limit/order parameters. Zero values
// are omitted so the server applies its defaults.
func pageQuery(cursor string, limit int, order Order) url.Values {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if order != "" {
		q.Set("order", string(order))
	}
	return q
}

// resolve joins path onto the host and attaches query parameters.
func resolve(host *url.URL, path string, query url.Values) (*url.URL, error) {
	u := host.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u, nil
}
