package supabase

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// PreferMergeDuplicates asks the record API to update rows that collide on the
// conflict target instead of rejecting them
const PreferMergeDuplicates = "resolution=merge-duplicates"

// UpsertOptions control a record upsert
type UpsertOptions struct {
	// OnConflict lists the columns forming the conflict target. Empty means the
	// table's primary key.
	OnConflict []string
}

// Filter selects rows by column equality
type Filter struct {
	Columns []string
	Eq      map[string]string
}

func (f Filter) query() url.Values {
	query := url.Values{}
	if len(f.Columns) > 0 {
		query.Set("select", strings.Join(f.Columns, ","))
	}
	for column, value := range f.Eq {
		query.Set(column, "eq."+value)
	}
	return query
}

func tablePath(table string) string {
	return restPathPrefix + url.PathEscape(table)
}

// Upsert inserts row into table, merging into an existing row on conflict
func (c *Client) Upsert(ctx context.Context, table string, row interface{}, opts UpsertOptions) error {
	query := url.Values{}
	if len(opts.OnConflict) > 0 {
		query.Set("on_conflict", strings.Join(opts.OnConflict, ","))
	}

	req, err := c.newRequest(ctx, http.MethodPost, tablePath(table), query, row)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", PreferMergeDuplicates+",return=minimal")

	return c.do(req, "upsert "+table, nil)
}

// Select reads rows of table matching filter into out, which must point to a slice
func (c *Client) Select(ctx context.Context, table string, filter Filter, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, tablePath(table), filter.query(), nil)
	if err != nil {
		return err
	}

	return c.do(req, "select "+table, out)
}
