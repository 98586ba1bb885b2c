package console

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"partydesk.org/internal/console/apiclient"
	"partydesk.org/internal/party"
)

// Option is one row of a reference table, shaped for a form select.
type Option struct {
	ID    int64
	Label string
}

// lookupCache memoizes reference-table rows so every form render does not
// refetch the same country and type lists.
type lookupCache struct {
	cache *gocache.Cache
	api   *apiclient.Client
	reg   *party.Registry
}

func newLookupCache(api *apiclient.Client, reg *party.Registry, ttl time.Duration) *lookupCache {
	return &lookupCache{
		cache: gocache.New(ttl, 2*ttl),
		api:   api,
		reg:   reg,
	}
}

// Options returns select options for the named entity, fetching through the
// caller's token on a miss.
func (lc *lookupCache) Options(ctx context.Context, token, slug string) ([]Option, error) {
	if cached, ok := lc.cache.Get(slug); ok {
		return cached.([]Option), nil
	}

	d, ok := lc.reg.Lookup(slug)
	if !ok {
		return nil, fmt.Errorf("unknown lookup entity %q", slug)
	}
	rows, err := apiclient.NewResource[party.Record](lc.api, slug).WithToken(token).List(ctx)
	if err != nil {
		return nil, err
	}

	opts := make([]Option, 0, len(rows))
	for _, rec := range rows {
		opts = append(opts, Option{ID: rec.ID(), Label: d.Label(rec)})
	}
	lc.cache.SetDefault(slug, opts)
	return opts, nil
}

// Invalidate drops the cached rows for an entity after a write to it.
func (lc *lookupCache) Invalidate(slug string) {
	lc.cache.Delete(slug)
}
