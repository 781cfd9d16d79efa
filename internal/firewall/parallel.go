package firewall

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// forEachGroup runs fn for every group with at most limit in flight. fn records
// its own outcome; nothing here cancels siblings.
func forEachGroup(ctx context.Context, limit int, groups []GroupRef, fn func(ctx context.Context, i int, g GroupRef)) {
	if limit < 1 {
		limit = 1
	}
	var eg errgroup.Group
	eg.SetLimit(limit)
	for i, g := range groups {
		eg.Go(func() error {
			fn(ctx, i, g)
			return nil
		})
	}
	_ = eg.Wait()
}
