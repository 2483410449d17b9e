// Package batch provides a generic page-at-a-time drain loop for working
// through large result sets without loading them all at once.
package batch

import (
	"context"
	"fmt"
)

// FetchFunc returns the next page of items, skipping the first skip items
// and returning at most take of them. An empty page signals exhaustion.
type FetchFunc[T any] func(ctx context.Context, skip, take int) ([]T, error)

// ActionFunc consumes one fetched page.
type ActionFunc[T any] func(ctx context.Context, items []T) error

// Drain repeatedly fetches pages at increasing offsets starting at zero and
// applies action to each non-empty page, stopping at the first empty page.
// It reports whether action ran at least once.
//
// The page size take must be positive. Drain assumes the underlying source
// is stable for the duration of the loop; if the action (or anything else)
// mutates the source while Drain is running, items may be skipped or seen
// twice. Callers that delete what they fetch should collect first and
// delete after the drain completes.
func Drain[T any](ctx context.Context, fetch FetchFunc[T], action ActionFunc[T], take int) (bool, error) {
	if take <= 0 {
		return false, fmt.Errorf("batch: page size must be positive, got %d", take)
	}

	skip := 0
	ranOnce := false

	items, err := fetch(ctx, skip, take)
	if err != nil {
		return ranOnce, err
	}

	for len(items) > 0 {
		if err := action(ctx, items); err != nil {
			return ranOnce, err
		}
		ranOnce = true
		skip += take

		items, err = fetch(ctx, skip, take)
		if err != nil {
			return ranOnce, err
		}
	}

	return ranOnce, nil
}
