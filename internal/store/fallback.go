package store

import (
	"context"
	"sort"
)

// The degraded tier loses server-side pagination, so it fetches a larger
// window and truncates after the client-side sort.
const (
	fallbackCapFactor = 10
	fallbackCapFloor  = 500
)

func fallbackCap(limit int64) int64 {
	if limit <= 0 {
		return 0 // unbounded, same as the indexed tier
	}
	cap := limit * fallbackCapFactor
	if cap < fallbackCapFloor {
		cap = fallbackCapFloor
	}
	return cap
}

// FindOrdered issues a filtered + sorted query and, when the store reports
// the composite index as unavailable, silently re-issues the equality-only
// query and reorders client-side. Both tiers yield order-equivalent results
// up to limit; less must agree with sort.
func FindOrdered[T any](ctx context.Context, c Collection, filter Filter, sortBy Sort, limit int64, less func(a, b T) bool) ([]T, error) {
	var out []T
	err := c.Find(ctx, filter, FindOptions{Sort: &sortBy, Limit: limit}, &out)
	if err == nil {
		return out, nil
	}
	if !IsIndexUnavailable(err) {
		return nil, err
	}

	var all []T
	if err := c.Find(ctx, filter, FindOptions{Limit: fallbackCap(limit)}, &all); err != nil {
		return nil, err
	}
	return Reorder(all, less, limit), nil
}

// Reorder is the pure half of the degradation path: stable client-side sort
// followed by truncation to the originally requested limit. Split out so the
// order-equivalence property is testable without any store behind it.
func Reorder[T any](items []T, less func(a, b T) bool, limit int64) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}
