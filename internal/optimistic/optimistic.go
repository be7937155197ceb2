// Package optimistic wraps destructive collection mutations with
// local-first apply and full rollback on remote failure. Either the
// whole mutation is visible or the pre-mutation state is restored;
// there is no intermediate state.
package optimistic

import (
	"context"
	"slices"
)

// Run snapshots *col, replaces it with mutate's result, then issues the
// remote call. On remote failure the snapshot is restored and the error
// returned. mutate must build a new slice rather than editing the one
// it receives, so the snapshot stays untouched.
func Run[T any](ctx context.Context, col *[]T, mutate func([]T) []T, remote func(context.Context) error) error {
	snapshot := slices.Clone(*col)
	*col = mutate(*col)

	if err := remote(ctx); err != nil {
		*col = snapshot
		return err
	}
	return nil
}

// RemoveFunc returns a mutate function that drops every element
// matching the predicate.
func RemoveFunc[T any](match func(T) bool) func([]T) []T {
	return func(in []T) []T {
		out := make([]T, 0, len(in))
		for _, item := range in {
			if !match(item) {
				out = append(out, item)
			}
		}
		return out
	}
}

// ReplaceFunc returns a mutate function that swaps in replacement for
// every element matching the predicate.
func ReplaceFunc[T any](match func(T) bool, replacement T) func([]T) []T {
	return func(in []T) []T {
		out := make([]T, 0, len(in))
		for _, item := range in {
			if match(item) {
				out = append(out, replacement)
				continue
			}
			out = append(out, item)
		}
		return out
	}
}
