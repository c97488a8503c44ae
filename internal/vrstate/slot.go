package vrstate

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// slot is a value guarded by a context-aware exclusive lock.
type slot[T any] struct {
	sem *semaphore.Weighted
	val T
}

func newSlot[T any](v T) *slot[T] {
	return &slot[T]{sem: semaphore.NewWeighted(1), val: v}
}

// with runs fn while holding the slot. The lock is released when fn returns
// or panics.
func (s *slot[T]) with(ctx context.Context, fn func(*T) error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)
	return fn(&s.val)
}
