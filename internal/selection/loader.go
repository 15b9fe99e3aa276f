package selection

import (
	"context"
	"errors"
	"sync"
)

var ErrCancelled = errors.New("the request was superseded by a newer one")

// Result is one page of a list together with the number of all matching items.
type Result[T any] struct {
	Items []T
	Total int64
}

// FetchFunc loads a page of items matching the filter.
type FetchFunc[T any] func(ctx context.Context, f Filter, p Page) (Result[T], error)

// Loader loads pages of a list where only the most recent load counts.
//
// Starting a load cancels the context of the one still in flight. The
// result of a superseded load is discarded and ErrCancelled returned.
type Loader[T any] struct {
	fetch FetchFunc[T]

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

// NewLoader returns a Loader using fetch.
func NewLoader[T any](fetch FetchFunc[T]) *Loader[T] {
	return &Loader[T]{fetch: fetch}
}

// Load fetches a page. It returns ErrCancelled if another load was started
// before this one finished.
func (l *Loader[T]) Load(ctx context.Context, f Filter, p Page) (Result[T], error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.generation++
	generation := l.generation
	l.cancel = cancel
	l.mu.Unlock()

	result, err := l.fetch(ctx, f, p.Normalize())

	l.mu.Lock()
	defer l.mu.Unlock()

	if generation != l.generation {
		return Result[T]{}, ErrCancelled
	}
	l.cancel = nil

	if err != nil {
		return Result[T]{}, err
	}

	return result, nil
}
