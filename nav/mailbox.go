package nav

import (
	"context"
	"sync/atomic"
)

// mailbox is the session's single-consumer event queue. Every externally
// delivered callback is wrapped as a task and sent here; one goroutine
// drains it, giving the session its single-writer discipline.
type mailbox[T any] struct {
	channel chan T
	context context.Context
	closed  atomic.Int32
}

func newMailbox[T any](ctx context.Context, bufferSize int) *mailbox[T] {
	return &mailbox[T]{
		channel: make(chan T, bufferSize),
		context: ctx,
	}
}

func (mb *mailbox[T]) Send(ctx context.Context, item T) error {
	select {
	case mb.channel <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-mb.context.Done():
		return mb.context.Err()
	}
}

// TrySend enqueues without blocking; it reports false when the queue is
// full or the session context is done.
func (mb *mailbox[T]) TrySend(item T) bool {
	select {
	case <-mb.context.Done():
		return false
	default:
	}
	select {
	case mb.channel <- item:
		return true
	default:
		return false
	}
}

func (mb *mailbox[T]) Receive(ctx context.Context) (T, error) {
	select {
	case item := <-mb.channel:
		return item, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-mb.context.Done():
		var zero T
		return zero, mb.context.Err()
	}
}

func (mb *mailbox[T]) Close() {
	if mb.closed.CompareAndSwap(0, 1) {
		close(mb.channel)
	}
}

func (mb *mailbox[T]) QueueLength() int {
	return len(mb.channel)
}
