// Package queue implements the bounded FIFOs and the interruptible timed
// wait spec.md §5 and §9 require: fixed-capacity channels for
// producer/consumer handoff, and a one-bit notification that coalesces
// repeated signals instead of dropping or queuing them.
package queue

import "context"

// Bounded is a fixed-capacity FIFO of T. Push blocks the caller when the
// queue is full (spec.md §7 "QueueFull: producer blocks"); it never drops
// an element.
type Bounded[T any] struct {
	ch chan T
}

// NewBounded creates a queue with the given capacity.
func NewBounded[T any](capacity int) *Bounded[T] {
	return &Bounded[T]{ch: make(chan T, capacity)}
}

// Push enqueues v, blocking until space is available or ctx is done.
func (b *Bounded[T]) Push(ctx context.Context, v T) error {
	select {
	case b.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPush enqueues v without blocking, reporting whether it fit.
func (b *Bounded[T]) TryPush(v T) bool {
	select {
	case b.ch <- v:
		return true
	default:
		return false
	}
}

// Pop blocks until an element is available or ctx is done.
func (b *Bounded[T]) Pop(ctx context.Context) (T, bool) {
	select {
	case v := <-b.ch:
		return v, true
	case <-ctx.Done():
		var zero T
		return zero, false
	}
}

// Chan exposes the underlying channel for select statements that need to
// race a dequeue against other events (e.g. racing a dequeue against
// shutdown).
func (b *Bounded[T]) Chan() <-chan T {
	return b.ch
}

// DrainAll removes every currently-queued element without blocking. Used
// by stop_all (spec.md §4.1, §5 "Cancel-all ordering: drain before
// signal").
func (b *Bounded[T]) DrainAll() int {
	n := 0
	for {
		select {
		case <-b.ch:
			n++
		default:
			return n
		}
	}
}

// Len reports the number of currently-queued elements. Approximate under
// concurrent use; intended for diagnostics/metrics, not control flow.
func (b *Bounded[T]) Len() int {
	return len(b.ch)
}
