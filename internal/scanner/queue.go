package scanner

import (
	"context"
	"sync/atomic"
	"time"
)

// Queue holds pending directory paths for the worker pool. It is safe for
// concurrent producers and consumers. With capacity 0 the queue is
// unbounded and Enqueue never blocks; with a positive capacity it degrades
// to a plain buffered channel, so a full queue applies backpressure to
// producers. No FIFO ordering is guaranteed or needed: traversal order is
// irrelevant, the tree only shrinks as it is consumed.
type Queue struct {
	in      chan string
	out     chan string
	quit    chan struct{}
	pending atomic.Int64
}

// NewQueue creates a queue. capacity 0 means unbounded.
func NewQueue(capacity int) *Queue {
	q := &Queue{quit: make(chan struct{})}
	if capacity > 0 {
		ch := make(chan string, capacity)
		q.in, q.out = ch, ch
		return q
	}
	q.in = make(chan string)
	q.out = make(chan string)
	go q.pump()
	return q
}

// pump shuttles paths from in to out through an unbounded buffer.
func (q *Queue) pump() {
	var buf []string
	for {
		var out chan string
		var next string
		if len(buf) > 0 {
			out = q.out
			next = buf[0]
		}
		select {
		case p := <-q.in:
			buf = append(buf, p)
		case out <- next:
			buf = buf[1:]
		case <-q.quit:
			return
		}
	}
}

// Enqueue adds a path. It blocks only when a bounded capacity is configured
// and the queue is full, or until ctx is canceled.
func (q *Queue) Enqueue(ctx context.Context, path string) error {
	select {
	case q.in <- path:
		q.pending.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue blocks up to timeout for the next path. The second return is
// false when the timeout elapsed or ctx was canceled; an elapsed timeout is
// the worker's signal to exit, not an error.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (string, bool) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case p := <-q.out:
		q.pending.Add(-1)
		return p, true
	case <-t.C:
		return "", false
	case <-ctx.Done():
		return "", false
	}
}

// Len reports the approximate number of pending paths.
func (q *Queue) Len() int {
	return int(q.pending.Load())
}

// Close stops the buffering goroutine of an unbounded queue. Call only
// after every producer and consumer has stopped.
func (q *Queue) Close() {
	close(q.quit)
}
