package queue

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO of work items, safe for concurrent use.
type Queue struct {
	mu       sync.Mutex
	items    []Item
	enqueued uint64
	wake     chan struct{}
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Enqueue appends item to the tail of the queue. It never blocks: the queue
// grows as needed and producers are never back-pressured.
func (q *Queue) Enqueue(item Item) {
	if item == nil {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, item)
	q.enqueued++
	q.mu.Unlock()
	q.signal()
}

// Dequeue removes and returns the oldest item. It blocks until an item is
// available or ctx is cancelled, in which case it returns ctx.Err().
func (q *Queue) Dequeue(ctx context.Context) (Item, error) {
	for {
		if item, ok := q.pop(); ok {
			return item, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.wake:
		}
	}
}

// Len reports the number of items currently waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Enqueued reports the cumulative number of items accepted since creation.
func (q *Queue) Enqueued() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.enqueued
}

func (q *Queue) pop() (Item, bool) {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return nil, false
	}
	item := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	remaining := len(q.items)
	if remaining == 0 {
		q.items = nil
	}
	q.mu.Unlock()

	// Pass the wakeup along so a sibling consumer is not left sleeping
	// while items remain.
	if remaining > 0 {
		q.signal()
	}
	return item, true
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
