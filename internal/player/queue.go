package player

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrClosed    = errors.New("player closed")
	ErrQueueFull = errors.New("playback queue full")
)

type task func(context.Context) error

// queue runs tasks one at a time in submission order.
//
// Senders hold the read lock only while they are allowed to send; close
// wakes blocked senders through closing before taking the write lock, so a
// waiting sender never stalls Play or close. ch is never closed: stopped
// tells the worker that no further sends can happen and it may drain.
type queue struct {
	mu      sync.RWMutex
	closed  bool
	once    sync.Once
	closing chan struct{}
	stopped chan struct{}
	ch      chan task
}

func newQueue(size int) *queue {
	if size < 1 {
		size = 1
	}
	return &queue{
		closing: make(chan struct{}),
		stopped: make(chan struct{}),
		ch:      make(chan task, size),
	}
}

// run executes tasks until the queue is closed and drained or ctx ends.
func (q *queue) run(ctx context.Context, onErr func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-q.ch:
			q.exec(ctx, t, onErr)
		case <-q.stopped:
			for {
				if ctx.Err() != nil {
					return
				}
				select {
				case t := <-q.ch:
					q.exec(ctx, t, onErr)
				default:
					return
				}
			}
		}
	}
}

func (q *queue) exec(ctx context.Context, t task, onErr func(error)) {
	if t == nil {
		return
	}
	if err := t(ctx); err != nil && onErr != nil {
		onErr(err)
	}
}

func (q *queue) enqueue(t task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case q.ch <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// enqueueWait blocks until there is room in the queue, the queue is closed
// or ctx ends.
func (q *queue) enqueueWait(ctx context.Context, t task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case q.ch <- t:
		return nil
	case <-q.closing:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *queue) close() {
	q.once.Do(func() {
		close(q.closing)
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		close(q.stopped)
	})
}
