package net

import "sync"

// Handoff is an unbounded queue with many producers and one consumer.
// Publish never blocks; the consumer polls with TryRecv or Drain.
type Handoff[T any] struct {
	mu    sync.Mutex
	items []T
	head  int
}

// NewHandoff returns an empty handoff.
func NewHandoff[T any]() *Handoff[T] {
	return &Handoff[T]{}
}

// Publish appends v.
func (h *Handoff[T]) Publish(v T) {
	h.mu.Lock()
	h.items = append(h.items, v)
	h.mu.Unlock()
}

// TryRecv removes the oldest value, if any.
func (h *Handoff[T]) TryRecv() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var zero T
	if h.head == len(h.items) {
		return zero, false
	}
	v := h.items[h.head]
	h.items[h.head] = zero
	h.head++
	if h.head == len(h.items) {
		h.items = h.items[:0]
		h.head = 0
	}
	return v, true
}

// Drain removes every queued value and calls fn on each in publish order.
// fn runs without the lock held, so it may Publish.
func (h *Handoff[T]) Drain(fn func(T)) int {
	h.mu.Lock()
	batch := h.items[h.head:]
	h.items = nil
	h.head = 0
	h.mu.Unlock()

	for _, v := range batch {
		fn(v)
	}
	return len(batch)
}

// Len reports how many values are queued.
func (h *Handoff[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items) - h.head
}
