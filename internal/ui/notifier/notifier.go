// Package notifier provides a simple broadcast mechanism for SSE updates.
package notifier

import "sync"

// DefaultBuffer is the per-listener buffer used by New.
const DefaultBuffer = 16

// Notifier broadcasts values to all subscribed listeners.
// Listeners that fall behind miss values rather than block the sender;
// SSE handlers only use a value as a cue to re-read the store.
type Notifier[T any] struct {
	mu        sync.RWMutex
	listeners map[chan T]struct{}
	buffer    int
}

// New creates a new Notifier with DefaultBuffer slots per listener.
func New[T any]() *Notifier[T] {
	return NewBuffered[T](DefaultBuffer)
}

// NewBuffered creates a Notifier whose listener channels hold size values.
func NewBuffered[T any](size int) *Notifier[T] {
	if size < 1 {
		size = 1
	}
	return &Notifier[T]{
		listeners: make(map[chan T]struct{}),
		buffer:    size,
	}
}

// Subscribe returns a channel that receives broadcast values.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier[T]) Subscribe() chan T {
	ch := make(chan T, n.buffer)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
// Unsubscribing an unknown channel is a no-op.
func (n *Notifier[T]) Unsubscribe(ch chan T) {
	n.mu.Lock()
	_, ok := n.listeners[ch]
	delete(n.listeners, ch)
	n.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Broadcast sends v to all listeners.
// Non-blocking: if a listener's channel is full, v is skipped for it.
func (n *Notifier[T]) Broadcast(v T) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- v:
		default:
			// Channel full, the listener catches up on the next value.
		}
	}
}

// Len returns the number of active listeners.
func (n *Notifier[T]) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}
