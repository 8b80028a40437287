// Package events carries catalog change notifications between the catalog
// service and whatever renders the catalog (SSE streams, other processes).
//
// Events are cues, not deltas: a subscriber reacts by reading a fresh
// snapshot from the store.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/leapstack-labs/metacatalog/internal/ui/notifier"
)

// Type names what happened to the collection.
type Type string

// Event types.
const (
	Created  Type = "created"
	Updated  Type = "updated"
	Deleted  Type = "deleted"
	Reloaded Type = "reloaded"
)

// Event is a single change notification.
type Event struct {
	Type    Type      `json:"type"`
	AssetID string    `json:"assetId,omitempty"`
	At      time.Time `json:"at"`
	// Origin identifies the publishing process for cross-process bridges.
	Origin string `json:"origin,omitempty"`
}

// Bus publishes and fans out change events.
type Bus interface {
	Publish(ctx context.Context, e Event) error
	// Subscribe returns a channel of events and a function that ends the
	// subscription. The channel is closed once the function is called.
	Subscribe() (<-chan Event, func())
}

// LocalBus fans events out to subscribers in this process.
type LocalBus struct {
	n *notifier.Notifier[Event]
}

// NewLocalBus creates an in-process bus.
func NewLocalBus() *LocalBus {
	return &LocalBus{n: notifier.New[Event]()}
}

// Publish delivers e to every current subscriber. A zero At is set to now.
func (b *LocalBus) Publish(_ context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b.n.Broadcast(e)
	return nil
}

// Subscribe implements Bus.
func (b *LocalBus) Subscribe() (<-chan Event, func()) {
	ch := b.n.Subscribe()
	var once sync.Once
	return ch, func() {
		once.Do(func() { b.n.Unsubscribe(ch) })
	}
}

// Subscribers returns the number of active subscriptions.
func (b *LocalBus) Subscribers() int {
	return b.n.Len()
}

// Discard is a Bus that drops every event and never delivers any.
type Discard struct{}

// Publish implements Bus.
func (Discard) Publish(context.Context, Event) error { return nil }

// Subscribe implements Bus. The returned channel never receives.
func (Discard) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event)
	var once sync.Once
	return ch, func() { once.Do(func() { close(ch) }) }
}
