package common

import (
	"context"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/metacatalog/internal/events"
)

// Stream keeps an SSE connection open and calls send after every change
// event on bus. It sends nothing up front since the page already holds the
// current view. Send failures are reported to the browser console and the
// stream keeps going.
func Stream(ctx context.Context, sse *datastar.ServerSentEventGenerator, bus events.Bus, send func() error) {
	updates, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
			if err := send(); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}
