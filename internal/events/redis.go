package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultChannel is the redis channel used when none is configured.
const DefaultChannel = "metacatalog:changes"

// RedisBridge extends a LocalBus across processes through redis pub/sub.
// Published events go to local subscribers and to redis; events received
// from other processes are re-broadcast locally. Events carrying this
// bridge's own origin are ignored on receipt.
type RedisBridge struct {
	local   *LocalBus
	rdb     *goredis.Client
	channel string
	origin  string
	logger  *slog.Logger
}

// RedisConfig configures a RedisBridge.
type RedisConfig struct {
	Addr    string
	Channel string
}

// NewRedisBridge connects to redis and returns a bridge over local.
// Call Start to begin forwarding remote events.
func NewRedisBridge(ctx context.Context, cfg RedisConfig, local *LocalBus, logger *slog.Logger) (*RedisBridge, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	b := newRedisBridge(local, cfg.Channel, logger)
	b.rdb = rdb
	return b, nil
}

func newRedisBridge(local *LocalBus, channel string, logger *slog.Logger) *RedisBridge {
	if strings.TrimSpace(channel) == "" {
		channel = DefaultChannel
	}
	if local == nil {
		local = NewLocalBus()
	}
	return &RedisBridge{
		local:   local,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger.With(slog.String("component", "redis-bridge"), slog.String("channel", channel)),
	}
}

// Publish delivers e locally, then to other processes through redis.
func (b *RedisBridge) Publish(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	e.Origin = b.origin
	_ = b.local.Publish(ctx, e)

	if b.rdb == nil {
		return fmt.Errorf("redis bridge not connected")
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe implements Bus.
func (b *RedisBridge) Subscribe() (<-chan Event, func()) {
	return b.local.Subscribe()
}

// Start subscribes to the redis channel and forwards remote events to the
// local bus until ctx is canceled.
func (b *RedisBridge) Start(ctx context.Context) error {
	if b.rdb == nil {
		return fmt.Errorf("redis bridge not connected")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				b.receive(ctx, m.Payload)
			}
		}
	}()

	b.logger.Info("forwarding remote catalog changes")
	return nil
}

// receive decodes a redis payload and re-broadcasts it locally.
// It reports whether the event was forwarded.
func (b *RedisBridge) receive(ctx context.Context, payload string) bool {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		b.logger.Warn("bad redis event payload", slog.String("error", err.Error()))
		return false
	}
	if e.Origin == b.origin {
		return false
	}
	_ = b.local.Publish(ctx, e)
	return true
}

// Close closes the redis connection.
func (b *RedisBridge) Close() error {
	if b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
