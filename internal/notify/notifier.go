package notify

import (
	"context"
	"encoding/json"
	"time"

	"go-commerce-ledger/internal/ws"
	"go-commerce-ledger/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Notifier publishes events to interested collaborators. Delivery is
// best-effort fire-and-forget: failures are logged and never propagated to
// the calling operation.
type Notifier interface {
	Publish(ctx context.Context, channel string, event Envelope)
}

// RedisNotifier publishes on redis pub/sub and mirrors every event to the
// local websocket hub for connected dashboards.
type RedisNotifier struct {
	rdb *redis.Client
	hub *ws.Hub
}

func NewRedisNotifier(rdb *redis.Client, hub *ws.Hub) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, hub: hub}
}

func (n *RedisNotifier) Publish(ctx context.Context, channel string, event Envelope) {
	if n.hub != nil {
		n.hub.BroadcastJSON(map[string]interface{}{
			"channel": channel,
			"event":   event,
		})
	}

	if n.rdb == nil {
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		logger.Get().Warn("notify marshal failed",
			zap.String("channel", channel), zap.Error(err))
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := n.rdb.Publish(pubCtx, channel, msg).Err(); err != nil {
		logger.Get().Warn("notify publish failed",
			zap.String("channel", channel),
			zap.String("event_type", event.EventType),
			zap.Error(err))
	}
}

// NopNotifier discards events. Used in tests and when redis is not configured.
type NopNotifier struct{}

func (NopNotifier) Publish(ctx context.Context, channel string, event Envelope) {}
