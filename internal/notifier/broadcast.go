package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"alertprefs/internal/prefstore/redisstore"
)

// AreaUpdateInfoAction is sent whenever the area update info switch changes.
const AreaUpdateInfoAction = "com.android.cellbroadcastreceiver.action.AREA_UPDATE_INFO_ENABLED"

// DefaultChannel is the restricted channel broadcasts are published on.
const DefaultChannel = "alertprefs:restricted:broadcasts"

// Broadcast is one outbound notification.
type Broadcast struct {
	Action string `json:"action"`
	Enable bool   `json:"enable"`
}

// Broadcaster delivers broadcasts to listeners outside the model.
type Broadcaster interface {
	Broadcast(ctx context.Context, b Broadcast) error
}

// LogBroadcaster writes broadcasts to a logger. It is the default when no
// transport is configured.
type LogBroadcaster struct {
	Log logrus.FieldLogger
}

// Broadcast logs b at info level.
func (l LogBroadcaster) Broadcast(_ context.Context, b Broadcast) error {
	l.Log.WithFields(logrus.Fields{"action": b.Action, "enable": b.Enable}).Info("Broadcast")
	return nil
}

// RedisBroadcaster publishes broadcasts as JSON on a redis channel.
type RedisBroadcaster struct {
	client  goredis.UniversalClient
	channel string
}

// NewRedisBroadcaster publishes on channel, or DefaultChannel when empty.
func NewRedisBroadcaster(client goredis.UniversalClient, channel string) *RedisBroadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroadcaster{client: client, channel: channel}
}

// OpenRedisBroadcaster dials redisURL and returns a broadcaster over it.
func OpenRedisBroadcaster(ctx context.Context, redisURL, channel string) (*RedisBroadcaster, error) {
	client, err := redisstore.Dial(ctx, redisURL)
	if err != nil {
		return nil, err
	}
	return NewRedisBroadcaster(client, channel), nil
}

// Channel returns the channel broadcasts are published on.
func (r *RedisBroadcaster) Channel() string {
	return r.channel
}

// Broadcast publishes b.
func (r *RedisBroadcaster) Broadcast(ctx context.Context, b Broadcast) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal broadcast: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to redis: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (r *RedisBroadcaster) Close() error {
	return r.client.Close()
}

var (
	_ Broadcaster = LogBroadcaster{}
	_ Broadcaster = (*RedisBroadcaster)(nil)
)
