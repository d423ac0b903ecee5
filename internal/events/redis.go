package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// MaxRedisEvents bounds the per-organization event log.
const MaxRedisEvents = 100

// RedisSink appends events to a capped list per organization.
type RedisSink struct {
	client redis.Cmdable
}

func NewRedisSink(client redis.Cmdable) *RedisSink {
	return &RedisSink{client: client}
}

func RedisKey(event Event) string {
	return "messages:events:" + event.OrganizationID.String()
}

func (rs *RedisSink) Name() string { return "redis" }

func (rs *RedisSink) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	key := RedisKey(event)
	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, payload)
		pipe.LTrim(ctx, key, 0, MaxRedisEvents-1)
		return nil
	})
	return err
}

// InitRedis connects and pings, failing fast on a bad address.
func InitRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}
