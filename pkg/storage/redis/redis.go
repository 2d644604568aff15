// Package redis provides a Redis-backed reply ledger. Each reply is stored as
// a JSON string and indexed by time in a sorted set.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/papercomputeco/replybot/pkg/storage"
)

// DefaultKeyPrefix namespaces every key written by the driver.
const DefaultKeyPrefix = "replybot:"

// Driver implements storage.Driver using Redis.
type Driver struct {
	client    *goredis.Client
	keyPrefix string
}

// NewDriver connects to the Redis server at url, for example
// "redis://localhost:6379/0", and verifies it is reachable.
func NewDriver(ctx context.Context, url, keyPrefix string) (*Driver, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}

	return &Driver{
		client:    client,
		keyPrefix: keyPrefix,
	}, nil
}

func (d *Driver) replyKey(statusID string) string {
	return d.keyPrefix + "reply:" + statusID
}

func (d *Driver) indexKey() string {
	return d.keyPrefix + "replies"
}

// Put stores a reply. Returns true if the reply was newly inserted.
func (d *Driver) Put(ctx context.Context, reply *storage.Reply) (bool, error) {
	if err := reply.Validate(); err != nil {
		return false, err
	}

	data, err := json.Marshal(reply)
	if err != nil {
		return false, fmt.Errorf("marshal reply: %w", err)
	}

	created, err := d.client.SetNX(ctx, d.replyKey(reply.StatusID), data, 0).Result()
	if err != nil {
		return false, fmt.Errorf("storing reply %s: %w", reply.StatusID, err)
	}
	if !created {
		return false, nil
	}

	err = d.client.ZAdd(ctx, d.indexKey(), goredis.Z{
		Score:  float64(reply.RepliedAt.UnixMilli()),
		Member: reply.StatusID,
	}).Err()
	if err != nil {
		return true, fmt.Errorf("indexing reply %s: %w", reply.StatusID, err)
	}

	return true, nil
}

// Get retrieves the reply to a status.
func (d *Driver) Get(ctx context.Context, statusID string) (*storage.Reply, error) {
	data, err := d.client.Get(ctx, d.replyKey(statusID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, storage.NotFoundError{StatusID: statusID}
	}
	if err != nil {
		return nil, fmt.Errorf("getting reply %s: %w", statusID, err)
	}

	var reply storage.Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("unmarshal reply %s: %w", statusID, err)
	}
	return &reply, nil
}

// Has checks if a status was answered.
func (d *Driver) Has(ctx context.Context, statusID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.replyKey(statusID)).Result()
	if err != nil {
		return false, fmt.Errorf("checking reply %s: %w", statusID, err)
	}
	return n == 1, nil
}

// List returns all replies, newest first.
func (d *Driver) List(ctx context.Context) ([]*storage.Reply, error) {
	ids, err := d.client.ZRevRange(ctx, d.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing replies: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = d.replyKey(id)
	}

	values, err := d.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("listing replies: %w", err)
	}

	replies := make([]*storage.Reply, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// Indexed but the reply key is gone.
			continue
		}

		var reply storage.Reply
		if err := json.Unmarshal([]byte(s), &reply); err != nil {
			return nil, fmt.Errorf("unmarshal reply %s: %w", ids[i], err)
		}
		replies = append(replies, &reply)
	}

	return replies, nil
}

// Count returns the number of stored replies.
func (d *Driver) Count(ctx context.Context) (int, error) {
	n, err := d.client.ZCard(ctx, d.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("counting replies: %w", err)
	}
	return int(n), nil
}

// Close closes the Redis client.
func (d *Driver) Close() error {
	return d.client.Close()
}

// Flush deletes every key written by the driver. It is used by tests.
func (d *Driver) Flush(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := d.client.Scan(ctx, cursor, d.keyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan keys: %w", err)
		}
		if len(keys) > 0 {
			if err := d.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
