package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/byStayo/game-percentiles-sub001/internal/store"
)

// TTL constants
const (
	EdgeTTL      = 24 * time.Hour
	EdgeIndexTTL = 24 * time.Hour
)

// RedisWriter mirrors freshly computed edges into Redis so read-heavy
// consumers never touch Postgres. The database row is always written first;
// the cache is a best-effort projection.
type RedisWriter struct {
	client *redis.Client
}

// NewRedisWriter creates a new Redis writer.
func NewRedisWriter(client *redis.Client) *RedisWriter {
	return &RedisWriter{
		client: client,
	}
}

// PublishEdge stores one edge under its game key and appends the game id to
// the day's index list.
func (w *RedisWriter) PublishEdge(ctx context.Context, edge *store.DailyEdge) error {
	key := fmt.Sprintf("edge:%s:%d", edge.EdgeDate.Format("2006-01-02"), edge.GameID)

	data, err := json.Marshal(edge)
	if err != nil {
		return fmt.Errorf("marshaling edge: %w", err)
	}

	indexKey := fmt.Sprintf("edges:%s:%s", edge.Sport, edge.EdgeDate.Format("2006-01-02"))

	pipe := w.client.Pipeline()
	pipe.Set(ctx, key, data, EdgeTTL)
	pipe.SAdd(ctx, indexKey, edge.GameID)
	pipe.Expire(ctx, indexKey, EdgeIndexTTL)

	_, err = pipe.Exec(ctx)
	return err
}

// ReadEdge retrieves one edge, or nil when the cache has no entry.
func (w *RedisWriter) ReadEdge(ctx context.Context, date time.Time, gameID int64) (*store.DailyEdge, error) {
	key := fmt.Sprintf("edge:%s:%d", date.Format("2006-01-02"), gameID)

	data, err := w.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var edge store.DailyEdge
	if err := json.Unmarshal([]byte(data), &edge); err != nil {
		return nil, fmt.Errorf("unmarshaling edge: %w", err)
	}

	return &edge, nil
}

// ReadEdgeIndex retrieves the day's published game ids for a sport.
func (w *RedisWriter) ReadEdgeIndex(ctx context.Context, sport string, date time.Time) ([]string, error) {
	key := fmt.Sprintf("edges:%s:%s", sport, date.Format("2006-01-02"))

	return w.client.SMembers(ctx, key).Result()
}
