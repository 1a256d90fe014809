package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Simplici0/printquote/internal/logger"
)

const (
	keyNamespace = "printquote"
	quotePrefix  = "quote"
	indexKey     = keyNamespace + ":quotes"
)

type cmdable interface {
	Get(context.Context, string) *redis.StringCmd
	ZRevRange(context.Context, string, int64, int64) *redis.StringSliceCmd
	TxPipelined(context.Context, func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

// RedisStore keeps one JSON value per quote plus a sorted set of ids scored by creation
// time for newest-first listing.
type RedisStore struct {
	store cmdable
}

// NewRedisStore returns a store over client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{store: client}
}

// NewRedisClient parses url and pings the server until it answers or the retry budget
// runs out.
func NewRedisClient(ctx context.Context, url string, log *logger.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 30 * time.Second
	retryPolicy.MaxInterval = 5 * time.Second

	err = backoff.RetryNotify(
		func() error {
			return client.Ping(ctx).Err()
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, next time.Duration) {
			log.Warn(log.WithFields(ctx, map[string]any{
				"error":           err.Error(),
				"next_attempt_in": next.String(),
			}), "redis ping failed, retrying")
		},
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func quoteKey(id string) string {
	return fmt.Sprintf("%s:%s:%s", keyNamespace, quotePrefix, id)
}

// Create stores q and indexes it in one transaction. An existing quote with the same id
// is left untouched and ErrAlreadyExists is returned.
func (s *RedisStore) Create(ctx context.Context, q Quote) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode quote %s: %w", q.ID, err)
	}
	var created *redis.BoolCmd
	_, err = s.store.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.SetNX(ctx, quoteKey(q.ID), payload, 0)
		pipe.ZAddNX(ctx, indexKey, indexEntry(q))
		return nil
	})
	if err != nil {
		return fmt.Errorf("create quote %s: %w", q.ID, err)
	}
	if !created.Val() {
		return fmt.Errorf("create quote %s: %w", q.ID, ErrAlreadyExists)
	}
	return nil
}

// Put writes q and its index entry in one transaction, replacing any stored quote with
// the same id.
func (s *RedisStore) Put(ctx context.Context, q Quote) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode quote %s: %w", q.ID, err)
	}
	_, err = s.store.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, quoteKey(q.ID), payload, 0)
		pipe.ZAdd(ctx, indexKey, indexEntry(q))
		return nil
	})
	if err != nil {
		return fmt.Errorf("put quote %s: %w", q.ID, err)
	}
	return nil
}

func indexEntry(q Quote) redis.Z {
	return redis.Z{Score: float64(q.CreatedAt.UnixMilli()), Member: q.ID}
}

// Get returns the quote with id or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, id string) (Quote, error) {
	raw, err := s.store.Get(ctx, quoteKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return Quote{}, ErrNotFound
	}
	if err != nil {
		return Quote{}, fmt.Errorf("get quote %s: %w", id, err)
	}
	var q Quote
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return Quote{}, fmt.Errorf("decode quote %s: %w", id, err)
	}
	return q, nil
}

// List returns every indexed quote, newest first.
func (s *RedisStore) List(ctx context.Context) ([]Quote, error) {
	ids, err := s.store.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list quote ids: %w", err)
	}
	out := make([]Quote, 0, len(ids))
	for _, id := range ids {
		q, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// index entry outlived its value
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// Delete removes the quote and its index entry or reports ErrNotFound.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	var removed *redis.IntCmd
	_, err := s.store.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.Del(ctx, quoteKey(id))
		pipe.ZRem(ctx, indexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete quote %s: %w", id, err)
	}
	if removed.Val() == 0 {
		return ErrNotFound
	}
	return nil
}
