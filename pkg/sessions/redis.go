package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "trainflow:session:"
	redisMaxAttempts = 10
)

// RedisStore keeps sessions in Redis with a sliding TTL so several API
// replicas can serve the same editing session.
type RedisStore struct {
	client redis.UniversalClient
	logger *slog.Logger
	ttl    time.Duration
}

// NewRedisStore connects to the Redis server at a redis:// URL.
func NewRedisStore(ctx context.Context, logger *slog.Logger, redisURL string, ttl time.Duration) (*RedisStore, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid session store URL: %w", err)
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(ctx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis session store", "addr", options.Addr, "db", options.DB)

	return NewRedisStoreWithClient(logger, client, ttl), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(logger *slog.Logger, client redis.UniversalClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisStore{
		client: client,
		logger: logger.With("module", "redis_session_store"),
		ttl:    ttl,
	}
}

func (s *RedisStore) Create(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}

	created, err := s.client.SetNX(ctx, redisKey(session.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store session %s: %w", session.ID, err)
	}

	if !created {
		return fmt.Errorf("%w: %s", ErrSessionExists, session.ID)
	}

	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}

		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	return decodeSession(data)
}

// Update runs fn inside a WATCH transaction and retries when another writer
// touched the session in between.
func (s *RedisStore) Update(ctx context.Context, id string, fn UpdateFunc) (*Session, error) {
	key := redisKey(id)

	for attempt := 1; attempt <= redisMaxAttempts; attempt++ {
		var updated *Session

		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
				}

				return fmt.Errorf("failed to load session %s: %w", id, err)
			}

			session, err := decodeSession(data)
			if err != nil {
				return err
			}

			err = fn(session)
			if err != nil {
				return err
			}

			encoded, err := json.Marshal(session)
			if err != nil {
				return fmt.Errorf("failed to encode session %s: %w", id, err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, encoded, s.ttl)

				return nil
			})
			if err != nil {
				return err
			}

			updated = session

			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			s.logger.DebugContext(ctx, "Session changed during update, retrying", "session_id", id, "attempt", attempt)

			continue
		}

		if err != nil {
			return nil, err
		}

		return updated, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrConcurrentEdit, id)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	removed, err := s.client.Del(ctx, redisKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}

	if removed == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}
