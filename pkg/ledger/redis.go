package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/counsel/pkg/lifecycle"
)

// Redis is a Ledger that stores one hash per identity. Entries expire after ttl
// when ttl is positive, which bounds growth without an explicit sweep.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedis creates a Redis ledger from a redis:// URL.
func NewRedis(url, prefix string, ttl time.Duration, logger *slog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return &Redis{
		client: redis.NewClient(opts),
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With("system", "ledger", "backend", "redis"),
	}, nil
}

func (r *Redis) Backend() string { return "redis" }

func (r *Redis) Start(lc *lifecycle.Coordinator) error {
	r.logger.Info("starting redis ledger")

	lc.OnStartup(func() {
		if err := r.client.Ping(lc.Context()).Err(); err != nil {
			r.logger.Error("redis ping failed", "error", err)
			return
		}
		r.logger.Info("redis ledger connected", "ttl", r.ttl)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := r.client.Close(); err != nil {
			r.logger.Error("redis close failed", "error", err)
			return
		}
		r.logger.Info("redis ledger closed")
	})

	return nil
}

// Key returns the redis key holding the entry for identity.
func (r *Redis) Key(identity string) string {
	return r.prefix + identity
}

func (r *Redis) Lookup(ctx context.Context, key string) (Entry, bool, error) {
	if key == "" {
		return Entry{}, false, ErrEmptyKey
	}

	fields, err := r.client.HGetAll(ctx, r.Key(key)).Result()
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup %s: %w", key, err)
	}
	if len(fields) == 0 {
		return Entry{}, false, nil
	}

	return entryFromHash(key, fields), true, nil
}

func (r *Redis) Record(ctx context.Context, key string, completed bool) (Entry, error) {
	if key == "" {
		return Entry{}, ErrEmptyKey
	}

	k := r.Key(key)
	now := time.Now().UTC()

	var (
		attempts *redis.IntCmd
		done     *redis.StringCmd
	)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		attempts = pipe.HIncrBy(ctx, k, "attempts", 1)
		if completed {
			pipe.HSet(ctx, k, "completed", "1")
		}
		pipe.HSet(ctx, k, "updated_at", now.Format(time.RFC3339Nano))
		done = pipe.HGet(ctx, k, "completed")
		if r.ttl > 0 {
			pipe.Expire(ctx, k, r.ttl)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return Entry{}, fmt.Errorf("record %s: %w", key, err)
	}

	return Entry{
		Key:       key,
		Attempts:  int(attempts.Val()),
		Completed: done.Val() == "1",
		UpdatedAt: now,
	}, nil
}

func entryFromHash(key string, fields map[string]string) Entry {
	e := Entry{Key: key, Completed: fields["completed"] == "1"}
	if n, err := strconv.Atoi(fields["attempts"]); err == nil {
		e.Attempts = n
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["updated_at"]); err == nil {
		e.UpdatedAt = t
	}
	return e
}
