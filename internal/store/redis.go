package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gomodule/redigo/redis"

	"github.com/faizmokh/jurnal/internal/logging"
)

// RedisStore keeps every resource in a hash holding the CSV content and a
// version counter. Writes use WATCH/MULTI/EXEC so a concurrent writer makes
// the transaction abort instead of being overwritten. Round trips honor the
// caller's context deadline.
type RedisStore struct {
	pool   *redis.Pool
	prefix string
	logger *log.Logger
}

// NewRedisStore builds a pooled store for the server at url.
func NewRedisStore(url, prefix string, logger *log.Logger) *RedisStore {
	pool := &redis.Pool{
		MaxIdle:     3,
		IdleTimeout: 300 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.DialURL(url)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
	return &RedisStore{pool: pool, prefix: prefix, logger: logging.OrDiscard(logger)}
}

func (s *RedisStore) key(resource string) string {
	return s.prefix + resource
}

func (s *RedisStore) Read(ctx context.Context, resource string) (Content, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return Content{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer conn.Close()

	values, err := redis.Values(redis.DoContext(conn, ctx, "HMGET", s.key(resource), "content", "version"))
	if err != nil {
		return Content{}, fmt.Errorf("%w: read sheet %s: %w", ErrUnavailable, resource, err)
	}
	if len(values) != 2 || values[0] == nil {
		return Content{}, ErrNotFound
	}

	data, err := redis.Bytes(values[0], nil)
	if err != nil {
		return Content{}, decodeFailure("sheet "+resource, err)
	}
	version, err := redis.Int64(values[1], nil)
	if err != nil {
		return Content{}, decodeFailure("sheet "+resource+" version", err)
	}

	records, err := DecodeCSV(data)
	if err != nil {
		return Content{}, decodeFailure("sheet "+resource, err)
	}

	s.logger.Debug("read sheet", "key", s.key(resource), "version", version, "rows", len(records))
	return Content{Records: records, Token: strconv.FormatInt(version, 10)}, nil
}

func (s *RedisStore) Write(ctx context.Context, resource string, records [][]string, token string) (string, error) {
	data, err := EncodeCSV(records)
	if err != nil {
		return "", err
	}

	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer conn.Close()

	key := s.key(resource)
	if _, err := redis.DoContext(conn, ctx, "WATCH", key); err != nil {
		return "", fmt.Errorf("%w: watch %s: %w", ErrUnavailable, key, err)
	}

	current := ""
	version, err := redis.Int64(redis.DoContext(conn, ctx, "HGET", key, "version"))
	switch {
	case errors.Is(err, redis.ErrNil):
	case err != nil:
		redis.DoContext(conn, ctx, "UNWATCH")
		return "", fmt.Errorf("%w: read version %s: %w", ErrUnavailable, key, err)
	default:
		current = strconv.FormatInt(version, 10)
	}

	if current != token {
		redis.DoContext(conn, ctx, "UNWATCH")
		return "", fmt.Errorf("write sheet %s: %w", resource, ErrConflict)
	}

	next := version + 1
	if err := conn.Send("MULTI"); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err := conn.Send("HSET", key, "content", data, "version", next); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if _, err := redis.Values(redis.DoContext(conn, ctx, "EXEC")); err != nil {
		if errors.Is(err, redis.ErrNil) {
			return "", fmt.Errorf("write sheet %s: %w", resource, ErrConflict)
		}
		return "", fmt.Errorf("%w: write sheet %s: %w", ErrUnavailable, resource, err)
	}

	s.logger.Debug("wrote sheet", "key", key, "version", next, "rows", len(records))
	return strconv.FormatInt(next, 10), nil
}

// Close releases pooled connections.
func (s *RedisStore) Close() error {
	return s.pool.Close()
}
