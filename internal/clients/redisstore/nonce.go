package redisstore

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/praxislabs/praxis-backend/internal/errs"
	"github.com/praxislabs/praxis-backend/internal/logger"
)

// NonceStore holds OAuth nonce hashes with a TTL. A nonce is consumed on
// first read so a replayed ID token cannot reuse it.
type NonceStore interface {
	Put(ctx context.Context, nonceID string, nonceHash string, ttl time.Duration) error
	Consume(ctx context.Context, nonceID string) (string, error)
	Close() error
}

type nonceStore struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewNonceStore(log *logger.Logger) (NonceStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &nonceStore{
		log:    log.With("client", "RedisNonceStore"),
		rdb:    rdb,
		prefix: "oauth:nonce:",
	}, nil
}

func (s *nonceStore) Put(ctx context.Context, nonceID string, nonceHash string, ttl time.Duration) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("nonce store not initialized")
	}
	return s.rdb.Set(ctx, s.prefix+nonceID, nonceHash, ttl).Err()
}

func (s *nonceStore) Consume(ctx context.Context, nonceID string) (string, error) {
	if s == nil || s.rdb == nil {
		return "", fmt.Errorf("nonce store not initialized")
	}
	val, err := s.rdb.GetDel(ctx, s.prefix+nonceID).Result()
	if err == goredis.Nil {
		return "", fmt.Errorf("nonce %s: %w", nonceID, errs.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *nonceStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
