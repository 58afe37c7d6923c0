// Package codecache stores short-lived one-time codes in Redis.
package codecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const keyPrefix = "authcode:"

// ErrNotFound is returned for unknown, expired or already used codes
var ErrNotFound = errors.New("code not found")

// Store maps one-time codes to values with a TTL
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and returns a Store
func New(addr, password string, db int, ttl time.Duration) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewWithClient(client, ttl), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Store{client: client, ttl: ttl}
}

// Issue stores value under a fresh random code and returns the code
func (s *Store) Issue(ctx context.Context, value string) (string, error) {
	code := uuid.NewString()
	if err := s.client.Set(ctx, keyPrefix+code, value, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store code: %w", err)
	}
	return code, nil
}

// Redeem returns the value of a code and deletes it, so a code works once
func (s *Store) Redeem(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", ErrNotFound
	}
	val, err := s.client.GetDel(ctx, keyPrefix+code).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to redeem code: %w", err)
	}
	return val, nil
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}
