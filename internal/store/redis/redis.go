// Package redis backs the record store with a hosted Redis, the production
// target. Every contract operation maps onto a single Redis command.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"fanclub-hub/internal/store"
)

type Store struct {
	client *goredis.Client
}

// Open connects using a redis URL (redis://... or rediss://...) and pings the
// server before returning.
func Open(ctx context.Context, url string) (*Store, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Get(ctx context.Context, key string, dst any) error {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(val), dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) Set(ctx context.Context, key string, src any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) ListPrepend(ctx context.Context, list string, entry any) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode %s entry: %w", list, err)
	}
	if err := s.client.LPush(ctx, list, data).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", list, err)
	}
	return nil
}

func (s *Store) ListRange(ctx context.Context, list string, start, stop int64, dst any) error {
	vals, err := s.client.LRange(ctx, list, start, stop).Result()
	if err != nil {
		return fmt.Errorf("lrange %s: %w", list, err)
	}
	// Entries are stored as JSON documents; joining them yields a JSON array.
	doc := "[" + strings.Join(vals, ",") + "]"
	if err := json.Unmarshal([]byte(doc), dst); err != nil {
		return fmt.Errorf("decode %s entries: %w", list, err)
	}
	return nil
}

func (s *Store) ListLen(ctx context.Context, list string) (int64, error) {
	n, err := s.client.LLen(ctx, list).Result()
	if err != nil {
		return 0, fmt.Errorf("llen %s: %w", list, err)
	}
	return n, nil
}

func (s *Store) ListTrim(ctx context.Context, list string, maxLen int64) error {
	if maxLen < 1 {
		maxLen = 1
	}
	if err := s.client.LTrim(ctx, list, 0, maxLen-1).Err(); err != nil {
		return fmt.Errorf("ltrim %s: %w", list, err)
	}
	return nil
}

func (s *Store) KeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s*: %w", prefix, err)
	}
	return keys, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
