// Package redis is the ShareStore backed by Redis. Unlike the in-memory
// store, expiry is real: each record is written with a TTL equal to the time
// left until its ExpiresAt, and survives process restarts.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sakif/portfolio-forge/internal/apperror"
	"github.com/sakif/portfolio-forge/internal/model"
	"github.com/sakif/portfolio-forge/internal/repository"
)

const keyPrefix = "share:"

var _ repository.ShareStore = (*ShareStore)(nil)

type ShareStore struct {
	client *goredis.Client
}

// New connects using a redis:// URL and pings the server so a bad address
// fails at startup, not on the first share.
func New(ctx context.Context, redisURL string) (*ShareStore, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parsing url: %w", err)
	}
	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: pinging %s: %w", opts.Addr, err)
	}
	return &ShareStore{client: client}, nil
}

func (s *ShareStore) Put(ctx context.Context, rec *model.ShareRecord) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: encoding share %s: %w", rec.ID, err)
	}

	ttl := time.Until(rec.ExpiresAt)
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := s.client.Set(ctx, keyPrefix+rec.ID, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis: storing share %s: %w", rec.ID, err)
	}
	return nil
}

func (s *ShareStore) Get(ctx context.Context, id string) (*model.ShareRecord, error) {
	val, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, apperror.NotFound("share", id)
	}
	if err != nil {
		return nil, fmt.Errorf("redis: loading share %s: %w", id, err)
	}

	var rec model.ShareRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("redis: decoding share %s: %w", id, err)
	}
	return &rec, nil
}

func (s *ShareStore) Close() error {
	return s.client.Close()
}
