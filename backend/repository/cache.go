package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"neetprep/backend/models"

	"github.com/redis/go-redis/v9"
)

// CachedProgressStore is a read-through redis cache in front of another
// ProgressStore. Redis failures are logged and fall through to the wrapped
// store; they never fail a request.
type CachedProgressStore struct {
	next   ProgressStore
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

func NewCachedProgressStore(next ProgressStore, client *redis.Client, ttl time.Duration, logger *log.Logger) *CachedProgressStore {
	if logger == nil {
		logger = log.Default()
	}
	return &CachedProgressStore{next: next, client: client, ttl: ttl, logger: logger}
}

// NewRedisClient parses a redis:// URI and verifies the server answers.
func NewRedisClient(ctx context.Context, uri string) (*redis.Client, error) {
	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("parse redis uri: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func progressKey(userID string) string {
	return "progress:" + userID
}

func (s *CachedProgressStore) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	raw, err := s.client.Get(ctx, progressKey(userID)).Bytes()
	switch {
	case err == nil:
		var p models.UserProgress
		if err := json.Unmarshal(raw, &p); err == nil {
			return &p, nil
		}
		s.logger.Printf("progress cache: corrupt entry for user %s, dropping", userID)
		s.evict(ctx, userID)
	case !errors.Is(err, redis.Nil):
		s.logger.Printf("progress cache: get user %s: %v", userID, err)
	}

	p, err := s.next.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, p)
	return p, nil
}

func (s *CachedProgressStore) Upsert(ctx context.Context, progress *models.UserProgress) error {
	if err := s.next.Upsert(ctx, progress); err != nil {
		return err
	}
	s.store(ctx, progress)
	return nil
}

func (s *CachedProgressStore) Delete(ctx context.Context, userID string) error {
	if err := s.next.Delete(ctx, userID); err != nil {
		return err
	}
	s.evict(ctx, userID)
	return nil
}

func (s *CachedProgressStore) store(ctx context.Context, p *models.UserProgress) {
	val, err := json.Marshal(p)
	if err != nil {
		s.logger.Printf("progress cache: encode user %s: %v", p.UserID, err)
		return
	}
	if err := s.client.Set(ctx, progressKey(p.UserID), val, s.ttl).Err(); err != nil {
		s.logger.Printf("progress cache: set user %s: %v", p.UserID, err)
	}
}

func (s *CachedProgressStore) evict(ctx context.Context, userID string) {
	if err := s.client.Del(ctx, progressKey(userID)).Err(); err != nil {
		s.logger.Printf("progress cache: delete user %s: %v", userID, err)
	}
}
