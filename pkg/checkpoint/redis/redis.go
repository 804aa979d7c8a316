// Package redis provides a Redis-backed checkpoint store, durable across
// process restarts when Redis persistence is enabled.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/medgate/medgate/pkg/checkpoint"
	"github.com/medgate/medgate/pkg/models"
	redis "github.com/redis/go-redis/v9"
)

const keyPrefix = "medgate:checkpoint:"

type Store struct {
	client redis.UniversalClient
}

// NewStore connects to Redis using a redis:// URL.
func NewStore(ctx context.Context, redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Store{client: client}, nil
}

// NewStoreWithClient wraps an existing client, useful for tests.
func NewStoreWithClient(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

func (s *Store) Put(ctx context.Context, cp *models.Checkpoint) error {
	payload, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint for run %s: %w", cp.RunID, err)
	}

	// Checkpoints have no TTL: the human decision wait is unbounded.
	err = s.client.Set(ctx, keyPrefix+cp.RunID, payload, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to write checkpoint for run %s: %w", cp.RunID, err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, runID string) (*models.Checkpoint, error) {
	payload, err := s.client.Get(ctx, keyPrefix+runID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, checkpoint.ErrCheckpointNotFound
		}

		return nil, fmt.Errorf("failed to read checkpoint for run %s: %w", runID, err)
	}

	var cp models.Checkpoint

	err = json.Unmarshal(payload, &cp)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint for run %s: %w", runID, err)
	}

	return &cp, nil
}

func (s *Store) Delete(ctx context.Context, runID string) error {
	err := s.client.Del(ctx, keyPrefix+runID).Err()
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint for run %s: %w", runID, err)
	}

	return nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	err := s.client.Ping(ctx).Err()
	if err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	return s.client.Close()
}
