package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aescanero/dago-levelset/internal/grid"
	"github.com/aescanero/dago-levelset/internal/planner"
)

// ErrPlanNotFound is returned by Load for a missing or expired plan.
var ErrPlanNotFound = errors.New("store: plan not found")

const keyPrefix = "levelset:plan:"

// PlanKey identifies a plan by everything that shapes it
type PlanKey struct {
	Expression string
	Amplitude  float64
	Options    planner.Options
	Region     string
	Sampling   grid.Sampling
}

// Key returns the SHA-256 hex digest of k
func Key(k PlanKey) string {
	fields := []string{
		k.Expression,
		strconv.FormatFloat(k.Amplitude, 'g', -1, 64),
		strconv.Itoa(k.Options.FrameCount),
		strconv.Itoa(k.Options.Digits),
		string(k.Options.Policy),
		k.Region,
		k.Sampling.Key(),
	}
	sum := sha256.Sum256([]byte(strings.Join(fields, "\x00")))
	return hex.EncodeToString(sum[:])
}

// RedisPlanStore stores planner.Sequence values as JSON strings
type RedisPlanStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisPlanStore creates a new Redis plan store. A zero ttl keeps plans
// forever.
func NewRedisPlanStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisPlanStore {
	return &RedisPlanStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func redisKey(key string) string {
	return keyPrefix + key
}

// Save saves a plan
func (s *RedisPlanStore) Save(ctx context.Context, key string, seq *planner.Sequence) error {
	if seq == nil {
		return fmt.Errorf("plan is nil")
	}

	data, err := json.Marshal(seq)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	if err := s.client.Set(ctx, redisKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	s.logger.Debug("plan saved", zap.String("key", key), zap.Int("frames", seq.Len()))
	return nil
}

// Load loads a plan
func (s *RedisPlanStore) Load(ctx context.Context, key string) (*planner.Sequence, error) {
	data, err := s.client.Get(ctx, redisKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, key)
		}
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	var seq planner.Sequence
	if err := json.Unmarshal([]byte(data), &seq); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}

	return &seq, nil
}

// Delete deletes a plan
func (s *RedisPlanStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	return nil
}

// Exists checks if a plan is stored
func (s *RedisPlanStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, redisKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return n > 0, nil
}

// List returns the keys of all stored plans
func (s *RedisPlanStore) List(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return keys, nil
}
