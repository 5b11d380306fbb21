// internal/handoff/store.go
package handoff

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"market-entry-workers/internal/common/config"
	"market-entry-workers/internal/common/database"
	"market-entry-workers/internal/intent"
	"market-entry-workers/internal/planner"
)

const (
	DefaultKeyPrefix = "research-plan:"
	DefaultTTL       = 24 * time.Hour
)

var ErrPlanNotFound = errors.New("research plan not found or expired")

// Plan is the document the retrieval and drafting services read.
type Plan struct {
	RequestID string         `json:"requestId"`
	Intent    intent.Record  `json:"intent"`
	Tasks     []planner.Task `json:"tasks"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Store publishes plans under <prefix><requestId> with a TTL.
type Store struct {
	redis  *database.RedisClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

func NewStore(client *database.RedisClient, cfg config.HandoffConfig) *Store {
	s := &Store{
		redis:  client,
		prefix: cfg.KeyPrefix,
		ttl:    time.Duration(cfg.TTL) * time.Second,
		now:    time.Now,
	}
	if s.prefix == "" {
		s.prefix = DefaultKeyPrefix
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	return s
}

func (s *Store) Key(requestID string) string {
	return s.prefix + requestID
}

func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Publish writes the plan and returns its key. Publishing the same request
// again replaces the earlier plan and restarts the TTL.
func (s *Store) Publish(ctx context.Context, requestID string, rec intent.Record, tasks []planner.Task) (string, error) {
	if requestID == "" {
		return "", fmt.Errorf("request id is required")
	}

	key := s.Key(requestID)
	plan := Plan{
		RequestID: requestID,
		Intent:    rec,
		Tasks:     tasks,
		CreatedAt: s.now().UTC(),
	}
	if err := s.redis.SetJSON(ctx, key, plan, s.ttl); err != nil {
		return "", fmt.Errorf("failed to publish plan %s: %w", key, err)
	}
	return key, nil
}

func (s *Store) Load(ctx context.Context, requestID string) (*Plan, error) {
	key := s.Key(requestID)

	var plan Plan
	err := s.redis.GetJSON(ctx, key, &plan)
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", key, err)
	}
	return &plan, nil
}

// Remaining reports how long the plan stays readable.
func (s *Store) Remaining(ctx context.Context, requestID string) (time.Duration, error) {
	ttl, err := s.redis.TTL(ctx, s.Key(requestID))
	if errors.Is(err, database.ErrKeyNotFound) {
		return 0, ErrPlanNotFound
	}
	return ttl, err
}

// List returns the request ids of every unexpired plan, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	keys, err := s.redis.ScanPrefix(ctx, s.prefix)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, s.prefix))
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes a plan once it has been consumed.
func (s *Store) Delete(ctx context.Context, requestID string) error {
	return s.redis.Del(ctx, s.Key(requestID))
}
