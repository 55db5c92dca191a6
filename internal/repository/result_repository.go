package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
)

// ErrResultNotFound marks a result id with no stored run, either expired
// or never generated.
var ErrResultNotFound = errors.New("result not found")

// ResultRepository stores generation results under their result id for
// TTL-bound retrieval.
type ResultRepository interface {
	Save(ctx context.Context, result *dto.GenerateTimetableResponse) error
	Get(ctx context.Context, id string) (*dto.GenerateTimetableResponse, error)
}

const resultKeyPrefix = "timetable:result:"

// RedisResultRepository keeps results in Redis.
type RedisResultRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisResultRepository constructs the Redis-backed store.
func NewRedisResultRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisResultRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisResultRepository{client: client, ttl: ttl, logger: logger}
}

// Save stores the result under its id.
func (r *RedisResultRepository) Save(ctx context.Context, result *dto.GenerateTimetableResponse) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result %s: %w", result.ResultID, err)
	}
	if err := r.client.Set(ctx, resultKeyPrefix+result.ResultID, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set result %s: %w", result.ResultID, err)
	}
	return nil
}

// Get loads a stored result by id.
func (r *RedisResultRepository) Get(ctx context.Context, id string) (*dto.GenerateTimetableResponse, error) {
	raw, err := r.client.Get(ctx, resultKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("redis get result %s: %w", id, err)
	}
	var result dto.GenerateTimetableResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unmarshal result %s: %w", id, err)
	}
	return &result, nil
}

type memoryResult struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryResultRepository is the in-process fallback used when Redis is
// disabled. Entries are serialized like the Redis path so both stores
// return detached copies.
type MemoryResultRepository struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryResult
	now     func() time.Time
}

// NewMemoryResultRepository constructs the in-process store.
func NewMemoryResultRepository(ttl time.Duration) *MemoryResultRepository {
	return &MemoryResultRepository{
		ttl:     ttl,
		entries: make(map[string]memoryResult),
		now:     time.Now,
	}
}

// Save stores the result and prunes expired entries while it holds the lock.
func (r *MemoryResultRepository) Save(_ context.Context, result *dto.GenerateTimetableResponse) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result %s: %w", result.ResultID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, entry := range r.entries {
		if now.After(entry.expiresAt) {
			delete(r.entries, id)
		}
	}
	r.entries[result.ResultID] = memoryResult{payload: payload, expiresAt: now.Add(r.ttl)}
	return nil
}

// Get loads a stored result by id, evicting it when expired.
func (r *MemoryResultRepository) Get(_ context.Context, id string) (*dto.GenerateTimetableResponse, error) {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok && r.now().After(entry.expiresAt) {
		delete(r.entries, id)
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return nil, ErrResultNotFound
	}
	var result dto.GenerateTimetableResponse
	if err := json.Unmarshal(entry.payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal result %s: %w", id, err)
	}
	return &result, nil
}
