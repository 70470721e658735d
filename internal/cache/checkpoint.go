// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// checkpointKeyPrefix is the Valkey key prefix for pipeline step results.
	checkpointKeyPrefix = "pipeline:"

	// DefaultCheckpointTTL is how long a finished step stays resumable.
	DefaultCheckpointTTL = 72 * time.Hour
)

// CheckpointKey returns the storage key for one step of one run.
func CheckpointKey(runID, step string) string {
	return fmt.Sprintf("%s%s:%s", checkpointKeyPrefix, runID, step)
}

// CheckpointStore persists pipeline step results in Valkey so a failed run
// can be resumed with the same run id.
type CheckpointStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCheckpointStore creates a checkpoint store backed by the given Valkey client.
func NewCheckpointStore(client *redis.Client, ttl time.Duration) *CheckpointStore {
	if ttl == 0 {
		ttl = DefaultCheckpointTTL
	}
	return &CheckpointStore{client: client, ttl: ttl}
}

// Load returns the recorded result of a step. ok is false when the step has
// not finished in this run.
func (cs *CheckpointStore) Load(ctx context.Context, runID, step string) ([]byte, bool, error) {
	val, err := cs.client.Get(ctx, CheckpointKey(runID, step)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load checkpoint %s/%s: %w", runID, step, err)
	}
	slog.Debug("checkpoint hit", "run_id", runID, "step", step)
	return val, true, nil
}

// Save records the result of a finished step.
func (cs *CheckpointStore) Save(ctx context.Context, runID, step string, data []byte) error {
	if err := cs.client.Set(ctx, CheckpointKey(runID, step), data, cs.ttl).Err(); err != nil {
		return fmt.Errorf("save checkpoint %s/%s: %w", runID, step, err)
	}
	return nil
}

// Clear removes every checkpoint of a run by scanning for its prefix.
func (cs *CheckpointStore) Clear(ctx context.Context, runID string) error {
	var cursor uint64
	pattern := checkpointKeyPrefix + runID + ":*"
	for {
		keys, next, err := cs.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("scan checkpoints %s: %w", runID, err)
		}
		if len(keys) > 0 {
			if err := cs.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete checkpoints %s: %w", runID, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// MemoryCheckpoints keeps step results in process memory. It is used when
// Valkey is not configured; such runs can only be resumed by the same
// process. Entries expire after the TTL like their Valkey counterparts.
type MemoryCheckpoints struct {
	mu   sync.Mutex
	data map[string]memEntry
	ttl  time.Duration
	now  func() time.Time
}

type memEntry struct {
	data    []byte
	expires time.Time
}

// NewMemoryCheckpoints creates an empty in-memory checkpoint store. A zero
// ttl means DefaultCheckpointTTL.
func NewMemoryCheckpoints(ttl time.Duration) *MemoryCheckpoints {
	if ttl == 0 {
		ttl = DefaultCheckpointTTL
	}
	return &MemoryCheckpoints{data: make(map[string]memEntry), ttl: ttl, now: time.Now}
}

func (m *MemoryCheckpoints) Load(_ context.Context, runID, step string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := CheckpointKey(runID, step)
	e, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.data, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.data...), true, nil
}

// Save records a step result and drops every expired entry.
func (m *MemoryCheckpoints) Save(_ context.Context, runID, step string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.data {
		if !now.Before(e.expires) {
			delete(m.data, k)
		}
	}
	m.data[CheckpointKey(runID, step)] = memEntry{
		data:    append([]byte(nil), data...),
		expires: now.Add(m.ttl),
	}
	return nil
}

func (m *MemoryCheckpoints) Clear(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := checkpointKeyPrefix + runID + ":"
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}
