// Package eventlog records job events for replay and testing (spec.md
// section 4.6), as an in-memory ring buffer with an optional Redis mirror
// for durability across process restarts. Grounded on the teacher's
// infrastructure/cache.Cache for the mutex-guarded, TTL-aware in-memory
// store shape, and on the teacher's architecture doc's "Cache: Redis"
// mention (infrastructure/cache is in-memory only in this pack; the Redis
// mirror here is this package's own use of the teacher's declared
// go-redis/redis/v8 dependency).
package eventlog

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Record is a single logged job event.
type Record struct {
	Sequence  uint64                 `json:"sequence"`
	EventName string                 `json:"event_name"`
	Payload   map[string]interface{} `json:"payload"`
	LoggedAt  time.Time              `json:"logged_at"`
}

// Config configures the in-memory ring buffer's capacity.
type Config struct {
	Capacity int
}

// DefaultConfig returns a 1000-entry ring buffer, mirroring the teacher's
// cache.DefaultConfig sizing convention.
func DefaultConfig() Config {
	return Config{Capacity: 1000}
}

// Log is an in-memory ring buffer of job event Records with an optional
// Redis mirror for cross-process replay.
type Log struct {
	mu       sync.RWMutex
	records  []Record
	next     int
	count    int
	capacity int
	nextSeq  uint64

	redis    *redis.Client
	redisKey string
}

// New creates a Log with the given capacity. A non-positive capacity falls
// back to DefaultConfig's.
func New(cfg Config) *Log {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultConfig().Capacity
	}
	return &Log{records: make([]Record, capacity), capacity: capacity}
}

// WithRedisMirror attaches a Redis list mirror: every appended record is
// also LPUSHed as JSON onto key, trimmed to capacity entries. Errors
// talking to Redis are swallowed (the in-memory ring is authoritative;
// Redis is a best-effort replay aid), consistent with a cache being a
// performance optimization rather than a correctness dependency.
func (l *Log) WithRedisMirror(client *redis.Client, key string) *Log {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.redis = client
	l.redisKey = key
	return l
}

// Append records payload under eventName, returning the stored Record with
// its assigned sequence number.
func (l *Log) Append(eventName string, payload map[string]interface{}) Record {
	l.mu.Lock()
	l.nextSeq++
	rec := Record{Sequence: l.nextSeq, EventName: eventName, Payload: payload, LoggedAt: time.Now().UTC()}
	l.records[l.next] = rec
	l.next = (l.next + 1) % l.capacity
	if l.count < l.capacity {
		l.count++
	}
	client, key := l.redis, l.redisKey
	l.mu.Unlock()

	if client != nil && key != "" {
		if data, err := json.Marshal(rec); err == nil {
			ctx := context.Background()
			client.LPush(ctx, key, data)
			client.LTrim(ctx, key, 0, int64(l.capacity-1))
		}
	}
	return rec
}

// Records returns every currently retained record, oldest first.
func (l *Log) Records() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Record, 0, l.count)
	if l.count < l.capacity {
		out = append(out, l.records[:l.count]...)
		return out
	}
	out = append(out, l.records[l.next:]...)
	out = append(out, l.records[:l.next]...)
	return out
}

// Len returns the number of records currently retained in memory.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}
