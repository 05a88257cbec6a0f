package diagnostics

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/flightquery/internal/models"
)

// Counter names kept by every Store.
const (
	CounterDecodes      = "decodes"
	CounterBest         = "itineraries_best"
	CounterOther        = "itineraries_other"
	CounterDropped      = "entries_dropped"
	CounterTokensIssued = "tokens_encoded"
	CounterTokensRead   = "tokens_decoded"
	CounterTokenErrors  = "token_errors"
)

const recentDropsLimit = 50

// Report summarizes one result decode.
type Report struct {
	Session models.SessionToken `json:"session,omitempty"`
	Best    int                 `json:"best"`
	Other   int                 `json:"other"`
	Dropped int                 `json:"dropped"`
	Drops   []models.Drop       `json:"drops,omitempty"`
	At      time.Time           `json:"at"`
}

func ReportFor(res *models.DecodedResult, session models.SessionToken) Report {
	return Report{
		Session: session,
		Best:    len(res.Best),
		Other:   len(res.Other),
		Dropped: res.Dropped,
		Drops:   res.Drops,
		At:      time.Now().UTC(),
	}
}

type Snapshot struct {
	Counters    map[string]int64 `json:"counters"`
	RecentDrops []Report         `json:"recent_drops"`
}

// Store keeps decode and token counters for the diagnostics endpoint. It is
// not a result cache: no itinerary is ever stored.
type Store interface {
	RecordDecode(ctx context.Context, r Report) error
	Incr(ctx context.Context, counter string) error
	Snapshot(ctx context.Context) (Snapshot, error)
	Close() error
}

type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "flightquery",
		TTL:       24 * time.Hour,
	}
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return newRedisStore(client, cfg), nil
}

func newRedisStore(client *redis.Client, cfg RedisConfig) *RedisStore {
	prefix := strings.TrimSuffix(cfg.KeyPrefix, ":")
	if prefix == "" {
		prefix = "flightquery"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: cfg.TTL}
}

func (s *RedisStore) countersKey() string {
	return s.prefix + ":diagnostics:counters"
}

func (s *RedisStore) dropsKey() string {
	return s.prefix + ":diagnostics:drops"
}

func (s *RedisStore) RecordDecode(ctx context.Context, r Report) error {
	pipe := s.client.TxPipeline()
	key := s.countersKey()
	pipe.HIncrBy(ctx, key, CounterDecodes, 1)
	pipe.HIncrBy(ctx, key, CounterBest, int64(r.Best))
	pipe.HIncrBy(ctx, key, CounterOther, int64(r.Other))
	pipe.HIncrBy(ctx, key, CounterDropped, int64(r.Dropped))
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	if r.Dropped > 0 {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		pipe.LPush(ctx, s.dropsKey(), data)
		pipe.LTrim(ctx, s.dropsKey(), 0, recentDropsLimit-1)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.dropsKey(), s.ttl)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Incr(ctx context.Context, counter string) error {
	return s.client.HIncrBy(ctx, s.countersKey(), counter, 1).Err()
}

func (s *RedisStore) Snapshot(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Counters: map[string]int64{}, RecentDrops: []Report{}}

	raw, err := s.client.HGetAll(ctx, s.countersKey()).Result()
	if err != nil {
		return snap, err
	}
	for k, v := range raw {
		n, err := redis.NewStringResult(v, nil).Int64()
		if err != nil {
			continue
		}
		snap.Counters[k] = n
	}

	items, err := s.client.LRange(ctx, s.dropsKey(), 0, recentDropsLimit-1).Result()
	if err != nil {
		return snap, err
	}
	for _, item := range items {
		var r Report
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			continue
		}
		snap.RecentDrops = append(snap.RecentDrops, r)
	}
	return snap, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// MemoryStore keeps counters in process. Used when no Redis is configured.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]int64
	drops    []Report
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: map[string]int64{}}
}

func (s *MemoryStore) RecordDecode(ctx context.Context, r Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[CounterDecodes]++
	s.counters[CounterBest] += int64(r.Best)
	s.counters[CounterOther] += int64(r.Other)
	s.counters[CounterDropped] += int64(r.Dropped)
	if r.Dropped > 0 {
		s.drops = append([]Report{r}, s.drops...)
		if len(s.drops) > recentDropsLimit {
			s.drops = s.drops[:recentDropsLimit]
		}
	}
	return nil
}

func (s *MemoryStore) Incr(ctx context.Context, counter string) error {
	s.mu.Lock()
	s.counters[counter]++
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Snapshot(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Counters: make(map[string]int64, len(s.counters)), RecentDrops: make([]Report, len(s.drops))}
	for k, v := range s.counters {
		snap.Counters[k] = v
	}
	copy(snap.RecentDrops, s.drops)
	return snap, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

type NoOpStore struct{}

func NewNoOpStore() *NoOpStore {
	return &NoOpStore{}
}

func (s *NoOpStore) RecordDecode(ctx context.Context, r Report) error {
	return nil
}

func (s *NoOpStore) Incr(ctx context.Context, counter string) error {
	return nil
}

func (s *NoOpStore) Snapshot(ctx context.Context) (Snapshot, error) {
	return Snapshot{Counters: map[string]int64{}, RecentDrops: []Report{}}, nil
}

func (s *NoOpStore) Close() error {
	return nil
}
