package diagnostics

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dharmasatrya/flightquery/internal/models"
)

func TestMemoryStoreCounts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	res := &models.DecodedResult{
		Best:    make([]models.Itinerary, 3),
		Other:   make([]models.Itinerary, 6),
		Dropped: 1,
		Drops:   []models.Drop{{Bucket: models.BucketOther, Index: 4, Reason: "no flights"}},
	}
	if err := s.RecordDecode(ctx, ReportFor(res, "tfu")); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.RecordDecode(ctx, ReportFor(&models.DecodedResult{Best: make([]models.Itinerary, 2)}, "")); err != nil {
		t.Fatalf("record: %v", err)
	}
	_ = s.Incr(ctx, CounterTokensIssued)

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	want := map[string]int64{
		CounterDecodes:      2,
		CounterBest:         5,
		CounterOther:        6,
		CounterDropped:      1,
		CounterTokensIssued: 1,
	}
	for k, v := range want {
		if snap.Counters[k] != v {
			t.Fatalf("%s = %d, want %d", k, snap.Counters[k], v)
		}
	}
	if len(snap.RecentDrops) != 1 || snap.RecentDrops[0].Drops[0].Index != 4 {
		t.Fatalf("recent drops: %+v", snap.RecentDrops)
	}
}

func TestMemoryStoreKeepsRecentDropsBounded(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i := 0; i < recentDropsLimit+10; i++ {
		_ = s.RecordDecode(ctx, Report{Dropped: 1, Best: i})
	}
	snap, _ := s.Snapshot(ctx)
	if len(snap.RecentDrops) != recentDropsLimit {
		t.Fatalf("kept %d reports", len(snap.RecentDrops))
	}
	if snap.RecentDrops[0].Best != recentDropsLimit+9 {
		t.Fatalf("newest report should come first, got %+v", snap.RecentDrops[0])
	}
}

func TestNoOpStore(t *testing.T) {
	var s Store = NewNoOpStore()
	ctx := context.Background()
	if err := s.RecordDecode(ctx, Report{Dropped: 2}); err != nil {
		t.Fatalf("record: %v", err)
	}
	snap, err := s.Snapshot(ctx)
	if err != nil || len(snap.Counters) != 0 || snap.RecentDrops == nil {
		t.Fatalf("snapshot: %+v, %v", snap, err)
	}
}

func TestNewRedisStoreFailsWithoutServer(t *testing.T) {
	cfg := DefaultRedisConfig()
	cfg.Addr = "127.0.0.1:1"
	if _, err := NewRedisStore(cfg); err == nil {
		t.Fatal("expected ping to fail")
	}
}

func TestRedisKeys(t *testing.T) {
	s := newRedisStore(nil, RedisConfig{KeyPrefix: "fq:"})
	if s.countersKey() != "fq:diagnostics:counters" || s.dropsKey() != "fq:diagnostics:drops" {
		t.Fatalf("keys: %s %s", s.countersKey(), s.dropsKey())
	}
	if newRedisStore(nil, RedisConfig{}).prefix != "flightquery" {
		t.Fatal("empty prefix should fall back")
	}
}

// liveRedisStore connects to FLIGHTQUERY_TEST_REDIS_ADDR, or localhost, under a
// fresh key prefix. The test is skipped when no server answers.
func liveRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	cfg := DefaultRedisConfig()
	if addr := os.Getenv("FLIGHTQUERY_TEST_REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	cfg.KeyPrefix = "flightquery-test-" + uuid.NewString()
	cfg.TTL = time.Minute

	s, err := NewRedisStore(cfg)
	if err != nil {
		t.Skipf("redis not available at %s: %v", cfg.Addr, err)
	}
	t.Cleanup(func() {
		s.client.Del(context.Background(), s.countersKey(), s.dropsKey())
		s.Close()
	})
	return s
}

func TestRedisStoreRecordAndSnapshot(t *testing.T) {
	ctx := context.Background()
	s := liveRedisStore(t)

	res := &models.DecodedResult{
		Best:    make([]models.Itinerary, 3),
		Other:   make([]models.Itinerary, 6),
		Dropped: 2,
		Drops: []models.Drop{
			{Bucket: models.BucketBest, Index: 0, Reason: "no flights"},
			{Bucket: models.BucketOther, Index: 4, Reason: "bad date"},
		},
	}
	if err := s.RecordDecode(ctx, ReportFor(res, "tfu-redis")); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.RecordDecode(ctx, ReportFor(&models.DecodedResult{Best: make([]models.Itinerary, 1)}, "")); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Incr(ctx, CounterTokensIssued); err != nil {
		t.Fatalf("incr: %v", err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	want := map[string]int64{
		CounterDecodes:      2,
		CounterBest:         4,
		CounterOther:        6,
		CounterDropped:      2,
		CounterTokensIssued: 1,
	}
	for k, v := range want {
		if snap.Counters[k] != v {
			t.Fatalf("counter %s = %d, want %d (all: %v)", k, snap.Counters[k], v, snap.Counters)
		}
	}

	if len(snap.RecentDrops) != 1 {
		t.Fatalf("recent drops = %d, want 1", len(snap.RecentDrops))
	}
	got := snap.RecentDrops[0]
	if got.Session != "tfu-redis" || got.Dropped != 2 || len(got.Drops) != 2 || got.Drops[1].Reason != "bad date" {
		t.Fatalf("recent drop: %+v", got)
	}

	ttl, err := s.client.TTL(ctx, s.countersKey()).Result()
	if err != nil || ttl <= 0 {
		t.Fatalf("counters ttl = %v, %v", ttl, err)
	}
}
