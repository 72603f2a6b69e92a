package pair

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newStoreTest(t *testing.T) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, "pl")
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func testPair() *Pair {
	now := time.Now()
	return &Pair{
		ID:            NewID(),
		UserID:        "u-1",
		Status:        StatusActive,
		RefreshHash:   [32]byte{1, 2, 3},
		UserAgent:     "ua-v1",
		NetworkOrigin: "203.0.113.1",
		CreatedAt:     now.Unix(),
	}
}

func TestCreateGetRoundTrip(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	p := testPair()
	if err := store.Create(ctx, p, time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != p.UserID || got.UserAgent != p.UserAgent || got.NetworkOrigin != p.NetworkOrigin {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Status != StatusActive {
		t.Fatalf("expected active status, got %d", got.Status)
	}
	if got.RefreshHash != p.RefreshHash {
		t.Fatal("refresh hash did not survive round trip")
	}
	if got.CreatedAt != p.CreatedAt {
		t.Fatalf("created_at mismatch: want %d got %d", p.CreatedAt, got.CreatedAt)
	}
}

func TestGetMissingPair(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()

	if _, err := store.Get(context.Background(), NewID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRevokeIsIdempotentAndRetainsRecord(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	p := testPair()
	if err := store.Create(ctx, p, time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now()
	if err := store.Revoke(ctx, p.ID, now); err != nil {
		t.Fatalf("first revoke: %v", err)
	}
	if err := store.Revoke(ctx, p.ID, now.Add(time.Minute)); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
	if err := store.Revoke(ctx, NewID(), now); err != nil {
		t.Fatalf("revoke of missing pair: %v", err)
	}

	got, err := store.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get after revoke: %v", err)
	}
	if got.Status != StatusRevoked {
		t.Fatalf("expected revoked status, got %d", got.Status)
	}
	// First revoke wins; the second must not restamp.
	if got.RevokedAt != now.Unix() {
		t.Fatalf("expected revoked_at %d, got %d", now.Unix(), got.RevokedAt)
	}
}

func TestRevokePreservesTTL(t *testing.T) {
	store, mr, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	p := testPair()
	if err := store.Create(ctx, p, time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Revoke(ctx, p.ID, time.Now()); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	ttl := mr.TTL(store.key(p.ID))
	if ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected preserved ttl, got %v", ttl)
	}
}

func TestRotateReplacesPair(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	old := testPair()
	if err := store.Create(ctx, old, time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}

	next := testPair()
	next.RefreshHash = [32]byte{9, 9, 9}
	now := time.Now()

	if err := store.Rotate(ctx, old.ID, old.RefreshHash, next, time.Hour, now); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	gotOld, err := store.Get(ctx, old.ID)
	if err != nil {
		t.Fatalf("get old: %v", err)
	}
	if gotOld.Status != StatusRevoked {
		t.Fatalf("expected old pair revoked, got status %d", gotOld.Status)
	}

	gotNext, err := store.Get(ctx, next.ID)
	if err != nil {
		t.Fatalf("get next: %v", err)
	}
	if gotNext.Status != StatusActive || gotNext.RefreshHash != next.RefreshHash {
		t.Fatalf("successor not stored correctly: %+v", gotNext)
	}
}

func TestRotateSentinelErrors(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	old := testPair()
	if err := store.Create(ctx, old, time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}

	next := testPair()
	now := time.Now()

	wrongHash := [32]byte{0xff}
	if err := store.Rotate(ctx, old.ID, wrongHash, next, time.Hour, now); !errors.Is(err, ErrSecretMismatch) {
		t.Fatalf("expected ErrSecretMismatch, got %v", err)
	}

	if err := store.Rotate(ctx, NewID(), old.RefreshHash, next, time.Hour, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Rotate(ctx, old.ID, old.RefreshHash, next, time.Hour, now); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	second := testPair()
	if err := store.Rotate(ctx, old.ID, old.RefreshHash, second, time.Hour, now); !errors.Is(err, ErrRevoked) {
		t.Fatalf("expected ErrRevoked on consumed pair, got %v", err)
	}
}

func TestRotateSingleWinnerUnderContention(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	old := testPair()
	if err := store.Create(ctx, old, time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			next := testPair()
			errs[i] = store.Rotate(ctx, old.ID, old.RefreshHash, next, time.Hour, time.Now())
		}(i)
	}
	wg.Wait()

	wins := 0
	for i, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrRevoked):
		default:
			t.Fatalf("worker %d: unexpected error %v", i, err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one rotation winner, got %d", wins)
	}
}
