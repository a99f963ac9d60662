package repo

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLockKey(t *testing.T) {
	if LockKey(SeedLockName) != LockKey(SeedLockName) {
		t.Error("LockKey should be deterministic")
	}
	if LockKey("a") == LockKey("b") {
		t.Error("different names should give different keys")
	}
	// FNV-1a 64 пустой строки равен offset basis
	if uint64(LockKey("")) != 0xcbf29ce484222325 {
		t.Errorf("unexpected key for empty name: %x", uint64(LockKey("")))
	}
}

func TestSeedLockKey(t *testing.T) {
	if SeedLockKey("/data") != LockKey(SeedLockName+":/data") {
		t.Error("seed lock should be keyed by target root")
	}
	if SeedLockKey("/data/") != SeedLockKey("/data") {
		t.Error("equivalent paths should share a lock")
	}
	if SeedLockKey("/data") == SeedLockKey("/srv") {
		t.Error("different target roots should not share a lock")
	}
}

func TestNewPool_NoDSN(t *testing.T) {
	if _, err := NewPool(context.Background(), ""); !errors.Is(err, ErrNoDSN) {
		t.Errorf("expected ErrNoDSN, got %v", err)
	}
}

// TestWithAdvisoryLock_Serializes требует PostgreSQL (DB_URL).
func TestWithAdvisoryLock_Serializes(t *testing.T) {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		t.Skip("DB_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	key := LockKey("bootkit.test." + t.Name())

	var active, maxActive atomic.Int32
	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithAdvisoryLock(ctx, pool, key, func(ctx context.Context) error {
				n := active.Add(1)
				if n > maxActive.Load() {
					maxActive.Store(n)
				}
				time.Sleep(100 * time.Millisecond)
				active.Add(-1)
				return nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxActive.Load() != 1 {
		t.Errorf("expected exclusive execution, got %d concurrent", maxActive.Load())
	}

	want := errors.New("seed failed")
	if err := WithAdvisoryLock(ctx, pool, key, func(ctx context.Context) error { return want }); !errors.Is(err, want) {
		t.Errorf("expected fn error to propagate, got %v", err)
	}
}
