package repo

import (
	"context"
	"fmt"
	"hash/fnv"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedLockName — имя lock'а на seeding томов.
const SeedLockName = "bootkit.seed"

// LockKey переводит имя lock'а в ключ pg_advisory_lock (FNV-1a, 64 бита).
func LockKey(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64())
}

// SeedLockKey — ключ lock'а на seeding конкретного target root.
// Реплики с разными томами не блокируют друг друга.
func SeedLockKey(targetDir string) int64 {
	return LockKey(SeedLockName + ":" + filepath.Clean(targetDir))
}

// WithAdvisoryLock выполняет fn под session-level advisory lock.
//
// Lock берётся на выделенном соединении и блокирует до освобождения
// другой репликой (или до отмены ctx). Unlock выполняется всегда,
// даже если ctx уже отменён.
func WithAdvisoryLock(ctx context.Context, pool *pgxpool.Pool, key int64, fn func(ctx context.Context) error) (err error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire conn: %v", ErrLock, err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "select pg_advisory_lock($1)", key); err != nil {
		return fmt.Errorf("%w: lock %d: %v", ErrLock, key, err)
	}

	defer func() {
		var unlocked bool
		uerr := conn.QueryRow(context.WithoutCancel(ctx), "select pg_advisory_unlock($1)", key).Scan(&unlocked)
		if uerr == nil && !unlocked {
			uerr = fmt.Errorf("lock %d was not held", key)
		}
		if uerr != nil {
			// Соединение с неизвестным состоянием lock'а не возвращаем в пул
			conn.Conn().Close(context.WithoutCancel(ctx))
			err = multierror.Append(err, fmt.Errorf("%w: unlock: %v", ErrLock, uerr)).ErrorOrNil()
		}
	}()

	return fn(ctx)
}
