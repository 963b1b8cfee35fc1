package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultWorkerLockKey identifies the research worker's session advisory lock.
const DefaultWorkerLockKey int64 = 0x656e726963687701

// PGWorkerLock makes one process at a time the research worker, using a session-level
// advisory lock held on a dedicated connection until release.
type PGWorkerLock struct {
	db     *sql.DB
	key    int64
	logger *slog.Logger
}

// NewPGWorkerLock constructs a worker lock for key. A zero key selects DefaultWorkerLockKey.
func NewPGWorkerLock(db *sql.DB, key int64, logger *slog.Logger) *PGWorkerLock {
	if key == 0 {
		key = DefaultWorkerLockKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PGWorkerLock{db: db, key: key, logger: logger}
}

// TryAcquire attempts the lock without waiting. The returned release func is safe to call once.
func (l *PGWorkerLock) TryAcquire(ctx context.Context) (func(), bool, error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("get conn for worker lock: %w", err)
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, l.key).Scan(&acquired); err != nil {
		_ = conn.Close()
		return nil, false, fmt.Errorf("try worker lock: %w", err)
	}
	if !acquired {
		_ = conn.Close()
		return nil, false, nil
	}

	release := func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := conn.ExecContext(unlockCtx, `SELECT pg_advisory_unlock($1)`, l.key); err != nil {
			l.logger.Warn("failed to release worker lock", "error", err)
		}
		if err := conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			l.logger.Warn("failed to close worker lock connection", "error", err)
		}
	}
	return release, true, nil
}
