package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const migrationLockID = 1000

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// acquireAdvisoryLock blocks until the session-level lock is held.
func acquireAdvisoryLock(ctx context.Context, e execer, lockID int64) error {
	if _, err := e.Exec(ctx, "SELECT pg_advisory_lock($1)", lockID); err != nil {
		return fmt.Errorf("acquire advisory lock: %w", err)
	}

	return nil
}

func releaseAdvisoryLock(ctx context.Context, e execer, lockID int64) error {
	if _, err := e.Exec(ctx, "SELECT pg_advisory_unlock($1)", lockID); err != nil {
		return fmt.Errorf("release advisory lock: %w", err)
	}

	return nil
}
