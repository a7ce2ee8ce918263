package store

import (
	"context"
	"database/sql"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"memelord/internal/logging"

	_ "modernc.org/sqlite"
)

const (
	busyTimeoutMillis = 5000
	maxConnectRetries = 10
	baseDelay         = 50 * time.Millisecond
)

// connect opens a fresh connection to dbPath, applies the busy timeout, and
// retries with capped randomized backoff on lock-contention errors. Every
// public operation calls this exactly once, executes, and closes — no
// connection is ever retained across an embedding call or between
// operations.
func connect(ctx context.Context, dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, newErr(ErrStorageLocked, "failed to create data directory", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxConnectRetries; attempt++ {
		db, err := sql.Open("sqlite", dbPath)
		if err == nil {
			if _, err = db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err == nil {
				return db, nil
			}
			db.Close()
		}

		if !isLockErr(err) {
			return nil, newErr(ErrStorageLocked, "failed to open database connection", err)
		}

		lastErr = err
		logging.ConcurrencyDebug("connect: lock contention on attempt %d: %v", attempt+1, err)

		delay := backoff(attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, newErr(ErrStorageLocked, "context cancelled while waiting for lock", ctx.Err())
		}
	}

	logging.Get(logging.CategoryConcurrency).Warn("connect: exhausted %d retries against %s", maxConnectRetries, dbPath)
	return nil, newErr(ErrStorageLocked, "exhausted connect retries under lock contention", lastErr)
}

// backoff implements baseDelay * (1 + rand) * min(attempt+1, 5).
func backoff(attempt int) time.Duration {
	mult := attempt + 1
	if mult > 5 {
		mult = 5
	}
	jitter := 1 + rand.Float64()
	return time.Duration(float64(baseDelay) * jitter * float64(mult))
}

func isLockErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "locked") || strings.Contains(msg, "busy")
}

// withConn runs fn against a freshly connected, freshly closed database
// handle: connect, set busy timeout, execute, close. Any error fn returns
// propagates verbatim (the store never silently drops data).
func withConn(ctx context.Context, dbPath string, fn func(*sql.DB) error) error {
	db, err := connect(ctx, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

// withTx is withConn plus a single transaction wrapping fn, matching the
// "one short-lived transaction per operation" requirement.
func withTx(ctx context.Context, dbPath string, fn func(*sql.Tx) error) error {
	return withConn(ctx, dbPath, func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return newErr(ErrStorageLocked, "failed to begin transaction", err)
		}
		if err := fn(tx); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return newErr(ErrStorageLocked, "failed to commit transaction", err)
		}
		return nil
	})
}
