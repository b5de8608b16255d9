package journal

import (
	"context"
	"errors"
	"strings"
	"time"

	sqlite "modernc.org/sqlite"
)

const (
	busyRetryAttempts  = 5
	busyRetryBaseDelay = 10 * time.Millisecond
	busyRetryMaxDelay  = 200 * time.Millisecond
)

// retryOnBusy retries operation with exponential backoff while SQLite reports
// the database as busy or locked. Other errors return immediately.
func retryOnBusy(ctx context.Context, operation func() error) error {
	delay := busyRetryBaseDelay
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = operation()
		if lastErr == nil || !isBusy(lastErr) {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > busyRetryMaxDelay {
			delay = busyRetryMaxDelay
		}
	}
	return lastErr
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		// 5 = SQLITE_BUSY, 6 = SQLITE_LOCKED
		code := sqliteErr.Code()
		return code == 5 || code == 6
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database is busy")
}
