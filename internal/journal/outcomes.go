package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Status describes how a work item finished.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusPanicked  Status = "panicked"
)

// Outcome is one terminal record for a processed work item.
type Outcome struct {
	ID           int64
	ItemID       string
	Kind         string
	Worker       string
	Status       Status
	ErrorMessage string
	Duration     time.Duration
	FinishedAt   time.Time
}

// RecordOutcome appends a terminal record for a processed item.
func (j *Journal) RecordOutcome(ctx context.Context, outcome Outcome) error {
	if outcome.ItemID == "" {
		return errors.New("outcome item id is empty")
	}
	if outcome.Status == "" {
		return errors.New("outcome status is empty")
	}
	finished := outcome.FinishedAt
	if finished.IsZero() {
		finished = time.Now().UTC()
	}

	return retryOnBusy(ctx, func() error {
		_, err := j.db.ExecContext(
			ctx,
			`INSERT INTO outcomes (item_id, kind, worker, status, error_message, duration_ms, finished_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			outcome.ItemID,
			outcome.Kind,
			outcome.Worker,
			string(outcome.Status),
			nullableString(outcome.ErrorMessage),
			outcome.Duration.Milliseconds(),
			finished.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert outcome: %w", err)
		}
		return nil
	})
}

// ListRecent returns the newest outcomes first, up to limit.
func (j *Journal) ListRecent(ctx context.Context, limit int) ([]Outcome, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(
		ctx,
		`SELECT `+outcomeColumns+` FROM outcomes ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		outcome, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, rows.Err()
}

// Stats returns a count of outcomes grouped by status.
func (j *Journal) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM outcomes GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("outcome stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// PruneOutcomesBefore deletes outcome records finished before cutoff.
func (j *Journal) PruneOutcomesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, err := j.db.ExecContext(
			ctx,
			`DELETE FROM outcomes WHERE finished_at < ?`,
			cutoff.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("prune outcomes: %w", err)
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

const outcomeColumns = "id, item_id, kind, worker, status, error_message, duration_ms, finished_at"

func scanOutcome(scanner interface{ Scan(dest ...any) error }) (Outcome, error) {
	var (
		id          int64
		itemID      string
		kind        string
		worker      string
		statusStr   string
		errMessage  sql.NullString
		durationMs  int64
		finishedRaw string
	)
	if err := scanner.Scan(&id, &itemID, &kind, &worker, &statusStr, &errMessage, &durationMs, &finishedRaw); err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{
		ID:           id,
		ItemID:       itemID,
		Kind:         kind,
		Worker:       worker,
		Status:       Status(statusStr),
		ErrorMessage: errMessage.String,
		Duration:     time.Duration(durationMs) * time.Millisecond,
	}
	if finished, err := parseTimeString(finishedRaw); err == nil {
		outcome.FinishedAt = finished
	}
	return outcome, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
