package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ProbeRecord is one health probe observation for a single target.
type ProbeRecord struct {
	ID         int64
	Target     string
	URL        string
	Healthy    bool
	StatusCode int
	Detail     string
	Elapsed    time.Duration
	CheckedAt  time.Time
}

// RecordProbes persists one sweep of probe observations in a single transaction.
func (j *Journal) RecordProbes(ctx context.Context, records []ProbeRecord) error {
	if len(records) == 0 {
		return nil
	}
	return retryOnBusy(ctx, func() error {
		tx, err := j.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin probe tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for _, record := range records {
			checked := record.CheckedAt
			if checked.IsZero() {
				checked = time.Now().UTC()
			}
			_, err := tx.ExecContext(
				ctx,
				`INSERT INTO probe_results (target, url, healthy, status_code, detail, elapsed_ms, checked_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				record.Target,
				record.URL,
				boolToInt(record.Healthy),
				record.StatusCode,
				nullableString(record.Detail),
				record.Elapsed.Milliseconds(),
				checked.UTC().Format(time.RFC3339Nano),
			)
			if err != nil {
				return fmt.Errorf("insert probe result for %s: %w", record.Target, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit probe results: %w", err)
		}
		return nil
	})
}

// LatestProbes returns the most recent observation per target, ordered by target name.
func (j *Journal) LatestProbes(ctx context.Context) ([]ProbeRecord, error) {
	rows, err := j.db.QueryContext(
		ctx,
		`SELECT `+probeColumns+` FROM probe_results
         WHERE id IN (SELECT MAX(id) FROM probe_results GROUP BY target)
         ORDER BY target`,
	)
	if err != nil {
		return nil, fmt.Errorf("latest probes: %w", err)
	}
	defer rows.Close()

	var records []ProbeRecord
	for rows.Next() {
		record, err := scanProbe(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// PruneProbesBefore deletes probe observations checked before cutoff.
func (j *Journal) PruneProbesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, err := j.db.ExecContext(
			ctx,
			`DELETE FROM probe_results WHERE checked_at < ?`,
			cutoff.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("prune probe results: %w", err)
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

const probeColumns = "id, target, url, healthy, status_code, detail, elapsed_ms, checked_at"

func scanProbe(scanner interface{ Scan(dest ...any) error }) (ProbeRecord, error) {
	var (
		id         int64
		target     string
		url        string
		healthy    int
		statusCode int
		detail     sql.NullString
		elapsedMs  int64
		checkedRaw string
	)
	if err := scanner.Scan(&id, &target, &url, &healthy, &statusCode, &detail, &elapsedMs, &checkedRaw); err != nil {
		return ProbeRecord{}, err
	}

	record := ProbeRecord{
		ID:         id,
		Target:     target,
		URL:        url,
		Healthy:    healthy != 0,
		StatusCode: statusCode,
		Detail:     detail.String,
		Elapsed:    time.Duration(elapsedMs) * time.Millisecond,
	}
	if checked, err := parseTimeString(checkedRaw); err == nil {
		record.CheckedAt = checked
	}
	return record, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
