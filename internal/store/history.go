package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rvcheck/internal/batch"
)

// RunRow is one recorded batch run.
type RunRow struct {
	RunID         string    `json:"run_id"`
	StartedAt     time.Time `json:"started_at"`
	ElapsedMS     int64     `json:"elapsed_ms"`
	OK            int       `json:"ok"`
	Skipped       int       `json:"skipped"`
	Failed        int       `json:"failed"`
	RegressFailed int       `json:"regress_failed"`
}

// RecordRun persists a batch summary and its per-job results in one
// transaction. Re-recording the same run id is an error; run ids are
// minted per run and never reused.
func (s *Store) RecordRun(ctx context.Context, startedAt time.Time, summary batch.Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, started_at, elapsed_ms, ok, skipped, failed, regress_failed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID,
		startedAt.UTC().Format(time.RFC3339),
		summary.ElapsedMS,
		summary.Counts.OK,
		summary.Counts.Skipped,
		summary.Counts.Failed,
		summary.Counts.RegressFailed,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", summary.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO job_results (run_id, job_id, input, status, job_dir, error, regress_ok, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare job insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range summary.Results {
		var errText sql.NullString
		if r.Error != "" {
			errText = sql.NullString{String: r.Error, Valid: true}
		}
		var regressOK sql.NullBool
		if r.RegressOK != nil {
			regressOK = sql.NullBool{Bool: *r.RegressOK, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, summary.RunID, r.JobID, r.Input,
			string(r.Status), r.JobDir, errText, regressOK, r.ElapsedMS); err != nil {
			return fmt.Errorf("insert job %s: %w", r.JobID, err)
		}
	}

	return tx.Commit()
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, started_at, elapsed_ms, ok, skipped, failed, regress_failed
		FROM runs ORDER BY started_at DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		var startedAt string
		if err := rows.Scan(&r.RunID, &startedAt, &r.ElapsedMS,
			&r.OK, &r.Skipped, &r.Failed, &r.RegressFailed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
			r.StartedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InputHistory returns the recorded results for one input across runs,
// newest run first.
func (s *Store) InputHistory(ctx context.Context, input string, limit int) ([]batch.Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT j.job_id, j.input, j.status, j.job_dir, j.error, j.regress_ok, j.elapsed_ms
		FROM job_results j JOIN runs r ON r.run_id = j.run_id
		WHERE j.input = ?
		ORDER BY r.started_at DESC, r.run_id DESC LIMIT ?`, input, limit)
	if err != nil {
		return nil, fmt.Errorf("query input history: %w", err)
	}
	defer rows.Close()

	var out []batch.Result
	for rows.Next() {
		var r batch.Result
		var errText sql.NullString
		var regressOK sql.NullBool
		if err := rows.Scan(&r.JobID, &r.Input, &r.Status, &r.JobDir,
			&errText, &regressOK, &r.ElapsedMS); err != nil {
			return nil, fmt.Errorf("scan job result: %w", err)
		}
		r.Error = errText.String
		if regressOK.Valid {
			v := regressOK.Bool
			r.RegressOK = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
