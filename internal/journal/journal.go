// SPDX-License-Identifier: AGPL-3.0-or-later
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrQuotaExceeded indicates the requested append cannot be satisfied
// because the payload is larger than the configured journal limit.
var ErrQuotaExceeded = errors.New("journal: quota exceeded")

// Entry represents a persisted run event.
type Entry struct {
	Seq       int64
	RunID     string
	EventType string
	Payload   []byte
	Timestamp time.Time
}

// Run represents one recorded task invocation.
type Run struct {
	RunID     string
	Task      string
	ArgsJSON  string
	Options   string
	ExitCode  int
	Duration  time.Duration
	StartedAt time.Time
}

// Journal provides append-only persistence for task runs and their events.
type Journal struct {
	db       *sql.DB
	maxBytes int64
	nowFn    func() time.Time
}

// New returns a Journal backed by the provided DB with the supplied maximum
// event-payload budget. When maxBytes is zero or negative the default is used.
func New(db *DB, maxBytes int64) *Journal {
	if db == nil {
		return nil
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Journal{
		db:       db.sql,
		maxBytes: maxBytes,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Append stores an event for the provided run and returns the persisted
// entry including the allocated sequence number. Eviction of the oldest
// entries and insertion happen in one transaction so the size budget holds.
func (j *Journal) Append(ctx context.Context, runID, eventType string, payload []byte, ts time.Time) (Entry, error) {
	var entry Entry
	if j == nil {
		return entry, nil
	}
	if runID == "" {
		return entry, fmt.Errorf("append journal: run id required")
	}
	if len(payload) == 0 {
		return entry, fmt.Errorf("append journal: payload required")
	}
	payloadBytes := int64(len(payload))
	if payloadBytes > j.maxBytes {
		return entry, ErrQuotaExceeded
	}

	now := ts
	if now.IsZero() {
		now = j.nowFn()
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return entry, fmt.Errorf("begin journal tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var existingBytes int64
	if err = tx.QueryRowContext(ctx, `SELECT COALESCE(SUM(length(payload)), 0) FROM run_events`).Scan(&existingBytes); err != nil {
		return entry, fmt.Errorf("journal size lookup: %w", err)
	}

	for existingBytes+payloadBytes > j.maxBytes {
		var seq, size int64
		err = tx.QueryRowContext(ctx, `SELECT seq, length(payload) FROM run_events ORDER BY seq ASC LIMIT 1`).Scan(&seq, &size)
		if errors.Is(err, sql.ErrNoRows) {
			err = nil
			break
		}
		if err != nil {
			return entry, fmt.Errorf("journal eviction lookup: %w", err)
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM run_events WHERE seq = ?`, seq); err != nil {
			return entry, fmt.Errorf("journal eviction delete seq=%d: %w", seq, err)
		}
		existingBytes -= size
		if existingBytes < 0 {
			existingBytes = 0
		}
	}

	res, err := tx.ExecContext(ctx, `
INSERT INTO run_events (run_id, event_type, payload, ts)
VALUES (?, ?, ?, ?)
`, runID, eventType, payload, now.UnixMilli())
	if err != nil {
		return entry, fmt.Errorf("journal insert: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return entry, fmt.Errorf("journal last insert id: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return entry, fmt.Errorf("journal commit: %w", err)
	}

	entry = Entry{
		Seq:       seq,
		RunID:     runID,
		EventType: eventType,
		Payload:   append([]byte(nil), payload...),
		Timestamp: now,
	}
	return entry, nil
}

// RecordRun stores the summary row for a completed task invocation.
func (j *Journal) RecordRun(ctx context.Context, run Run) error {
	if j == nil {
		return nil
	}
	if run.RunID == "" {
		return fmt.Errorf("record run: run id required")
	}
	if run.Task == "" {
		return fmt.Errorf("record run: task required")
	}
	started := run.StartedAt
	if started.IsZero() {
		started = j.nowFn()
	}
	_, err := j.db.ExecContext(ctx, `
INSERT INTO runs (run_id, task, args_json, options, exit_code, duration_ms, started_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, run.RunID, run.Task, run.ArgsJSON, run.Options, run.ExitCode, run.Duration.Milliseconds(), started.UnixMilli())
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit recorded runs, newest first.
func (j *Journal) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if j == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT run_id, task, args_json, options, exit_code, duration_ms, started_at
FROM runs ORDER BY started_at DESC, run_id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			run        Run
			durationMS int64
			startedMS  int64
		)
		if err := rows.Scan(&run.RunID, &run.Task, &run.ArgsJSON, &run.Options, &run.ExitCode, &durationMS, &startedMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.StartedAt = time.UnixMilli(startedMS).UTC()
		out = append(out, run)
	}
	return out, rows.Err()
}

// ForEach streams the events recorded for a run in sequence order.
func (j *Journal) ForEach(ctx context.Context, runID string, fn func(Entry) error) error {
	if j == nil {
		return nil
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT seq, run_id, event_type, payload, ts
FROM run_events WHERE run_id = ? ORDER BY seq ASC
`, runID)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry Entry
			tsMS  int64
		)
		if err := rows.Scan(&entry.Seq, &entry.RunID, &entry.EventType, &entry.Payload, &tsMS); err != nil {
			return fmt.Errorf("scan journal entry: %w", err)
		}
		entry.Timestamp = time.UnixMilli(tsMS).UTC()
		if err := fn(entry); err != nil {
			return err
		}
	}
	return rows.Err()
}
