// SPDX-License-Identifier: AGPL-3.0-or-later

package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// StorageStats captures high-level information about the journal database.
type StorageStats struct {
	Driver         string `json:"driver"`
	OK             bool   `json:"ok"`
	Path           string `json:"path"`
	BytesUsed      int64  `json:"bytes_used"`
	EventBytes     int64  `json:"event_bytes"`
	EventMaxBytes  int64  `json:"event_max_bytes"`
	EvictionActive bool   `json:"eviction_active"`
	RunCount       int64  `json:"run_count"`
	EventCount     int64  `json:"event_count"`
}

// CollectStorageStats inspects the backing SQLite database and returns
// aggregate storage statistics suitable for the status report.
func CollectStorageStats(ctx context.Context, db *DB) (StorageStats, error) {
	if db == nil || db.sql == nil {
		return StorageStats{}, errors.New("journal: database not initialised")
	}
	conn := db.SQL()
	stats := StorageStats{
		Driver:        sqliteDriverName,
		Path:          db.opts.DataDir,
		EventMaxBytes: db.opts.MaxBytes,
	}

	pageSize, err := querySingleInt(ctx, conn, "PRAGMA page_size;")
	if err != nil {
		return stats, fmt.Errorf("journal: lookup page_size: %w", err)
	}
	pageCount, err := querySingleInt(ctx, conn, "PRAGMA page_count;")
	if err != nil {
		return stats, fmt.Errorf("journal: lookup page_count: %w", err)
	}
	stats.BytesUsed = pageCount * pageSize

	var eventBytes sql.NullInt64
	if err := conn.QueryRowContext(ctx, `SELECT COALESCE(SUM(length(payload)),0) FROM run_events`).Scan(&eventBytes); err != nil {
		return stats, fmt.Errorf("journal: event payload inspection: %w", err)
	}
	stats.EventBytes = eventBytes.Int64

	if stats.RunCount, err = querySingleInt(ctx, conn, "SELECT COUNT(*) FROM runs;"); err != nil {
		return stats, fmt.Errorf("journal: count runs: %w", err)
	}
	if stats.EventCount, err = querySingleInt(ctx, conn, "SELECT COUNT(*) FROM run_events;"); err != nil {
		return stats, fmt.Errorf("journal: count events: %w", err)
	}

	if stats.EventMaxBytes > 0 && stats.EventBytes >= (stats.EventMaxBytes*9)/10 {
		stats.EvictionActive = true
	}
	stats.OK = stats.EventMaxBytes == 0 || stats.EventBytes <= stats.EventMaxBytes

	return stats, nil
}

func querySingleInt(ctx context.Context, conn *sql.DB, stmt string) (int64, error) {
	var out sql.NullInt64
	if err := conn.QueryRowContext(ctx, stmt).Scan(&out); err != nil {
		return 0, err
	}
	return out.Int64, nil
}
