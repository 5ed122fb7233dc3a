// SPDX-License-Identifier: AGPL-3.0-or-later
package journal

import (
	"context"
	"testing"
	"time"
)

func TestCollectStorageStats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	db, err := Open(ctx, Options{DataDir: dir, MaxBytes: 1 << 20})
	if err != nil {
		t.Fatalf("open journal db: %v", err)
	}
	defer db.Close()
	j := New(db, 1<<20)

	if err := j.RecordRun(ctx, Run{RunID: "run-1", Task: "epproc", ArgsJSON: "{}"}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if _, err := j.Append(ctx, "run-1", "event", []byte(`{"type":"task.start"}`), time.Time{}); err != nil {
		t.Fatalf("append: %v", err)
	}

	stats, err := CollectStorageStats(ctx, db)
	if err != nil {
		t.Fatalf("collect stats: %v", err)
	}
	if !stats.OK {
		t.Fatalf("stats not OK: %+v", stats)
	}
	if stats.Path != dir {
		t.Fatalf("path = %q, want %q", stats.Path, dir)
	}
	if stats.RunCount != 1 || stats.EventCount != 1 {
		t.Fatalf("counts = %d runs, %d events", stats.RunCount, stats.EventCount)
	}
	if stats.EventBytes == 0 || stats.BytesUsed == 0 {
		t.Fatalf("byte counters not populated: %+v", stats)
	}
	if stats.EvictionActive {
		t.Fatalf("eviction should not be active: %+v", stats)
	}
}

func TestCollectStorageStats_NilDB(t *testing.T) {
	if _, err := CollectStorageStats(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}
