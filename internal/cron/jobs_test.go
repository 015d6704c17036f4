package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/fest-cart/internal/clock"
)

var now = time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC)

type fakeEvicter struct {
	cutoff time.Time
	n      int
}

func (f *fakeEvicter) EvictIdle(cutoff time.Time) int {
	f.cutoff = cutoff
	return f.n
}

type fakePruner struct {
	cutoff time.Time
	rows   int64
	err    error
}

func (f *fakePruner) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.rows, f.err
}

type fakeSweeper int

func (f fakeSweeper) Sweep() int { return int(f) }

func TestEngineEvictionJobUsesIdleCutoff(t *testing.T) {
	evicter := &fakeEvicter{n: 3}
	job, err := NewEngineEvictionJob(EngineEvictionJobParams{Registry: evicter, Clock: clock.NewManual(now)})
	if err != nil {
		t.Fatalf("NewEngineEvictionJob: %v", err)
	}
	affected, err := job.Run(context.Background())
	if err != nil || affected != 3 {
		t.Fatalf("expected 3 evictions, got %d (%v)", affected, err)
	}
	if !evicter.cutoff.Equal(now.Add(-defaultIdleAfter)) {
		t.Fatalf("unexpected cutoff %s", evicter.cutoff)
	}
	if job.Name() != "engine-eviction" {
		t.Fatalf("unexpected name %q", job.Name())
	}
}

func TestSnapshotRetentionJob(t *testing.T) {
	pruner := &fakePruner{rows: 42}
	job, err := NewSnapshotRetentionJob(SnapshotRetentionJobParams{
		Storage:   pruner,
		Retention: 720 * time.Hour,
		Clock:     clock.NewManual(now),
	})
	if err != nil {
		t.Fatalf("NewSnapshotRetentionJob: %v", err)
	}
	affected, err := job.Run(context.Background())
	if err != nil || affected != 42 {
		t.Fatalf("expected 42 deleted rows, got %d (%v)", affected, err)
	}
	if !pruner.cutoff.Equal(now.Add(-720 * time.Hour)) {
		t.Fatalf("unexpected cutoff %s", pruner.cutoff)
	}

	pruner.err = errors.New("boom")
	if _, err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestSnapshotRetentionJobRequiresRetention(t *testing.T) {
	if _, err := NewSnapshotRetentionJob(SnapshotRetentionJobParams{Storage: &fakePruner{}}); err == nil {
		t.Fatal("expected error for zero retention")
	}
	if _, err := NewSnapshotRetentionJob(SnapshotRetentionJobParams{Retention: time.Hour}); err == nil {
		t.Fatal("expected error without storage")
	}
}

func TestToastSweepJob(t *testing.T) {
	job, err := NewToastSweepJob(fakeSweeper(5))
	if err != nil {
		t.Fatalf("NewToastSweepJob: %v", err)
	}
	if affected, _ := job.Run(context.Background()); affected != 5 {
		t.Fatalf("expected 5 swept toasts, got %d", affected)
	}
	if _, err := NewToastSweepJob(nil); err == nil {
		t.Fatal("expected error without feed")
	}
}
