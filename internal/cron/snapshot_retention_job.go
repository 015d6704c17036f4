package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/fest-cart/internal/clock"
)

type snapshotPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type SnapshotRetentionJobParams struct {
	Storage   snapshotPruner
	Retention time.Duration
	Clock     clock.Clock
}

// NewSnapshotRetentionJob deletes SQL cart snapshots untouched for Retention.
func NewSnapshotRetentionJob(params SnapshotRetentionJobParams) (Job, error) {
	if params.Storage == nil {
		return nil, fmt.Errorf("snapshot storage required")
	}
	if params.Retention <= 0 {
		return nil, fmt.Errorf("snapshot retention must be positive")
	}
	c := params.Clock
	if c == nil {
		c = clock.NewSystem()
	}
	return &snapshotRetentionJob{storage: params.Storage, retention: params.Retention, clock: c}, nil
}

type snapshotRetentionJob struct {
	storage   snapshotPruner
	retention time.Duration
	clock     clock.Clock
}

func (j *snapshotRetentionJob) Name() string { return "snapshot-retention" }

func (j *snapshotRetentionJob) Run(ctx context.Context) (int64, error) {
	cutoff := j.clock.Now().UTC().Add(-j.retention)
	deleted, err := j.storage.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("snapshot retention: %w", err)
	}
	return deleted, nil
}
