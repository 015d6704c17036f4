package cron

import (
	"context"
	"fmt"
)

type toastSweeper interface {
	Sweep() int
}

// NewToastSweepJob forgets expired toasts of sessions that never drained them.
func NewToastSweepJob(feed toastSweeper) (Job, error) {
	if feed == nil {
		return nil, fmt.Errorf("toast feed required")
	}
	return &toastSweepJob{feed: feed}, nil
}

type toastSweepJob struct {
	feed toastSweeper
}

func (j *toastSweepJob) Name() string { return "toast-sweep" }

func (j *toastSweepJob) Run(context.Context) (int64, error) {
	return int64(j.feed.Sweep()), nil
}
