package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/fest-cart/internal/clock"
)

const defaultIdleAfter = 30 * time.Minute

type engineEvicter interface {
	EvictIdle(cutoff time.Time) int
}

type EngineEvictionJobParams struct {
	Registry  engineEvicter
	IdleAfter time.Duration
	Clock     clock.Clock
}

// NewEngineEvictionJob drops cached cart engines of sessions that have been idle
// for IdleAfter. Their carts stay in storage and are restored on the next request.
func NewEngineEvictionJob(params EngineEvictionJobParams) (Job, error) {
	if params.Registry == nil {
		return nil, fmt.Errorf("cart registry required")
	}
	idle := params.IdleAfter
	if idle <= 0 {
		idle = defaultIdleAfter
	}
	c := params.Clock
	if c == nil {
		c = clock.NewSystem()
	}
	return &engineEvictionJob{registry: params.Registry, idleAfter: idle, clock: c}, nil
}

type engineEvictionJob struct {
	registry  engineEvicter
	idleAfter time.Duration
	clock     clock.Clock
}

func (j *engineEvictionJob) Name() string { return "engine-eviction" }

func (j *engineEvictionJob) Run(context.Context) (int64, error) {
	return int64(j.registry.EvictIdle(j.clock.Now().Add(-j.idleAfter))), nil
}
