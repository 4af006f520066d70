package service

import (
	"context"
	"time"

	"github.com/smartlime/spam-restrictor-bot/internal/storage"
)

// Status is the snapshot shown to the administrator.
type Status struct {
	Stats         storage.Stats
	LastSweep     time.Time
	NextSweep     time.Time
	GracePeriod   time.Duration
	CheckInterval time.Duration
}

// StatusReporter assembles Status from the store and the sweep schedule.
type StatusReporter struct {
	store    Store
	schedule *Schedule
	grace    time.Duration
	interval time.Duration
}

func NewStatusReporter(store Store, schedule *Schedule, grace, interval time.Duration) *StatusReporter {
	return &StatusReporter{store: store, schedule: schedule, grace: grace, interval: interval}
}

func (r *StatusReporter) Status(ctx context.Context) (Status, error) {
	stats, err := r.store.Stats(ctx)
	if err != nil {
		return Status{}, err
	}

	last, next := r.schedule.Times()
	return Status{
		Stats:         stats,
		LastSweep:     last,
		NextSweep:     next,
		GracePeriod:   r.grace,
		CheckInterval: r.interval,
	}, nil
}
