package service

import (
	"context"
	"time"

	"github.com/smartlime/spam-restrictor-bot/internal/gateway"
	"github.com/smartlime/spam-restrictor-bot/internal/logger"
	"github.com/smartlime/spam-restrictor-bot/internal/metrics"
	"github.com/smartlime/spam-restrictor-bot/internal/notify"
)

// Options carries the lifecycle timing.
type Options struct {
	GracePeriod   time.Duration
	CheckInterval time.Duration
	FirstRunDelay time.Duration
	NotifyNoUsers bool
	GroupID       int64
}

// Lifecycle wires the router, sweeper and scheduler around one store and one gateway.
// The router and the sweeper share member locks.
type Lifecycle struct {
	Router    *Router
	Sweeper   *Sweeper
	Scheduler *Scheduler
	Status    *StatusReporter

	store Store
	sink  notify.Sink
	opts  Options
}

func NewLifecycle(store Store, gw gateway.Gateway, sink notify.Sink, opts Options) *Lifecycle {
	locks := newMemberLocks()
	sweeper := newSweeper(store, gw, sink, locks, opts.NotifyNoUsers)
	scheduler := NewScheduler(sweeper, store, opts.GracePeriod, opts.CheckInterval, opts.FirstRunDelay)

	return &Lifecycle{
		Router:    newRouter(store, gw, sink, locks, opts.GracePeriod),
		Sweeper:   sweeper,
		Scheduler: scheduler,
		Status:    NewStatusReporter(store, scheduler.Schedule(), opts.GracePeriod, opts.CheckInterval),
		store:     store,
		sink:      sink,
		opts:      opts,
	}
}

// Start publishes the startup event and starts the sweep schedule.
func (l *Lifecycle) Start(ctx context.Context) {
	stats, err := l.store.Stats(ctx)
	if err != nil {
		logger.Warningf("Error reading stats at startup: %v", err)
	} else {
		metrics.ObserveStore(stats.RestrictedUsers, stats.BannedUsers)
	}

	l.sink.Publish(ctx, notify.Event{
		Type:            notify.EventStartup,
		At:              time.Now(),
		GracePeriod:     l.opts.GracePeriod,
		GroupID:         l.opts.GroupID,
		RestrictedUsers: stats.RestrictedUsers,
		BannedUsers:     stats.BannedUsers,
		CheckInterval:   l.opts.CheckInterval,
	})

	l.Scheduler.Start(ctx)
}

// Stop stops the sweep schedule.
func (l *Lifecycle) Stop() {
	l.Scheduler.Stop()
}
