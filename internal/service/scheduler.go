package service

import (
	"context"
	"sync"
	"time"

	"github.com/smartlime/spam-restrictor-bot/internal/crash"
	"github.com/smartlime/spam-restrictor-bot/internal/logger"
	"github.com/smartlime/spam-restrictor-bot/internal/metrics"
)

// Schedule holds the last and next sweep times for status reports.
type Schedule struct {
	mu   sync.RWMutex
	last time.Time
	next time.Time
}

// Times returns the last and next sweep times; zero values mean never and unscheduled.
func (s *Schedule) Times() (last, next time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.next
}

func (s *Schedule) setNext(next time.Time) {
	s.mu.Lock()
	s.next = next
	s.mu.Unlock()
}

func (s *Schedule) setRun(last, next time.Time) {
	s.mu.Lock()
	s.last = last
	s.next = next
	s.mu.Unlock()
}

// Scheduler runs the sweeper once after a short delay and then every interval.
type Scheduler struct {
	sweeper    *Sweeper
	store      Store
	schedule   *Schedule
	grace      time.Duration
	interval   time.Duration
	firstDelay time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	onSweep func(SweepReport)
}

// NewScheduler creates a stopped Scheduler.
func NewScheduler(sweeper *Sweeper, store Store, grace, interval, firstDelay time.Duration) *Scheduler {
	return &Scheduler{
		sweeper:    sweeper,
		store:      store,
		schedule:   &Schedule{},
		grace:      grace,
		interval:   interval,
		firstDelay: firstDelay,
	}
}

// Schedule exposes the sweep times.
func (s *Scheduler) Schedule() *Schedule {
	return s.schedule
}

// Start launches the sweep loop. Calling Start on a running scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	s.schedule.setNext(time.Now().Add(s.firstDelay))
	logger.Infof("Expiry checks scheduled every %s, first in %s", s.interval, s.firstDelay)

	done := s.done
	crash.SafeGoroutine("sweep-scheduler", func() {
		defer close(done)
		s.loop(ctx)
	})
}

// Stop cancels the loop and waits for a running sweep to stop at a member boundary.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	logger.Info("Expiry scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	timer := time.NewTimer(s.firstDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		started := time.Now()
		next := started.Add(s.interval)
		s.schedule.setRun(started, next)

		s.runSweep(ctx, next)

		timer.Reset(time.Until(next))
	}
}

func (s *Scheduler) runSweep(ctx context.Context, next time.Time) {
	defer crash.RecoverWithStack("sweep")

	report := s.sweeper.RunOnce(ctx, s.grace)
	report.NextAt = next

	if stats, err := s.store.Stats(ctx); err == nil {
		metrics.ObserveStore(stats.RestrictedUsers, stats.BannedUsers)
	}

	if s.onSweep != nil {
		s.onSweep(report)
	}
}
