package service

import (
	"context"
	"time"

	"github.com/smartlime/spam-restrictor-bot/internal/gateway"
	"github.com/smartlime/spam-restrictor-bot/internal/logger"
	"github.com/smartlime/spam-restrictor-bot/internal/metrics"
	"github.com/smartlime/spam-restrictor-bot/internal/models"
	"github.com/smartlime/spam-restrictor-bot/internal/notify"
)

// SweepReport summarizes one sweep run.
type SweepReport struct {
	StartedAt time.Time
	// NextAt is filled in by the scheduler.
	NextAt   time.Time
	Found    int
	Promoted int
	Failed   int
	// Err is set when the expired list could not be read.
	Err error
}

// Sweeper removes members whose restriction outlived the grace period.
type Sweeper struct {
	store      Store
	gw         gateway.Gateway
	sink       notify.Sink
	locks      *memberLocks
	notifyIdle bool
	now        func() time.Time
}

// NewSweeper creates a Sweeper. With notifyIdle set, an empty sweep publishes EventSweepIdle.
func NewSweeper(store Store, gw gateway.Gateway, sink notify.Sink, notifyIdle bool) *Sweeper {
	return newSweeper(store, gw, sink, newMemberLocks(), notifyIdle)
}

func newSweeper(store Store, gw gateway.Gateway, sink notify.Sink, locks *memberLocks, notifyIdle bool) *Sweeper {
	return &Sweeper{
		store:      store,
		gw:         gw,
		sink:       sink,
		locks:      locks,
		notifyIdle: notifyIdle,
		now:        time.Now,
	}
}

// RunOnce processes every expired restriction. A failure for one member is reported and
// the run continues with the next; the member stays restricted and is retried next run.
func (s *Sweeper) RunOnce(ctx context.Context, grace time.Duration) SweepReport {
	report := SweepReport{StartedAt: s.now()}
	metrics.SweepsTotal.Inc()
	defer func() {
		metrics.SweepDuration.Observe(s.now().Sub(report.StartedAt).Seconds())
	}()

	logger.Info("Running restriction expiry check")

	expired, err := s.store.ListExpired(ctx, grace)
	if err != nil {
		logger.Errorf("Error listing expired restrictions: %v", err)
		report.Err = err
		s.sink.Publish(ctx, notify.Event{Type: notify.EventStorageFailed, Err: err, At: s.now()})
		return report
	}
	report.Found = len(expired)

	if len(expired) == 0 {
		logger.Info("No users with expired restrictions")
		if s.notifyIdle {
			s.sink.Publish(ctx, notify.Event{Type: notify.EventSweepIdle, At: s.now(), GracePeriod: grace})
		}
		return report
	}

	logger.Infof("Found %d users with expired restrictions", len(expired))

	for _, record := range expired {
		if err := ctx.Err(); err != nil {
			logger.Warningf("Expiry check interrupted, %d users left for the next run",
				report.Found-report.Promoted-report.Failed)
			report.Err = err
			break
		}

		if err := s.expire(ctx, record, grace); err != nil {
			report.Failed++
			metrics.SweepMembersTotal.WithLabelValues(metrics.SweepFailed).Inc()
			continue
		}
		report.Promoted++
		metrics.SweepMembersTotal.WithLabelValues(metrics.SweepPromoted).Inc()
	}

	logger.Infof("Expiry check finished: %d banned, %d failed", report.Promoted, report.Failed)
	return report
}

func (s *Sweeper) expire(ctx context.Context, record models.RestrictedUser, grace time.Duration) error {
	member := record.Member()

	unlock := s.locks.Lock(member.ID)
	defer unlock()

	logger.Infof("Banning user %s: restriction expired", member)

	if err := s.gw.Remove(ctx, member.ID); err != nil {
		return s.fail(ctx, notify.EventExpireFailed, member, err)
	}
	if err := s.gw.Unexclude(ctx, member.ID); err != nil {
		return s.fail(ctx, notify.EventExpireFailed, member, err)
	}

	existed, err := s.store.PromoteToBanned(ctx, member.ID, record.Display, models.ReasonRestrictionExpired)
	if err != nil {
		return s.fail(ctx, notify.EventStorageFailed, member, err)
	}
	if !existed {
		logger.Warningf("Restriction of user %d was already gone when promoting", member.ID)
	}

	logger.Infof("User %d banned and recorded", member.ID)
	s.sink.Publish(ctx, notify.Event{
		Type:        notify.EventExpired,
		Member:      member,
		At:          s.now(),
		GracePeriod: grace,
	})
	return nil
}

func (s *Sweeper) fail(ctx context.Context, t notify.EventType, member models.Member, err error) error {
	logger.Errorf("Error banning user %d: %v", member.ID, err)
	s.sink.Publish(ctx, notify.Event{Type: t, Member: member, Err: err, At: s.now()})
	return err
}
