package service

import (
	"context"
	"time"

	"github.com/smartlime/spam-restrictor-bot/internal/gateway"
	"github.com/smartlime/spam-restrictor-bot/internal/logger"
	"github.com/smartlime/spam-restrictor-bot/internal/metrics"
	"github.com/smartlime/spam-restrictor-bot/internal/models"
	"github.com/smartlime/spam-restrictor-bot/internal/notify"
	"github.com/smartlime/spam-restrictor-bot/internal/storage"
)

// Router decides what happens to a member who joined the group.
type Router struct {
	store Store
	gw    gateway.Gateway
	sink  notify.Sink
	locks *memberLocks
	grace time.Duration
}

// NewRouter creates a Router. grace is only used in notifications.
func NewRouter(store Store, gw gateway.Gateway, sink notify.Sink, grace time.Duration) *Router {
	return newRouter(store, gw, sink, newMemberLocks(), grace)
}

func newRouter(store Store, gw gateway.Gateway, sink notify.Sink, locks *memberLocks, grace time.Duration) *Router {
	return &Router{store: store, gw: gw, sink: sink, locks: locks, grace: grace}
}

// HandleJoin restricts a new member or removes a previously banned one.
// It returns the outcome, one of the metrics.Join* values.
func (r *Router) HandleJoin(ctx context.Context, member models.Member) string {
	outcome := r.handleJoin(ctx, member)
	metrics.JoinsTotal.WithLabelValues(outcome).Inc()
	return outcome
}

func (r *Router) handleJoin(ctx context.Context, member models.Member) string {
	if member.IsBot {
		logger.Debugf("Ignoring bot join: %s", member)
		return metrics.JoinIgnoredBot
	}

	unlock := r.locks.Lock(member.ID)
	defer unlock()

	logger.Infof("New member: %s", member)

	banned, err := r.store.IsBanned(ctx, member.ID)
	if err != nil {
		logger.Errorf("Error checking ban state of user %d: %v", member.ID, err)
		r.publish(ctx, notify.EventStorageFailed, member, err)
		return metrics.JoinStorageFailed
	}
	if banned {
		return r.reban(ctx, member)
	}

	logger.Infof("User %s joined the group directly, restricting", member)
	if err := r.gw.Restrict(ctx, member.ID); err != nil {
		logger.Errorf("Error restricting user %d: %v", member.ID, err)
		r.publish(ctx, notify.EventRestrictFailed, member, err)
		return metrics.JoinRestrictFailed
	}

	result, err := r.store.InsertRestricted(ctx, member.ID, member.Display)
	if err != nil {
		// the restriction itself is already in effect
		logger.Warningf("User %d restricted but not recorded: %v", member.ID, err)
		r.publish(ctx, notify.EventStorageFailed, member, err)
		return metrics.JoinStorageFailed
	}

	switch result {
	case storage.AlreadyExists:
		logger.Infof("User %d is already restricted", member.ID)
		return metrics.JoinAlreadyRestricted
	case storage.AlreadyBanned:
		logger.Warningf("User %d was banned while being restricted", member.ID)
		return r.reban(ctx, member)
	}

	logger.Infof("User %d restricted and recorded", member.ID)
	r.publish(ctx, notify.EventRestricted, member, nil)
	return metrics.JoinRestricted
}

func (r *Router) reban(ctx context.Context, member models.Member) string {
	logger.Warningf("User %d was removed before, banning again", member.ID)
	if err := r.gw.Remove(ctx, member.ID); err != nil {
		logger.Errorf("Error banning user %d: %v", member.ID, err)
		r.publish(ctx, notify.EventRemoveFailed, member, err)
		return metrics.JoinRemoveFailed
	}

	logger.Infof("User %d banned", member.ID)
	r.publish(ctx, notify.EventRejoinBlocked, member, nil)
	return metrics.JoinRebanned
}

func (r *Router) publish(ctx context.Context, t notify.EventType, member models.Member, err error) {
	r.sink.Publish(ctx, notify.Event{
		Type:        t,
		Member:      member,
		Err:         err,
		At:          time.Now(),
		GracePeriod: r.grace,
	})
}
