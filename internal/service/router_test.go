package service

import (
	"context"
	"testing"

	"github.com/smartlime/spam-restrictor-bot/internal/metrics"
	"github.com/smartlime/spam-restrictor-bot/internal/models"
	"github.com/smartlime/spam-restrictor-bot/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleJoinRestrictsNewMember(t *testing.T) {
	repo := newRepository(t)
	gw := newFakeGateway()
	sink := &recordingSink{}
	router := NewRouter(repo, gw, sink, testGrace)
	ctx := context.Background()

	outcome := router.HandleJoin(ctx, member(1))

	assert.Equal(t, metrics.JoinRestricted, outcome)
	assert.Equal(t, []string{"restrict 1"}, gw.Calls())
	assert.Equal(t, []notify.EventType{notify.EventRestricted}, sink.Types())
	assert.Equal(t, testGrace, sink.events[0].GracePeriod)

	restricted, err := repo.IsRestricted(ctx, 1)
	require.NoError(t, err)
	assert.True(t, restricted)
}

func TestHandleJoinIgnoresBots(t *testing.T) {
	repo := newRepository(t)
	gw := newFakeGateway()
	sink := &recordingSink{}
	router := NewRouter(repo, gw, sink, testGrace)

	bot := member(2)
	bot.IsBot = true

	assert.Equal(t, metrics.JoinIgnoredBot, router.HandleJoin(context.Background(), bot))
	assert.Empty(t, gw.Calls())
	assert.Empty(t, sink.Types())

	restricted, err := repo.IsRestricted(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, restricted)
}

func TestHandleJoinTwiceNotifiesOnce(t *testing.T) {
	repo := newRepository(t)
	sink := &recordingSink{}
	router := NewRouter(repo, newFakeGateway(), sink, testGrace)
	ctx := context.Background()

	assert.Equal(t, metrics.JoinRestricted, router.HandleJoin(ctx, member(3)))
	assert.Equal(t, metrics.JoinAlreadyRestricted, router.HandleJoin(ctx, member(3)))

	assert.Equal(t, 1, sink.Count(notify.EventRestricted))

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.RestrictedUsers)
}

func TestHandleJoinRemovesBannedMember(t *testing.T) {
	repo := newRepository(t)
	gw := newFakeGateway()
	sink := &recordingSink{}
	router := NewRouter(repo, gw, sink, testGrace)
	ctx := context.Background()

	_, err := repo.PromoteToBanned(ctx, 5, member(5).Display, models.ReasonRestrictionExpired)
	require.NoError(t, err)

	outcome := router.HandleJoin(ctx, member(5))

	assert.Equal(t, metrics.JoinRebanned, outcome)
	assert.Equal(t, []string{"remove 5"}, gw.Calls())
	assert.Equal(t, []notify.EventType{notify.EventRejoinBlocked}, sink.Types())

	restricted, err := repo.IsRestricted(ctx, 5)
	require.NoError(t, err)
	assert.False(t, restricted, "a banned member must never get a restriction row")
}

func TestHandleJoinRestrictFailureWritesNothing(t *testing.T) {
	repo := newRepository(t)
	gw := newFakeGateway()
	gw.failOn("restrict", 6)
	sink := &recordingSink{}
	router := NewRouter(repo, gw, sink, testGrace)
	ctx := context.Background()

	outcome := router.HandleJoin(ctx, member(6))

	assert.Equal(t, metrics.JoinRestrictFailed, outcome)
	assert.Equal(t, []notify.EventType{notify.EventRestrictFailed}, sink.Types())
	assert.Error(t, sink.events[0].Err)

	restricted, err := repo.IsRestricted(ctx, 6)
	require.NoError(t, err)
	assert.False(t, restricted)
}

func TestHandleJoinRemoveFailure(t *testing.T) {
	repo := newRepository(t)
	gw := newFakeGateway()
	gw.failOn("remove", 7)
	sink := &recordingSink{}
	router := NewRouter(repo, gw, sink, testGrace)
	ctx := context.Background()

	_, err := repo.PromoteToBanned(ctx, 7, models.Display{}, "manual")
	require.NoError(t, err)

	assert.Equal(t, metrics.JoinRemoveFailed, router.HandleJoin(ctx, member(7)))
	assert.Equal(t, []notify.EventType{notify.EventRemoveFailed}, sink.Types())
}

func TestHandleJoinStorageFailureAfterRestrict(t *testing.T) {
	repo := newRepository(t)
	gw := newFakeGateway()
	sink := &recordingSink{}
	router := NewRouter(insertFailingStore{Store: repo}, gw, sink, testGrace)

	outcome := router.HandleJoin(context.Background(), member(8))

	assert.Equal(t, metrics.JoinStorageFailed, outcome)
	assert.Equal(t, []string{"restrict 8"}, gw.Calls())
	assert.Equal(t, []notify.EventType{notify.EventStorageFailed}, sink.Types())
}
