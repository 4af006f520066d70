package service

import (
	"context"
	"testing"
	"time"

	"github.com/smartlime/spam-restrictor-bot/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunOnceBansExpiredMembers(t *testing.T) {
	repo := newRepository(t)
	gw := newFakeGateway()
	sink := &recordingSink{}
	sweeper := NewSweeper(repo, gw, sink, false)
	ctx := context.Background()

	restrictedAt(t, repo, 1, time.Now().Add(-testGrace-24*time.Hour))
	restrictedAt(t, repo, 2, time.Now().Add(-testGrace+24*time.Hour))

	report := sweeper.RunOnce(ctx, testGrace)

	assert.NoError(t, report.Err)
	assert.Equal(t, 1, report.Found)
	assert.Equal(t, 1, report.Promoted)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, []string{"remove 1", "unexclude 1"}, gw.Calls())
	assert.Equal(t, []notify.EventType{notify.EventExpired}, sink.Types())

	banned, err := repo.IsBanned(ctx, 1)
	require.NoError(t, err)
	assert.True(t, banned)

	restricted, err := repo.IsRestricted(ctx, 2)
	require.NoError(t, err)
	assert.True(t, restricted, "member inside the grace period stays restricted")
}

func TestRunOnceIsolatesMemberFailures(t *testing.T) {
	repo := newRepository(t)
	gw := newFakeGateway()
	gw.failOn("remove", 2)
	sink := &recordingSink{}
	sweeper := NewSweeper(repo, gw, sink, false)
	ctx := context.Background()

	old := time.Now().Add(-testGrace - time.Hour)
	for _, id := range []int64{1, 2, 3} {
		restrictedAt(t, repo, id, old)
	}

	report := sweeper.RunOnce(ctx, testGrace)

	assert.Equal(t, 3, report.Found)
	assert.Equal(t, 2, report.Promoted)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 2, sink.Count(notify.EventExpired))
	assert.Equal(t, 1, sink.Count(notify.EventExpireFailed))
	assert.NotContains(t, gw.Calls(), "unexclude 2")

	for _, id := range []int64{1, 3} {
		banned, err := repo.IsBanned(ctx, id)
		require.NoError(t, err)
		assert.True(t, banned, "member %d", id)
	}

	restricted, err := repo.IsRestricted(ctx, 2)
	require.NoError(t, err)
	assert.True(t, restricted, "failed member is retried next run")
	banned, err := repo.IsBanned(ctx, 2)
	require.NoError(t, err)
	assert.False(t, banned)
}

func TestRunOnceUnexcludeFailureKeepsRestriction(t *testing.T) {
	repo := newRepository(t)
	gw := newFakeGateway()
	gw.failOn("unexclude", 4)
	sink := &recordingSink{}
	sweeper := NewSweeper(repo, gw, sink, false)
	ctx := context.Background()

	restrictedAt(t, repo, 4, time.Now().Add(-testGrace-time.Hour))

	report := sweeper.RunOnce(ctx, testGrace)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []string{"remove 4", "unexclude 4"}, gw.Calls())
	assert.Equal(t, []notify.EventType{notify.EventExpireFailed}, sink.Types())

	restricted, err := repo.IsRestricted(ctx, 4)
	require.NoError(t, err)
	assert.True(t, restricted)
}

func TestRunOnceIdleNotification(t *testing.T) {
	repo := newRepository(t)

	quiet := &recordingSink{}
	report := NewSweeper(repo, newFakeGateway(), quiet, false).RunOnce(context.Background(), testGrace)
	assert.Equal(t, 0, report.Found)
	assert.Empty(t, quiet.Types())

	chatty := &recordingSink{}
	NewSweeper(repo, newFakeGateway(), chatty, true).RunOnce(context.Background(), testGrace)
	assert.Equal(t, []notify.EventType{notify.EventSweepIdle}, chatty.Types())
}

func TestRunOnceStopsWhenCancelled(t *testing.T) {
	repo := newRepository(t)
	gw := newFakeGateway()
	sweeper := NewSweeper(repo, gw, &recordingSink{}, false)

	restrictedAt(t, repo, 1, time.Now().Add(-testGrace-time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := sweeper.RunOnce(ctx, testGrace)

	assert.Error(t, report.Err)
	assert.Equal(t, 0, report.Promoted)
	assert.Empty(t, gw.Calls())

	restricted, err := repo.IsRestricted(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, restricted)
}

func TestRejoinDuringSweepIsRebanned(t *testing.T) {
	repo := newRepository(t)
	gw := newFakeGateway()
	sink := &recordingSink{}
	lc := NewLifecycle(repo, gw, sink, Options{GracePeriod: testGrace, CheckInterval: time.Hour})
	ctx := context.Background()

	restrictedAt(t, repo, 9, time.Now().Add(-testGrace-time.Hour))

	lc.Sweeper.RunOnce(ctx, testGrace)
	lc.Router.HandleJoin(ctx, member(9))

	assert.Equal(t, []string{"remove 9", "unexclude 9", "remove 9"}, gw.Calls())
	assert.Equal(t, []notify.EventType{notify.EventExpired, notify.EventRejoinBlocked}, sink.Types())
}
