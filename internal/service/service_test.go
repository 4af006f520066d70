package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/smartlime/spam-restrictor-bot/internal/config"
	"github.com/smartlime/spam-restrictor-bot/internal/gateway"
	"github.com/smartlime/spam-restrictor-bot/internal/models"
	"github.com/smartlime/spam-restrictor-bot/internal/notify"
	"github.com/smartlime/spam-restrictor-bot/internal/storage"

	"github.com/stretchr/testify/require"
)

const testGrace = 30 * 24 * time.Hour

type fakeGateway struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{fail: make(map[string]error)}
}

func (g *fakeGateway) failOn(op string, userID int64) {
	g.fail[fmt.Sprintf("%s %d", op, userID)] = &gateway.Error{
		Kind:   gateway.Permanent,
		Op:     op,
		UserID: userID,
		Err:    errors.New("Forbidden: not enough rights"),
	}
}

func (g *fakeGateway) do(op string, userID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := fmt.Sprintf("%s %d", op, userID)
	g.calls = append(g.calls, key)
	return g.fail[key]
}

func (g *fakeGateway) Restrict(_ context.Context, userID int64) error {
	return g.do("restrict", userID)
}

func (g *fakeGateway) Remove(_ context.Context, userID int64) error {
	return g.do("remove", userID)
}

func (g *fakeGateway) Unexclude(_ context.Context, userID int64) error {
	return g.do("unexclude", userID)
}

func (g *fakeGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

type recordingSink struct {
	mu     sync.Mutex
	events []notify.Event
}

func (s *recordingSink) Publish(_ context.Context, e notify.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) Types() []notify.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]notify.EventType, 0, len(s.events))
	for _, e := range s.events {
		types = append(types, e.Type)
	}
	return types
}

func (s *recordingSink) Count(t notify.EventType) int {
	n := 0
	for _, got := range s.Types() {
		if got == t {
			n++
		}
	}
	return n
}

// insertFailingStore accepts reads but fails every restriction write.
type insertFailingStore struct {
	Store
}

func (insertFailingStore) InsertRestricted(context.Context, int64, models.Display) (storage.InsertResult, error) {
	return storage.AlreadyExists, &storage.StorageError{Op: "insert restricted", Err: errors.New("disk I/O error")}
}

func newRepository(t *testing.T) *storage.RestrictionRepository {
	t.Helper()

	db, err := storage.Open(config.DatabaseConfig{
		Driver:   config.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "service.db"),
		LogLevel: "ERROR",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	repo := storage.NewRestrictionRepository(db)
	require.NoError(t, repo.MigrateTable())
	return repo
}

func member(id int64) models.Member {
	return models.Member{
		ID:      id,
		Display: models.Display{Username: fmt.Sprintf("user%d", id), FirstName: "Test"},
	}
}

// restrictedAt records a restriction as if it had been written at the given time.
func restrictedAt(t *testing.T, repo *storage.RestrictionRepository, id int64, at time.Time) {
	t.Helper()
	repo.WithClock(func() time.Time { return at })
	defer repo.WithClock(time.Now)

	result, err := repo.InsertRestricted(context.Background(), id, member(id).Display)
	require.NoError(t, err)
	require.Equal(t, storage.Inserted, result)
}
