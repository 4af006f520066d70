package service

import (
	"context"
	"time"

	"github.com/smartlime/spam-restrictor-bot/internal/models"
	"github.com/smartlime/spam-restrictor-bot/internal/storage"
)

// Store is the lifecycle state the router and sweeper work against.
// storage.RestrictionRepository implements it.
type Store interface {
	InsertRestricted(ctx context.Context, userID int64, display models.Display) (storage.InsertResult, error)
	IsBanned(ctx context.Context, userID int64) (bool, error)
	IsRestricted(ctx context.Context, userID int64) (bool, error)
	PromoteToBanned(ctx context.Context, userID int64, display models.Display, reason string) (bool, error)
	ListExpired(ctx context.Context, grace time.Duration) ([]models.RestrictedUser, error)
	Stats(ctx context.Context) (storage.Stats, error)
}

var _ Store = (*storage.RestrictionRepository)(nil)
