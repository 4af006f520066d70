package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartlime/spam-restrictor-bot/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InsertResult tells the caller whether InsertRestricted created a row.
type InsertResult int

const (
	// Inserted means a new restriction row was written.
	Inserted InsertResult = iota
	// AlreadyExists means the member was already restricted; nothing changed.
	AlreadyExists
	// AlreadyBanned means the member is in the ban table; no restriction row was written.
	AlreadyBanned
)

func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case AlreadyExists:
		return "already_exists"
	case AlreadyBanned:
		return "already_banned"
	}
	return fmt.Sprintf("InsertResult(%d)", int(r))
}

// StorageError reports a failed database operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// Stats holds the member counts shown in status reports.
type Stats struct {
	RestrictedUsers int64
	BannedUsers     int64
}

// RestrictionRepository is the only place lifecycle state is read or written.
type RestrictionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRestrictionRepository creates a new RestrictionRepository
func NewRestrictionRepository(db *gorm.DB) *RestrictionRepository {
	return &RestrictionRepository{db: db, now: time.Now}
}

// WithClock replaces the wall clock, for tests.
func (r *RestrictionRepository) WithClock(now func() time.Time) *RestrictionRepository {
	r.now = now
	return r
}

// MigrateTable ensures both lifecycle tables exist
func (r *RestrictionRepository) MigrateTable() error {
	return wrap("migrate", r.db.AutoMigrate(&models.RestrictedUser{}, &models.BannedUser{}))
}

// timestamp returns the current time in UTC so stored values compare correctly on every driver.
func (r *RestrictionRepository) timestamp() time.Time {
	return r.now().UTC()
}

// InsertRestricted records a newly restricted member unless a row already exists for the id.
// Concurrent inserts for the same id leave exactly one row.
func (r *RestrictionRepository) InsertRestricted(ctx context.Context, userID int64, display models.Display) (InsertResult, error) {
	result := Inserted
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		banned, err := exists(tx, &models.BannedUser{}, userID)
		if err != nil {
			return err
		}
		if banned {
			result = AlreadyBanned
			return nil
		}

		now := r.timestamp()
		record := &models.RestrictedUser{
			UserID:       userID,
			Display:      display,
			JoinedAt:     now,
			RestrictedAt: now,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(record)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			result = AlreadyExists
		}
		return nil
	})
	if err != nil {
		return AlreadyExists, wrap("insert restricted", err)
	}
	return result, nil
}

// IsBanned reports whether the member has a ban row.
func (r *RestrictionRepository) IsBanned(ctx context.Context, userID int64) (bool, error) {
	ok, err := exists(r.db.WithContext(ctx), &models.BannedUser{}, userID)
	return ok, wrap("is banned", err)
}

// IsRestricted reports whether the member has a restriction row.
func (r *RestrictionRepository) IsRestricted(ctx context.Context, userID int64) (bool, error) {
	ok, err := exists(r.db.WithContext(ctx), &models.RestrictedUser{}, userID)
	return ok, wrap("is restricted", err)
}

// PromoteToBanned writes the ban row and deletes the restriction row in one transaction.
// It returns whether a restriction row existed.
func (r *RestrictionRepository) PromoteToBanned(ctx context.Context, userID int64, display models.Display, reason string) (bool, error) {
	var existed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ban := &models.BannedUser{
			UserID:   userID,
			Display:  display,
			BannedAt: r.timestamp(),
			Reason:   reason,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "last_name", "banned_at", "reason"}),
		}).Create(ban).Error; err != nil {
			return err
		}

		res := tx.Where("user_id = ?", userID).Delete(&models.RestrictedUser{})
		if res.Error != nil {
			return res.Error
		}
		existed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, wrap("promote to banned", err)
	}
	return existed, nil
}

// ListExpired returns every restriction older than the grace period.
func (r *RestrictionRepository) ListExpired(ctx context.Context, grace time.Duration) ([]models.RestrictedUser, error) {
	cutoff := r.timestamp().Add(-grace)
	var records []models.RestrictedUser
	err := r.db.WithContext(ctx).
		Where("restricted_at <= ?", cutoff).
		Find(&records).Error
	if err != nil {
		return nil, wrap("list expired", err)
	}
	return records, nil
}

// GetRestricted loads one restriction row, nil when absent.
func (r *RestrictionRepository) GetRestricted(ctx context.Context, userID int64) (*models.RestrictedUser, error) {
	var record models.RestrictedUser
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get restricted", err)
	}
	return &record, nil
}

// GetBanned loads one ban row, nil when absent.
func (r *RestrictionRepository) GetBanned(ctx context.Context, userID int64) (*models.BannedUser, error) {
	var record models.BannedUser
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get banned", err)
	}
	return &record, nil
}

// Stats counts rows in both tables.
func (r *RestrictionRepository) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.RestrictedUser{}).Count(&stats.RestrictedUsers).Error; err != nil {
		return Stats{}, wrap("count restricted", err)
	}
	if err := db.Model(&models.BannedUser{}).Count(&stats.BannedUsers).Error; err != nil {
		return Stats{}, wrap("count banned", err)
	}
	return stats, nil
}

func exists(db *gorm.DB, model interface{}, userID int64) (bool, error) {
	var count int64
	if err := db.Model(model).Where("user_id = ?", userID).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
