package models

import "time"

// BannedUser stores members removed from the group. Rows are never deleted; a repeated ban
// overwrites the display attributes, reason and time.
type BannedUser struct {
	UserID   int64     `gorm:"primaryKey;autoIncrement:false"`
	Display  Display   `gorm:"embedded"`
	BannedAt time.Time `gorm:"not null"`
	Reason   string    `gorm:"type:text"`
}

// TableName - set the table name.
func (BannedUser) TableName() string {
	return "banned_users"
}

// Ban reasons
const (
	ReasonRestrictionExpired = "restriction expired"
)
