package models

import "time"

// RestrictedUser exists exactly while a member is restricted. It is never updated,
// only created on the first qualifying join and deleted on promotion to banned.
type RestrictedUser struct {
	UserID       int64     `gorm:"primaryKey;autoIncrement:false"`
	Display      Display   `gorm:"embedded"`
	JoinedAt     time.Time `gorm:"not null"`
	RestrictedAt time.Time `gorm:"not null;index"`
}

// TableName - set the table name.
func (RestrictedUser) TableName() string {
	return "restricted_users"
}

// Member rebuilds the member identity from the stored row.
func (r RestrictedUser) Member() Member {
	return Member{ID: r.UserID, Display: r.Display}
}
