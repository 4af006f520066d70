package models

import (
	"fmt"
	"strings"
)

// Display carries the human-readable attributes of a member for notifications.
// Nothing in the lifecycle depends on these values.
type Display struct {
	Username  string `gorm:"size:64"`
	FirstName string `gorm:"size:128"`
	LastName  string `gorm:"size:128"`
}

// FullName joins first and last name, falling back to the username.
func (d Display) FullName() string {
	name := strings.TrimSpace(strings.TrimSpace(d.FirstName) + " " + strings.TrimSpace(d.LastName))
	if name == "" {
		return d.Username
	}
	return name
}

// Handle returns "@username" or an empty string.
func (d Display) Handle() string {
	if d.Username == "" {
		return ""
	}
	return "@" + d.Username
}

// Member is a group member as seen in a join update.
type Member struct {
	ID      int64
	Display Display
	IsBot   bool
}

func (m Member) String() string {
	if handle := m.Display.Handle(); handle != "" {
		return fmt.Sprintf("%d (%s)", m.ID, handle)
	}
	if name := m.Display.FullName(); name != "" {
		return fmt.Sprintf("%d (%s)", m.ID, name)
	}
	return fmt.Sprintf("%d", m.ID)
}
