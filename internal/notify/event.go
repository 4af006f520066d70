package notify

import (
	"time"

	"github.com/smartlime/spam-restrictor-bot/internal/models"
)

// EventType identifies a lifecycle transition or failure.
type EventType int

const (
	// EventRestricted: a new member was restricted and recorded.
	EventRestricted EventType = iota
	// EventRestrictFailed: the restriction command failed, the member is unrestricted.
	EventRestrictFailed
	// EventRejoinBlocked: a banned member joined again and was removed.
	EventRejoinBlocked
	// EventRemoveFailed: removing a returning banned member failed.
	EventRemoveFailed
	// EventExpired: a restriction expired and the member was removed and banned.
	EventExpired
	// EventExpireFailed: removing an expired member failed, the next sweep retries.
	EventExpireFailed
	// EventStorageFailed: the store could not be read or written.
	EventStorageFailed
	// EventSweepIdle: a sweep found nothing to do.
	EventSweepIdle
	// EventStartup: the bot started.
	EventStartup
)

var eventNames = map[EventType]string{
	EventRestricted:     "restricted",
	EventRestrictFailed: "restrict_failed",
	EventRejoinBlocked:  "rejoin_blocked",
	EventRemoveFailed:   "remove_failed",
	EventExpired:        "expired",
	EventExpireFailed:   "expire_failed",
	EventStorageFailed:  "storage_failed",
	EventSweepIdle:      "sweep_idle",
	EventStartup:        "startup",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsFailure reports whether the event describes an error.
func (t EventType) IsFailure() bool {
	switch t {
	case EventRestrictFailed, EventRemoveFailed, EventExpireFailed, EventStorageFailed:
		return true
	}
	return false
}

// Event is published by the lifecycle for every transition and every failure.
type Event struct {
	Type   EventType
	Member models.Member
	Err    error
	At     time.Time

	// GracePeriod is set on restriction and expiry events.
	GracePeriod time.Duration

	// Startup details
	GroupID         int64
	RestrictedUsers int64
	BannedUsers     int64
	CheckInterval   time.Duration
}
