package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegoapi"
)

// Gateway issues moderation commands for the moderated group.
type Gateway interface {
	// Restrict denies every posting capability while keeping the member in the group.
	Restrict(ctx context.Context, userID int64) error
	// Remove excludes the member from the group.
	Remove(ctx context.Context, userID int64) error
	// Unexclude lifts the platform exclusion so the member may join again.
	Unexclude(ctx context.Context, userID int64) error
}

// ErrorKind separates errors worth retrying from the rest. The lifecycle treats both the same.
type ErrorKind int

const (
	Transient ErrorKind = iota
	Permanent
)

func (k ErrorKind) String() string {
	if k == Permanent {
		return "permanent"
	}
	return "transient"
}

// Error is returned by every Gateway call that failed.
type Error struct {
	Kind   ErrorKind
	Op     string
	UserID int64
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s user %d: %s: %v", e.Op, e.UserID, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail is the platform's description of the failure.
func (e *Error) Detail() string {
	var apiErr *telegoapi.Error
	if errors.As(e.Err, &apiErr) {
		return apiErr.Description
	}
	return e.Err.Error()
}

// Classify decides whether a failed call could succeed later.
func Classify(err error) ErrorKind {
	var apiErr *telegoapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode == 429 || apiErr.ErrorCode >= 500 {
			return Transient
		}
		return Permanent
	}
	// network failures, timeouts and anything unrecognized
	return Transient
}

func newError(op string, userID int64, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: Classify(err), Op: op, UserID: userID, Err: err}
}

// DeniedPermissions sets every capability flag to false.
func DeniedPermissions() telego.ChatPermissions {
	falseValue := false
	return telego.ChatPermissions{
		CanSendMessages:       &falseValue,
		CanSendAudios:         &falseValue,
		CanSendDocuments:      &falseValue,
		CanSendPhotos:         &falseValue,
		CanSendVideos:         &falseValue,
		CanSendVideoNotes:     &falseValue,
		CanSendVoiceNotes:     &falseValue,
		CanSendPolls:          &falseValue,
		CanSendOtherMessages:  &falseValue,
		CanAddWebPagePreviews: &falseValue,
		CanChangeInfo:         &falseValue,
		CanInviteUsers:        &falseValue,
		CanPinMessages:        &falseValue,
		CanManageTopics:       &falseValue,
	}
}
