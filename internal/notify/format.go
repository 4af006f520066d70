package notify

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/smartlime/spam-restrictor-bot/internal/gateway"
	"github.com/smartlime/spam-restrictor-bot/internal/models"
)

// Format renders an event as an HTML message for the admin chat.
func Format(lang string, e Event) string {
	t := func(key string) string { return GetTranslation(lang, key) }

	var lines []string
	add := func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	switch e.Type {
	case EventRestricted:
		add(t("restricted_title"))
		lines = append(lines, "")
		add(t("field_id"), e.Member.ID)
		add(t("field_name"), fullName(lang, e.Member.Display))
		add(t("field_username"), handle(lang, e.Member.Display))
		add(t("field_removal_in"), days(e.GracePeriod))

	case EventRestrictFailed:
		add(t("restrict_failed_title"))
		lines = append(lines, "")
		add(t("field_id"), e.Member.ID)
		add(t("field_name"), fullName(lang, e.Member.Display))
		add(t("field_error"), errorText(e.Err))

	case EventRejoinBlocked:
		add(t("rejoin_blocked_title"))
		lines = append(lines, "")
		add(t("field_id"), e.Member.ID)
		add(t("field_username"), handle(lang, e.Member.Display))
		add(t("field_reason"), t("reason_previously_removed"))

	case EventRemoveFailed:
		add(t("remove_failed_title"))
		lines = append(lines, "")
		add(t("field_id"), e.Member.ID)
		add(t("field_error"), errorText(e.Err))

	case EventExpired:
		add(t("expired_title"))
		lines = append(lines, "")
		add(t("field_id"), e.Member.ID)
		add(t("field_username"), handle(lang, e.Member.Display))
		add(t("field_reason"), fmt.Sprintf(t("reason_expired"), days(e.GracePeriod)))

	case EventExpireFailed:
		add(t("expire_failed_title"))
		lines = append(lines, "")
		add(t("field_id"), e.Member.ID)
		add(t("field_username"), handle(lang, e.Member.Display))
		add(t("field_error"), errorText(e.Err))

	case EventStorageFailed:
		add(t("storage_failed_title"))
		lines = append(lines, "")
		if e.Member.ID != 0 {
			add(t("field_id"), e.Member.ID)
		}
		add(t("field_error"), errorText(e.Err))

	case EventSweepIdle:
		add(t("sweep_idle_title"))
		lines = append(lines, "")
		add(t("sweep_idle_body"))

	case EventStartup:
		add(t("startup_title"))
		lines = append(lines, "")
		add(t("field_group"), e.GroupID)
		add(t("field_restricted"), e.RestrictedUsers)
		add(t("field_banned"), e.BannedUsers)
		add(t("field_period"), days(e.GracePeriod))
		add(t("field_interval"), int(e.CheckInterval/time.Minute))

	default:
		add("%s", html.EscapeString(e.Type.String()))
	}

	return strings.Join(lines, "\n")
}

func days(d time.Duration) int {
	return int(d / (24 * time.Hour))
}

func fullName(lang string, d models.Display) string {
	name := strings.TrimSpace(d.FirstName + " " + d.LastName)
	if name == "" {
		return GetTranslation(lang, "name_missing")
	}
	return html.EscapeString(name)
}

func handle(lang string, d models.Display) string {
	if d.Username == "" {
		return GetTranslation(lang, "username_missing")
	}
	return "@" + html.EscapeString(d.Username)
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		return html.EscapeString(gwErr.Detail())
	}
	return html.EscapeString(err.Error())
}
