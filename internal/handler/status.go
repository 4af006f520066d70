package handler

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mymmrac/telego"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/smartlime/spam-restrictor-bot/internal/logger"
	"github.com/smartlime/spam-restrictor-bot/internal/notify"
	"github.com/smartlime/spam-restrictor-bot/internal/service"
)

// update counters
var (
	totalChatMemberUpdates int64
	totalJoins             int64
	totalStatusCommands    int64
)

func incrementCounter(counter *int64) {
	atomic.AddInt64(counter, 1)
}

const statusTimeFormat = "02.01.2006 15:04:05"

// processInfo is the runtime part of the status report.
type processInfo struct {
	Uptime   time.Duration
	MemoryMB uint64
	Joins    int64
}

func (h *Handler) handleStatusCommand(ctx context.Context, message telego.Message) error {
	incrementCounter(&totalStatusCommands)

	if h.adminID == 0 || message.From == nil || message.From.ID != h.adminID {
		return nil
	}

	status, err := h.status.Status(ctx)
	if err != nil {
		logger.Errorf("Error building status: %v", err)
		return nil
	}

	text := formatStatus(h.language, message.Chat.ID, status, h.processInfo(), time.Now())
	_, err = h.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: message.Chat.ID},
		Text:      text,
		ParseMode: telego.ModeHTML,
		ReplyParameters: &telego.ReplyParameters{
			MessageID: message.MessageID,
		},
	})
	if err != nil {
		logger.Errorf("Error sending status to chat %d: %v", message.Chat.ID, err)
	}
	return nil
}

func (h *Handler) processInfo() processInfo {
	return processInfo{
		Uptime:   time.Since(h.started),
		MemoryMB: residentMemoryMB(),
		Joins:    atomic.LoadInt64(&totalJoins),
	}
}

// residentMemoryMB reads the process RSS, falling back to the Go runtime's view.
func residentMemoryMB() uint64 {
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := p.MemoryInfo(); err == nil {
			return bToMb(info.RSS)
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return bToMb(m.Sys)
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}

func formatStatus(lang string, chatID int64, status service.Status, proc processInfo, now time.Time) string {
	t := func(key string) string { return notify.GetTranslation(lang, key) }

	last := t("check_never")
	if !status.LastSweep.IsZero() {
		last = status.LastSweep.Format(statusTimeFormat)
	}

	next := t("check_unscheduled")
	if !status.NextSweep.IsZero() {
		minutes := int(status.NextSweep.Sub(now).Minutes())
		if minutes < 0 {
			minutes = 0
		}
		next = fmt.Sprintf(t("next_check_in"), status.NextSweep.Format(statusTimeFormat), minutes)
	}

	lines := []string{
		t("status_title"),
		"",
		fmt.Sprintf(t("field_chat"), chatID),
		fmt.Sprintf(t("field_restricted"), status.Stats.RestrictedUsers),
		fmt.Sprintf(t("field_banned"), status.Stats.BannedUsers),
		"",
		fmt.Sprintf(t("field_last_check"), last),
		fmt.Sprintf(t("field_next_check"), next),
		"",
		fmt.Sprintf(t("field_period"), int(status.GracePeriod.Hours()/24)),
		fmt.Sprintf(t("field_interval"), int(status.CheckInterval.Minutes())),
		"",
		fmt.Sprintf(t("field_uptime"), proc.Uptime.Truncate(time.Second)),
		fmt.Sprintf(t("field_memory"), proc.MemoryMB),
		fmt.Sprintf(t("field_joins"), proc.Joins),
	}
	return strings.Join(lines, "\n")
}

// GetProcessingStats returns the update counters and runtime figures for the debug endpoint.
func GetProcessingStats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"total_chat_member_updates": atomic.LoadInt64(&totalChatMemberUpdates),
		"total_joins":               atomic.LoadInt64(&totalJoins),
		"total_status_commands":     atomic.LoadInt64(&totalStatusCommands),
		"memory_usage_mb":           bToMb(m.Alloc),
		"sys_memory_mb":             bToMb(m.Sys),
		"gc_runs":                   m.NumGC,
		"goroutines":                runtime.NumGoroutine(),
	}
}
