package notify

import (
	"context"

	"github.com/mymmrac/telego"

	"github.com/smartlime/spam-restrictor-bot/internal/logger"
)

// TelegramSink sends formatted events to the administrator's private chat.
type TelegramSink struct {
	bot      *telego.Bot
	adminID  int64
	language string
}

// NewTelegramSink returns a sink for adminID, or nil when no admin is configured.
func NewTelegramSink(bot *telego.Bot, adminID int64, language string) *TelegramSink {
	if adminID == 0 {
		return nil
	}
	return &TelegramSink{bot: bot, adminID: adminID, language: language}
}

func (s *TelegramSink) Publish(ctx context.Context, e Event) {
	_, err := s.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: s.adminID},
		Text:      Format(s.language, e),
		ParseMode: telego.ModeHTML,
	})
	if err != nil {
		logger.Errorf("Error sending %s notification to admin %d: %v", e.Type, s.adminID, err)
		return
	}
	logger.Debugf("Sent %s notification to admin %d", e.Type, s.adminID)
}
