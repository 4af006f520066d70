package handler

import (
	"context"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"github.com/smartlime/spam-restrictor-bot/internal/config"
	"github.com/smartlime/spam-restrictor-bot/internal/models"
	"github.com/smartlime/spam-restrictor-bot/internal/service"
)

// JoinRouter receives members who joined the configured group.
type JoinRouter interface {
	HandleJoin(ctx context.Context, member models.Member) string
}

// StatusSource provides the lifecycle snapshot for /status.
type StatusSource interface {
	Status(ctx context.Context) (service.Status, error)
}

// Handler turns Telegram updates into lifecycle calls.
type Handler struct {
	bot      *telego.Bot
	groupID  int64
	adminID  int64
	language string
	router   JoinRouter
	status   StatusSource
	started  time.Time
}

func New(bot *telego.Bot, cfg *config.Config, router JoinRouter, status StatusSource) *Handler {
	return &Handler{
		bot:      bot,
		groupID:  cfg.Bot.GroupID,
		adminID:  cfg.Bot.AdminUserID,
		language: cfg.Notify.Language,
		router:   router,
		status:   status,
		started:  time.Now(),
	}
}

// SetupMessageHandlers registers the chat member and /status handlers
func (h *Handler) SetupMessageHandlers(bh *th.BotHandler) {
	bh.Handle(func(ctx *th.Context, update telego.Update) error {
		return h.handleChatMemberUpdate(ctx, update)
	}, th.AnyChatMember())

	bh.HandleMessage(func(ctx *th.Context, message telego.Message) error {
		return h.handleStatusCommand(ctx, message)
	}, th.CommandEqual("status"))
}
