package bot

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"github.com/smartlime/spam-restrictor-bot/internal/config"
	"github.com/smartlime/spam-restrictor-bot/internal/logger"
	"github.com/smartlime/spam-restrictor-bot/internal/notify"
)

// allowedUpdates are the only update types the bot handles.
var allowedUpdates = []string{"chat_member", "message"}

// BotService represents the Telegram bot service
type BotService struct {
	Bot     *telego.Bot
	Handler *th.BotHandler
}

// Start starts the bot handler, blocking until it is stopped
func (b *BotService) Start() error {
	return b.Handler.Start()
}

// Stop stops the bot handler
func (b *BotService) Stop() error {
	return b.Handler.Stop()
}

// NewBot creates the API client and checks the token.
func NewBot(ctx context.Context, cfg *config.Config) (*telego.Bot, error) {
	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	bot, err := telego.NewBot(cfg.Bot.Token, telego.WithDiscardLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	botUser, err := bot.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bot info: %w", err)
	}
	logger.Infof("Authorized on account %s", botUser.Username)

	return bot, nil
}

// Initialize sets up update delivery. With a webhook endpoint configured updates arrive
// through the returned server; otherwise the bot long-polls and the server only serves
// the debug and metrics endpoints.
func Initialize(ctx context.Context, bot *telego.Bot, cfg *config.Config) (*BotService, *WebhookServer, error) {
	setCommands(ctx, bot, cfg.Notify.Language)

	if cfg.Bot.Webhook.Endpoint != "" {
		// fixed secret derived from the bot token
		secretToken := "secure_webhook_token_" + cfg.Bot.Token[len(cfg.Bot.Token)-6:]

		bh, server, err := SetupWebhook(ctx, bot, cfg.Bot.Webhook, secretToken)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to setup webhook: %w", err)
		}
		return &BotService{Bot: bot, Handler: bh}, server, nil
	}

	// a leftover webhook makes getUpdates fail
	if err := bot.DeleteWebhook(ctx, &telego.DeleteWebhookParams{}); err != nil {
		return nil, nil, fmt.Errorf("failed to delete existing webhook: %w", err)
	}

	updates, err := bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		AllowedUpdates: allowedUpdates,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start long polling: %w", err)
	}
	logger.Info("Receiving updates via long polling")

	bh, err := th.NewBotHandler(bot, updates)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create bot handler: %w", err)
	}

	return &BotService{Bot: bot, Handler: bh}, NewMonitoringServer(bot, cfg.Bot.Webhook), nil
}

// setCommands publishes the command menu
func setCommands(ctx context.Context, bot *telego.Bot, language string) {
	err := bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{
		Commands: []telego.BotCommand{
			{Command: "status", Description: notify.GetTranslation(language, "cmd_desc_status")},
		},
	})
	if err != nil {
		logger.Warningf("Failed to set bot commands: %v", err)
	}
}
