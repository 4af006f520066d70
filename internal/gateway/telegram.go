package gateway

import (
	"context"

	"github.com/mymmrac/telego"

	"github.com/smartlime/spam-restrictor-bot/internal/logger"
)

// TelegramGateway moderates one Telegram group through the Bot API.
type TelegramGateway struct {
	bot     *telego.Bot
	groupID int64
}

// NewTelegramGateway binds the gateway to a bot and the moderated group.
func NewTelegramGateway(bot *telego.Bot, groupID int64) *TelegramGateway {
	return &TelegramGateway{bot: bot, groupID: groupID}
}

func (g *TelegramGateway) Restrict(ctx context.Context, userID int64) error {
	err := g.bot.RestrictChatMember(ctx, &telego.RestrictChatMemberParams{
		ChatID:      telego.ChatID{ID: g.groupID},
		UserID:      userID,
		Permissions: DeniedPermissions(),
		UntilDate:   0, // forever
	})
	if err != nil {
		return newError("restrict", userID, err)
	}
	logger.Debugf("Restricted user %d in chat %d", userID, g.groupID)
	return nil
}

func (g *TelegramGateway) Remove(ctx context.Context, userID int64) error {
	err := g.bot.BanChatMember(ctx, &telego.BanChatMemberParams{
		ChatID: telego.ChatID{ID: g.groupID},
		UserID: userID,
	})
	if err != nil {
		return newError("remove", userID, err)
	}
	logger.Debugf("Banned user %d in chat %d", userID, g.groupID)
	return nil
}

func (g *TelegramGateway) Unexclude(ctx context.Context, userID int64) error {
	err := g.bot.UnbanChatMember(ctx, &telego.UnbanChatMemberParams{
		ChatID:       telego.ChatID{ID: g.groupID},
		UserID:       userID,
		OnlyIfBanned: true,
	})
	if err != nil {
		return newError("unexclude", userID, err)
	}
	logger.Debugf("Unbanned user %d in chat %d", userID, g.groupID)
	return nil
}
