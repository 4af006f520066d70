package handler

import (
	"context"

	"github.com/mymmrac/telego"

	"github.com/smartlime/spam-restrictor-bot/internal/crash"
	"github.com/smartlime/spam-restrictor-bot/internal/logger"
	"github.com/smartlime/spam-restrictor-bot/internal/models"
)

func (h *Handler) handleChatMemberUpdate(ctx context.Context, update telego.Update) error {
	defer crash.RecoverWithStack("chat-member-update")
	incrementCounter(&totalChatMemberUpdates)

	if update.ChatMember == nil {
		return nil
	}

	member, ok := joinedMember(*update.ChatMember, h.groupID)
	if !ok {
		return nil
	}

	incrementCounter(&totalJoins)
	outcome := h.router.HandleJoin(ctx, member)
	logger.Debugf("Join of %s handled: %s", member, outcome)
	return nil
}

// joinedMember reports whether the update is someone entering groupID and returns them.
// Status changes of people who are already in the group are not joins.
func joinedMember(update telego.ChatMemberUpdated, groupID int64) (models.Member, bool) {
	if update.Chat.ID != groupID {
		return models.Member{}, false
	}
	if update.NewChatMember == nil || !update.NewChatMember.MemberIsMember() {
		return models.Member{}, false
	}
	if update.OldChatMember != nil && update.OldChatMember.MemberIsMember() {
		return models.Member{}, false
	}

	return memberFromUser(update.NewChatMember.MemberUser()), true
}

func memberFromUser(user telego.User) models.Member {
	return models.Member{
		ID: user.ID,
		Display: models.Display{
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
		IsBot: user.IsBot,
	}
}
