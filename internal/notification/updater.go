// internal/notification/updater.go
package notification

import (
	"context"
	stderrors "errors"

	"venue-routing/internal/common/errors"
	"venue-routing/internal/common/logger"
	"venue-routing/internal/common/telegram"
	"venue-routing/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var errBotDisabled = stderrors.New("telegram bot disabled")

// MessageUpdater talks back to reviewers: callback acks, in-place card
// edits and follow-up posts.
type MessageUpdater struct {
	bot    telegram.Bot
	logger logger.Logger
}

func NewMessageUpdater(bot telegram.Bot, log logger.Logger) *MessageUpdater {
	return &MessageUpdater{
		bot:    bot,
		logger: log.WithFields(map[string]interface{}{"component": "message-updater"}),
	}
}

// Ack answers a callback query so the reviewer's client stops spinning.
func (u *MessageUpdater) Ack(ctx context.Context, callbackID, text string) error {
	if u.bot == nil {
		return errors.NewNotificationSendFailedError(channelTelegram, errBotDisabled)
	}
	if _, err := u.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return errors.NewNotificationSendFailedError(channelTelegram, err)
	}
	return nil
}

// EditCard replaces the text of a posted card. The keyboard is dropped.
func (u *MessageUpdater) EditCard(ctx context.Context, handle models.MessageHandle, text string) error {
	if u.bot == nil {
		return errors.NewNotificationSendFailedError(channelTelegram, errBotDisabled)
	}
	edit := tgbotapi.NewEditMessageText(handle.ChatID, handle.MessageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := u.bot.Request(edit); err != nil {
		return errors.NewNotificationSendFailedError(channelTelegram, err)
	}
	return nil
}

func (u *MessageUpdater) Post(ctx context.Context, chatID int64, text string) error {
	if u.bot == nil {
		return errors.NewNotificationSendFailedError(channelTelegram, errBotDisabled)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := u.bot.Send(msg); err != nil {
		return errors.NewNotificationSendFailedError(channelTelegram, err)
	}
	return nil
}
