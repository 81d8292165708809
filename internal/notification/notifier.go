// internal/notification/notifier.go
package notification

import (
	"context"

	"venue-routing/internal/common/errors"
	"venue-routing/internal/common/logger"
	"venue-routing/internal/common/metrics"
	"venue-routing/internal/common/telegram"
	"venue-routing/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const channelTelegram = "telegram"

// ReviewStore records the outcome of posting a review card.
type ReviewStore interface {
	MarkReviewing(ctx context.Context, id string, handle models.MessageHandle) (bool, error)
	MarkPushFailed(ctx context.Context, id, notes string) (bool, error)
}

// InquiryNotifier posts the review card for an inquiry to the reviewers'
// chat. A nil bot means the channel is disabled; the inquiry is then marked
// push_failed like any other delivery failure.
type InquiryNotifier struct {
	bot    telegram.Bot
	chatID int64
	store  ReviewStore
	logger logger.Logger
}

func NewInquiryNotifier(bot telegram.Bot, chatID int64, store ReviewStore, log logger.Logger) *InquiryNotifier {
	return &InquiryNotifier{
		bot:    bot,
		chatID: chatID,
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "inquiry-notifier"}),
	}
}

// Notify posts the card and persists where it landed. It reports whether
// the card was delivered; failures are recorded on the inquiry, not returned.
func (n *InquiryNotifier) Notify(ctx context.Context, inq *models.EventInquiry) (models.MessageHandle, bool) {
	handle, err := n.post(inq)
	if err != nil {
		metrics.Notifications.WithLabelValues(channelTelegram, "failed").Inc()
		n.logger.Error("review card not delivered", map[string]interface{}{
			"inquiryId": inq.ID,
			"error":     err,
		})
		if _, serr := n.store.MarkPushFailed(ctx, inq.ID, err.Error()); serr != nil {
			n.logger.Error("failed to record push failure", map[string]interface{}{
				"inquiryId": inq.ID,
				"error":     serr,
			})
		}
		return models.MessageHandle{}, false
	}

	metrics.Notifications.WithLabelValues(channelTelegram, "sent").Inc()
	ok, err := n.store.MarkReviewing(ctx, inq.ID, handle)
	if err != nil {
		n.logger.Error("failed to persist card handle", map[string]interface{}{
			"inquiryId": inq.ID,
			"error":     err,
		})
	} else if !ok {
		n.logger.Warn("card handle not persisted: inquiry moved on", map[string]interface{}{
			"inquiryId": inq.ID,
		})
	}

	n.logger.Info("review card posted", map[string]interface{}{
		"inquiryId": inq.ID,
		"chatId":    handle.ChatID,
		"messageId": handle.MessageID,
	})
	return handle, true
}

func (n *InquiryNotifier) post(inq *models.EventInquiry) (models.MessageHandle, error) {
	if n.bot == nil {
		return models.MessageHandle{}, errors.NewNotificationSendFailedError(channelTelegram, errBotDisabled)
	}

	msg := tgbotapi.NewMessage(n.chatID, RenderCard(inq))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = Keyboard(inq.ID)

	sent, err := n.bot.Send(msg)
	if err != nil {
		return models.MessageHandle{}, errors.NewNotificationSendFailedError(channelTelegram, err)
	}

	chatID := n.chatID
	if sent.Chat != nil {
		chatID = sent.Chat.ID
	}
	return models.MessageHandle{ChatID: chatID, MessageID: sent.MessageID}, nil
}
