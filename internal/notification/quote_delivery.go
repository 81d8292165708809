// internal/notification/quote_delivery.go
package notification

import (
	"context"
	"fmt"
	"html"
	"strings"

	"venue-routing/internal/common/errors"
	"venue-routing/internal/common/logger"
	"venue-routing/internal/common/metrics"
	"venue-routing/internal/common/validation"
	"venue-routing/internal/models"
)

const (
	channelEmail = "email"
	channelSMS   = "sms"
)

// EmailClient is satisfied by aws.SESClient.
type EmailClient interface {
	SendEmail(ctx context.Context, to, subject, htmlBody, textBody string) (string, error)
}

// SMSClient is satisfied by aws.SNSClient.
type SMSClient interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

// EmailSender mails a generated quote to the requester. A nil client
// disables the channel.
type EmailSender struct {
	client EmailClient
	logger logger.Logger
}

func NewEmailSender(client EmailClient, log logger.Logger) *EmailSender {
	return &EmailSender{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "email-sender"}),
	}
}

func (s *EmailSender) SendQuote(ctx context.Context, inq *models.EventInquiry, q *models.QuoteBreakdown) error {
	if s.client == nil {
		metrics.Notifications.WithLabelValues(channelEmail, "skipped").Inc()
		return nil
	}
	if !validation.ValidateEmail(inq.RequesterEmail) {
		metrics.Notifications.WithLabelValues(channelEmail, "skipped").Inc()
		s.logger.Warn("requester email invalid, quote not mailed", map[string]interface{}{"inquiryId": inq.ID})
		return nil
	}

	subject := fmt.Sprintf("Your quote for %s at %s", orDash(inq.EventName), q.VenueName)
	msgID, err := s.client.SendEmail(ctx, inq.RequesterEmail, subject, quoteHTML(inq, q), quoteText(inq, q))
	if err != nil {
		metrics.Notifications.WithLabelValues(channelEmail, "failed").Inc()
		return errors.NewNotificationSendFailedError(channelEmail, err)
	}

	metrics.Notifications.WithLabelValues(channelEmail, "sent").Inc()
	s.logger.Info("quote email sent", map[string]interface{}{
		"inquiryId": inq.ID,
		"messageId": msgID,
	})
	return nil
}

// SMSSender texts a short quote notice. Requesters without a phone number
// are skipped.
type SMSSender struct {
	client SMSClient
	logger logger.Logger
}

func NewSMSSender(client SMSClient, log logger.Logger) *SMSSender {
	return &SMSSender{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "sms-sender"}),
	}
}

func (s *SMSSender) SendQuote(ctx context.Context, inq *models.EventInquiry, q *models.QuoteBreakdown) error {
	if s.client == nil || !validation.ValidatePhone(inq.RequesterPhone) {
		metrics.Notifications.WithLabelValues(channelSMS, "skipped").Inc()
		return nil
	}

	text := fmt.Sprintf("Your quote for %s at %s: %s %.2f, valid until %s. Details sent to %s.",
		orDash(inq.EventName), q.VenueName, q.Currency, q.Total, q.ValidUntil, inq.RequesterEmail)
	msgID, err := s.client.SendSMS(ctx, inq.RequesterPhone, text)
	if err != nil {
		metrics.Notifications.WithLabelValues(channelSMS, "failed").Inc()
		return errors.NewNotificationSendFailedError(channelSMS, err)
	}

	metrics.Notifications.WithLabelValues(channelSMS, "sent").Inc()
	s.logger.Info("quote sms sent", map[string]interface{}{
		"inquiryId": inq.ID,
		"messageId": msgID,
	})
	return nil
}

func quoteText(inq *models.EventInquiry, q *models.QuoteBreakdown) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", inq.RequesterName)
	fmt.Fprintf(&b, "Here is your quote for %s at %s.\n\n", orDash(inq.EventName), q.VenueName)
	for _, it := range q.LineItems {
		fmt.Fprintf(&b, "  %s: %s %.2f\n", it.Label, q.Currency, it.Amount)
	}
	if q.SeasonalMultiplier != 1 {
		fmt.Fprintf(&b, "  (seasonal rate x%.2f applied to venue hire)\n", q.SeasonalMultiplier)
	}
	fmt.Fprintf(&b, "\nSubtotal: %s %.2f\nTax: %s %.2f\nTotal: %s %.2f\n", q.Currency, q.Subtotal, q.Currency, q.Tax, q.Currency, q.Total)
	if q.SecurityDeposit > 0 {
		fmt.Fprintf(&b, "Refundable security deposit: %s %.2f\n", q.Currency, q.SecurityDeposit)
	}
	fmt.Fprintf(&b, "\nThis quote is valid until %s. Reference: %s\n", q.ValidUntil, inq.ShortID())
	return b.String()
}

func quoteHTML(inq *models.EventInquiry, q *models.QuoteBreakdown) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p>", html.EscapeString(inq.RequesterName))
	fmt.Fprintf(&b, "<p>Here is your quote for <b>%s</b> at <b>%s</b>.</p><table>",
		html.EscapeString(orDash(inq.EventName)), html.EscapeString(q.VenueName))
	for _, it := range q.LineItems {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s %.2f</td></tr>", html.EscapeString(it.Label), q.Currency, it.Amount)
	}
	fmt.Fprintf(&b, "<tr><td>Subtotal</td><td>%s %.2f</td></tr>", q.Currency, q.Subtotal)
	fmt.Fprintf(&b, "<tr><td>Tax</td><td>%s %.2f</td></tr>", q.Currency, q.Tax)
	fmt.Fprintf(&b, "<tr><td><b>Total</b></td><td><b>%s %.2f</b></td></tr></table>", q.Currency, q.Total)
	if q.SecurityDeposit > 0 {
		fmt.Fprintf(&b, "<p>Refundable security deposit: %s %.2f</p>", q.Currency, q.SecurityDeposit)
	}
	fmt.Fprintf(&b, "<p>Valid until %s. Reference: %s</p>", q.ValidUntil, inq.ShortID())
	return b.String()
}
