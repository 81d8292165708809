// internal/callback/dispatcher.go
package callback

import (
	"context"
	"encoding/json"
	"fmt"

	"venue-routing/internal/common/errors"
	"venue-routing/internal/common/logger"
	"venue-routing/internal/common/metrics"
	"venue-routing/internal/models"
	"venue-routing/internal/notification"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Acknowledgement texts shown to the reviewer.
const (
	AckNotFound       = "Inquiry not found"
	AckAlreadyQuoted  = "Quote already generated!"
	AckGenerating     = "Generating quote..."
	AckManual         = "Manual quote requested"
	AckNotReviewable  = "Inquiry is no longer awaiting review"
	AckRetry          = "Something went wrong, please try again"
	AckUnsupported    = "Unsupported action"
	MessageQuoted     = "inquiry-quoted"
	manualReviewNotes = "Manual quote requested by reviewer"
	noPricingNotes    = "No automatic pricing available"
)

type InquiryStore interface {
	Get(ctx context.Context, id string) (*models.EventInquiry, error)
	SaveQuote(ctx context.Context, id string, quote json.RawMessage) (bool, error)
	MarkManualReview(ctx context.Context, id, notes string, from []models.InquiryStatus) (bool, error)
}

type Claimer interface {
	Claim(ctx context.Context, inquiryID string) (bool, error)
}

type QuoteEngine interface {
	Generate(ctx context.Context, inq *models.EventInquiry) (*models.QuoteBreakdown, error)
}

type Messenger interface {
	Ack(ctx context.Context, callbackID, text string) error
	EditCard(ctx context.Context, handle models.MessageHandle, text string) error
	Post(ctx context.Context, chatID int64, text string) error
}

type QuoteSender interface {
	SendQuote(ctx context.Context, inq *models.EventInquiry, q *models.QuoteBreakdown) error
}

// Publisher correlates a workflow message; camunda.Client implements it.
type Publisher interface {
	PublishMessage(ctx context.Context, name, correlationKey string, variables map[string]interface{}) error
}

// Dependencies wires the dispatcher. SMS, Publisher, Deduper and Tracer are
// optional.
type Dependencies struct {
	Store     InquiryStore
	Claims    Claimer
	Quotes    QuoteEngine
	Messages  Messenger
	Email     QuoteSender
	SMS       QuoteSender
	Publisher Publisher
	Deduper   *Deduper
	Tracer    trace.Tracer
	Logger    logger.Logger
}

// Dispatcher turns reviewer button presses into state changes. Every path
// ends in an acknowledgement.
type Dispatcher struct {
	deps         Dependencies
	reviewChatID int64
	logger       logger.Logger
}

func NewDispatcher(deps Dependencies, reviewChatID int64) *Dispatcher {
	if deps.Tracer == nil {
		deps.Tracer = otel.Tracer("venue-routing/callback")
	}
	return &Dispatcher{
		deps:         deps,
		reviewChatID: reviewChatID,
		logger:       deps.Logger.WithFields(map[string]interface{}{"component": "callback-dispatcher"}),
	}
}

// HandleCallback matches telegram.CallbackHandler.
func (d *Dispatcher) HandleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	ctx, span := d.deps.Tracer.Start(ctx, "callback.handle")
	defer span.End()
	log := logger.WithSpan(ctx, d.logger)

	if !d.deps.Deduper.First(ctx, q.ID) {
		metrics.Callbacks.WithLabelValues("any", "duplicate").Inc()
		log.Info("duplicate callback ignored", map[string]interface{}{"callbackId": q.ID})
		return
	}

	action, inquiryID, err := ParseData(q.Data)
	if err != nil {
		metrics.Callbacks.WithLabelValues("unknown", "invalid").Inc()
		log.Warn("invalid callback payload", map[string]interface{}{
			"callbackId": q.ID,
			"data":       q.Data,
		})
		span.SetStatus(codes.Error, "invalid payload")
		d.ack(ctx, log, q.ID, AckUnsupported)
		return
	}
	span.SetAttributes(
		attribute.String("callback.action", action),
		attribute.String("inquiry.id", inquiryID),
	)

	chatID := d.reviewChatID
	if q.Message != nil && q.Message.Chat != nil {
		chatID = q.Message.Chat.ID
	}

	var result string
	switch action {
	case notification.ActionGenerateQuote:
		result = d.HandleGenerateQuote(ctx, q.ID, inquiryID)
	case notification.ActionManualQuote:
		result = d.HandleManualQuote(ctx, q.ID, inquiryID, chatID)
	}

	metrics.Callbacks.WithLabelValues(action, result).Inc()
	span.SetAttributes(attribute.String("callback.result", result))
	log.Info("callback handled", map[string]interface{}{
		"callbackId": q.ID,
		"action":     action,
		"inquiryId":  inquiryID,
		"result":     result,
	})
}

// HandleGenerateQuote claims the inquiry and, if this press won, prices,
// stores and delivers the quote. It returns a short result label.
func (d *Dispatcher) HandleGenerateQuote(ctx context.Context, callbackID, inquiryID string) string {
	log := logger.WithSpan(ctx, d.logger).WithFields(map[string]interface{}{"inquiryId": inquiryID})

	inq, err := d.deps.Store.Get(ctx, inquiryID)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeInquiryNotFound) {
			d.ack(ctx, log, callbackID, AckNotFound)
			return "not_found"
		}
		log.Error("failed to load inquiry", map[string]interface{}{"error": err})
		d.ack(ctx, log, callbackID, AckRetry)
		return "error"
	}

	won, err := d.deps.Claims.Claim(ctx, inquiryID)
	if err != nil {
		d.ack(ctx, log, callbackID, AckRetry)
		return "error"
	}
	if !won {
		d.ack(ctx, log, callbackID, AckAlreadyQuoted)
		return "lost"
	}

	d.ack(ctx, log, callbackID, AckGenerating)

	quote, err := d.deps.Quotes.Generate(ctx, inq)
	if err != nil {
		log.Error("quote generation failed", map[string]interface{}{"error": err})
		d.toManual(ctx, log, inq, fmt.Sprintf("%s: %v", noPricingNotes, err))
		return "manual"
	}
	if quote == nil {
		unavailable := errors.NewQuoteUnavailableError(inq.MatchedVenue)
		log.Warn("no automatic pricing, falling back to manual", map[string]interface{}{
			"code":  unavailable.Code,
			"error": unavailable.Error(),
		})
		d.toManual(ctx, log, inq, fmt.Sprintf("%s (%s)", noPricingNotes, unavailable.Details))
		return "manual"
	}

	raw, err := json.Marshal(quote)
	if err != nil {
		d.toManual(ctx, log, inq, fmt.Sprintf("quote encoding failed: %v", err))
		return "error"
	}
	saved, err := d.deps.Store.SaveQuote(ctx, inquiryID, raw)
	if err != nil || !saved {
		log.Error("quote not saved", map[string]interface{}{"error": err, "saved": saved})
		d.toManual(ctx, log, inq, "quote could not be saved")
		return "error"
	}
	inq.QuoteJSON = raw
	inq.Status = models.StatusQuoted

	d.deliver(ctx, log, inq, quote)
	return "quoted"
}

// HandleManualQuote hands the inquiry to a human. Repeating it is harmless.
func (d *Dispatcher) HandleManualQuote(ctx context.Context, callbackID, inquiryID string, chatID int64) string {
	log := logger.WithSpan(ctx, d.logger).WithFields(map[string]interface{}{"inquiryId": inquiryID})

	inq, err := d.deps.Store.Get(ctx, inquiryID)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeInquiryNotFound) {
			d.ack(ctx, log, callbackID, AckNotFound)
			return "not_found"
		}
		log.Error("failed to load inquiry", map[string]interface{}{"error": err})
		d.ack(ctx, log, callbackID, AckRetry)
		return "error"
	}

	ok, err := d.deps.Store.MarkManualReview(ctx, inquiryID, manualReviewNotes, models.ManualReviewSources())
	if err != nil {
		log.Error("failed to mark manual review", map[string]interface{}{"error": err})
		d.ack(ctx, log, callbackID, AckRetry)
		return "error"
	}
	if !ok {
		// inq was read before the guarded update lost; its status may be stale.
		d.ack(ctx, log, callbackID, AckNotReviewable)
		return "ignored"
	}

	d.ack(ctx, log, callbackID, AckManual)
	if inq.Status != models.StatusReviewing || inq.StatusNotes != manualReviewNotes {
		d.editManual(ctx, log, inq, manualReviewNotes)
	}
	if err := d.deps.Messages.Post(ctx, chatID, notification.RenderManual(inq)); err != nil {
		log.Warn("manual quote follow-up not posted", map[string]interface{}{"error": err})
	}
	return "manual"
}

// toManual moves a claimed inquiry back to reviewing and tells the chat.
func (d *Dispatcher) toManual(ctx context.Context, log logger.Logger, inq *models.EventInquiry, notes string) {
	ok, err := d.deps.Store.MarkManualReview(ctx, inq.ID, notes, []models.InquiryStatus{models.StatusQuoting})
	if err != nil || !ok {
		log.Error("failed to release claim to manual review", map[string]interface{}{"error": err, "updated": ok})
	}
	d.editManual(ctx, log, inq, notes)

	chatID := d.reviewChatID
	if h, has := inq.Handle(); has {
		chatID = h.ChatID
	}
	text := fmt.Sprintf("Could not generate a quote for inquiry <code>%s</code>: %s. Please quote manually.",
		notification.EscapeHTML(inq.ShortID()), notification.EscapeHTML(notes))
	if err := d.deps.Messages.Post(ctx, chatID, text); err != nil {
		log.Warn("manual path follow-up not posted", map[string]interface{}{"error": err})
	}
}

// editManual rewrites the posted card so the buttons go away and the reason
// is visible in place.
func (d *Dispatcher) editManual(ctx context.Context, log logger.Logger, inq *models.EventInquiry, notes string) {
	h, ok := inq.Handle()
	if !ok {
		return
	}
	if err := d.deps.Messages.EditCard(ctx, h, notification.RenderManualNeeded(inq, notes)); err != nil {
		log.Warn("card update failed", map[string]interface{}{"error": err})
	}
}

// deliver runs the best-effort steps after a quote is stored.
func (d *Dispatcher) deliver(ctx context.Context, log logger.Logger, inq *models.EventInquiry, q *models.QuoteBreakdown) {
	if err := d.deps.Email.SendQuote(ctx, inq, q); err != nil {
		log.Error("quote email failed", map[string]interface{}{"error": err})
	}
	if d.deps.SMS != nil {
		if err := d.deps.SMS.SendQuote(ctx, inq, q); err != nil {
			log.Warn("quote sms failed", map[string]interface{}{"error": err})
		}
	}

	if h, ok := inq.Handle(); ok {
		if err := d.deps.Messages.EditCard(ctx, h, notification.RenderQuoted(inq, q)); err != nil {
			log.Warn("card update failed", map[string]interface{}{"error": err})
		}
	}

	if d.deps.Publisher != nil {
		err := d.deps.Publisher.PublishMessage(ctx, MessageQuoted, inq.ID, map[string]interface{}{
			"inquiryId":  inq.ID,
			"venueName":  q.VenueName,
			"quoteTotal": q.Total,
			"currency":   q.Currency,
		})
		if err != nil {
			log.Warn("workflow message not published", map[string]interface{}{"error": err})
		}
	}

	log.Info("quote delivered", map[string]interface{}{
		"total":    q.Total,
		"currency": q.Currency,
	})
}

func (d *Dispatcher) ack(ctx context.Context, log logger.Logger, callbackID, text string) {
	if err := d.deps.Messages.Ack(ctx, callbackID, text); err != nil {
		log.Warn("callback ack failed", map[string]interface{}{
			"callbackId": callbackID,
			"error":      err,
		})
	}
}
