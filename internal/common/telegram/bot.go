// internal/common/telegram/bot.go
package telegram

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"venue-routing/internal/common/config"
	"venue-routing/internal/common/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackTimeout = 60 * time.Second

	// SecretTokenHeader carries the secret_token registered with setWebhook.
	SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

	maxUpdateBytes = 1 << 20
)

// Bot is the slice of *tgbotapi.BotAPI the engine uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// CallbackHandler processes one button press.
type CallbackHandler func(ctx context.Context, q *tgbotapi.CallbackQuery)

// NewBot connects to the Bot API. An empty token disables the channel and
// returns a nil bot, which callers treat as "do not send".
func NewBot(cfg config.TelegramConfig, client tgbotapi.HTTPClient, endpoint string) (*tgbotapi.BotAPI, error) {
	if cfg.BotToken == "" {
		return nil, nil
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return bot, nil
}

// Poll long-polls for updates and hands each callback query to handle on its
// own goroutine. It returns when ctx is cancelled.
func Poll(ctx context.Context, bot *tgbotapi.BotAPI, timeoutSeconds int, handle CallbackHandler, log logger.Logger) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSeconds
	u.AllowedUpdates = []string{"callback_query"}

	updates := bot.GetUpdatesChan(u)
	log.Info("telegram polling started", map[string]interface{}{"timeoutSeconds": timeoutSeconds})

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			log.Info("telegram polling stopped", nil)
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.CallbackQuery == nil {
				continue
			}
			go dispatch(ctx, handle, update.CallbackQuery)
		}
	}
}

// SetWebhook registers cfg.WebhookURL with Telegram, asking it to echo
// cfg.WebhookSecret on every delivery and to push only callback queries.
func SetWebhook(bot *tgbotapi.BotAPI, cfg config.TelegramConfig) error {
	params := tgbotapi.Params{}
	params.AddNonEmpty("url", cfg.WebhookURL)
	params.AddNonEmpty("secret_token", cfg.WebhookSecret)
	if err := params.AddInterface("allowed_updates", []string{"callback_query"}); err != nil {
		return fmt.Errorf("encode allowed_updates: %w", err)
	}

	if _, err := bot.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("set telegram webhook: %w", err)
	}
	return nil
}

// WebhookHandler accepts Bot API updates pushed over HTTP. Requests that do not
// carry the configured secret token are rejected with 401. An accepted update
// is acknowledged to Telegram immediately; the callback runs in the background.
func WebhookHandler(ctx context.Context, secret string, handle CallbackHandler, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		got := r.Header.Get(SecretTokenHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			log.Warn("telegram webhook secret mismatch", map[string]interface{}{
				"remoteAddr": r.RemoteAddr,
				"hasHeader":  got != "",
			})
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var update tgbotapi.Update
		body := http.MaxBytesReader(w, r.Body, maxUpdateBytes)
		if err := json.NewDecoder(body).Decode(&update); err != nil {
			log.Warn("invalid telegram update", map[string]interface{}{"error": err.Error()})
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.WriteHeader(http.StatusOK)
		if update.CallbackQuery != nil {
			go dispatch(ctx, handle, update.CallbackQuery)
		}
	}
}

// dispatch bounds each callback independently of the request or poll loop.
func dispatch(parent context.Context, handle CallbackHandler, q *tgbotapi.CallbackQuery) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), callbackTimeout)
	defer cancel()
	handle(ctx, q)
}
