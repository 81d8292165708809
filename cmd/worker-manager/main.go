// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"venue-routing/internal/callback"
	"venue-routing/internal/common/aws"
	"venue-routing/internal/common/camunda"
	"venue-routing/internal/common/config"
	"venue-routing/internal/common/database"
	httpclient "venue-routing/internal/common/http"
	"venue-routing/internal/common/logger"
	"venue-routing/internal/common/observability"
	"venue-routing/internal/common/telegram"
	"venue-routing/internal/inquiry"
	"venue-routing/internal/notification"
	"venue-routing/internal/quote"
	"venue-routing/internal/venue"

	cir "venue-routing/internal/workers/inquiry/create-inquiry-record"
	mv "venue-routing/internal/workers/inquiry/match-venues"
	nr "venue-routing/internal/workers/inquiry/notify-reviewer"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting venue routing worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("catalogSource", cfg.Matching.CatalogSource),
	)

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.TraceSampleRatio, log)
	defer obs.Shutdown()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("schema setup failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Venue catalog ---
	pgCatalog := venue.NewPostgresCatalog(pg.DB)
	var catalog venue.CatalogReader = pgCatalog
	if cfg.Matching.CatalogSource == config.CatalogSourceElasticsearch {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		if ok, err := es.IndexExists(ctx, cfg.Matching.VenueIndex); err != nil || !ok {
			zapLog.Warn("venue index not available yet",
				zap.String("index", cfg.Matching.VenueIndex),
				zap.Bool("exists", ok),
				zap.Error(err),
			)
		}
		catalog = venue.NewSearchCatalog(es.Client, cfg.Matching.VenueIndex)
		zapLog.Info("Elasticsearch venue catalog selected")
	}
	if cfg.Matching.CacheTTL > 0 {
		catalog = venue.NewCachedCatalog(catalog, rdb.Client, config.GetDuration(cfg.Matching.CacheTTL), log)
	}

	// --- Domain services ---
	store := inquiry.NewStore(pg.DB)
	matcher := venue.NewMatcher(catalog, log)
	persister := inquiry.NewMatchPersister(store, log)
	engine := quote.NewEngine(pgCatalog, cfg.Quote, log)

	var emailClient notification.EmailClient
	if cfg.Integrations.AWS.SES.Enabled {
		ses, err := aws.NewSESClient(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SES.FromEmail)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		emailClient = ses
	}
	var smsSender callback.QuoteSender
	if cfg.Integrations.AWS.SNS.Enabled {
		sns, err := aws.NewSNSClient(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SNS.DefaultSMSSenderID)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		smsSender = notification.NewSMSSender(sns, log)
	}

	tgCfg := cfg.Integrations.Telegram
	botAPI, err := telegram.NewBot(tgCfg, httpclient.NewClient(config.GetDuration(tgCfg.HTTPTimeout)), "")
	if err != nil {
		zapLog.Fatal("telegram bot failed", zap.Error(err))
	}
	var bot telegram.Bot
	if botAPI != nil {
		bot = botAPI
	} else {
		zapLog.Warn("telegram bot token not set, review cards will not be posted")
	}

	notifier := notification.NewInquiryNotifier(bot, tgCfg.ReviewChatID, store, log)
	dispatcher := callback.NewDispatcher(callback.Dependencies{
		Store:     store,
		Claims:    inquiry.NewClaimCoordinator(store, log),
		Quotes:    engine,
		Messages:  notification.NewMessageUpdater(bot, log),
		Email:     notification.NewEmailSender(emailClient, log),
		SMS:       smsSender,
		Publisher: zeebe,
		Deduper:   callback.NewDeduper(rdb.Client, config.GetDuration(cfg.Callback.DedupeTTL), log),
		Tracer:    obs.Tracer(),
		Logger:    log,
	}, tgCfg.ReviewChatID)

	// --- Workers ---
	var workers []*camunda.Worker
	zc := zeebe.GetClient()

	if taskType := cir.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		handler := cir.NewHandler(cir.LoadConfig(wcfg), store, log)
		workers = append(workers, camunda.NewWorker(zc, taskType, wcfg, handler.Handle, obs, log))
	}
	if taskType := mv.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		handler := mv.NewHandler(mv.LoadConfig(wcfg), store, matcher, persister, log)
		workers = append(workers, camunda.NewWorker(zc, taskType, wcfg, handler.Handle, obs, log))
	}
	if taskType := nr.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		handler := nr.NewHandler(nr.LoadConfig(wcfg), store, notifier, log)
		workers = append(workers, camunda.NewWorker(zc, taskType, wcfg, handler.Handle, obs, log))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health, metrics and callbacks ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pg.Ping(checkCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "postgres unavailable")
			return
		}
		if err := rdb.Ping(checkCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
		if err := zeebe.HealthCheck(checkCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "zeebe unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	if botAPI != nil {
		switch tgCfg.UpdateMode {
		case config.UpdateModeWebhook:
			mux.Handle(tgCfg.WebhookPath, telegram.WebhookHandler(ctx, tgCfg.WebhookSecret, dispatcher.HandleCallback, log))
			if err := telegram.SetWebhook(botAPI, tgCfg); err != nil {
				zapLog.Fatal("telegram webhook registration failed", zap.Error(err))
			}
			zapLog.Info("Telegram webhook registered",
				zap.String("path", tgCfg.WebhookPath),
				zap.String("url", tgCfg.WebhookURL),
			)
		default:
			go telegram.Poll(ctx, botAPI, tgCfg.PollTimeout, dispatcher.HandleCallback, log)
			zapLog.Info("Telegram long polling started")
		}
	}

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop()
	}

	zapLog.Info("Worker manager stopped")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
