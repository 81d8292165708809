//go:build e2e

// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue-routing/internal/callback"
	"venue-routing/internal/common/config"
	"venue-routing/internal/common/database"
	"venue-routing/internal/common/logger"
	"venue-routing/internal/inquiry"
	"venue-routing/internal/models"
	"venue-routing/internal/notification"
	"venue-routing/internal/quote"
	"venue-routing/internal/venue"

	createinquiryrecord "venue-routing/internal/workers/inquiry/create-inquiry-record"
	matchvenues "venue-routing/internal/workers/inquiry/match-venues"
	notifyreviewer "venue-routing/internal/workers/inquiry/notify-reviewer"
)

var (
	cfg *config.Config
	pg  *database.PostgresClient
	rdb *database.RedisClient
)

func TestMain(m *testing.M) {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("skipping e2e: config: %v\n", err)
		os.Exit(0)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pg, err = database.NewPostgres(cfg.Database.Postgres)
	if err == nil {
		err = pg.Ping(ctx)
	}
	if err != nil {
		fmt.Printf("skipping e2e: postgres: %v\n", err)
		os.Exit(0)
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		panic(fmt.Sprintf("schema setup failed: %v", err))
	}

	rdb, err = database.NewRedis(cfg.Database.Redis)
	if err == nil {
		err = rdb.Ping(ctx)
	}
	if err != nil {
		fmt.Printf("skipping e2e: redis: %v\n", err)
		os.Exit(0)
	}

	code := m.Run()

	pg.Close()
	rdb.Close()
	os.Exit(code)
}

func seedVenue(t *testing.T, ctx context.Context) string {
	id := "e2e-" + uuid.NewString()[:8]
	_, err := pg.DB.ExecContext(ctx, `
		INSERT INTO venues (id, name, category, city, region, operational_status,
			convention_hall_available, convention_hall_capacity, projector_available,
			meal_buffet_available, full_day_rate, veg_meal_per_person, cleaning_fee,
			security_deposit, peak_multiplier, off_peak_multiplier, peak_months)
		VALUES ($1, $2, 'Zo Houses', 'Testpur', 'E2E', 'Active',
			'Yes', 120, 'Yes', 'Yes', 20000, 500, 1500, 5000, 1.5, 1, $3)`,
		id, "Zo House "+id, pq.Array([]int64{12}))
	require.NoError(t, err)
	t.Cleanup(func() {
		pg.DB.ExecContext(context.Background(), `DELETE FROM venues WHERE id = $1`, id)
	})
	return "Zo House " + id
}

// ==========================
// Inquiry Lifecycle
// ==========================

func TestInquiryLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	log := logger.NewTestLogger(t)
	store := inquiry.NewStore(pg.DB)
	catalog := venue.NewPostgresCatalog(pg.DB)
	seedVenue(t, ctx)

	created, err := createinquiryrecord.NewHandler(
		createinquiryrecord.LoadConfig(config.GetWorkerConfig(cfg, createinquiryrecord.TaskType)), store, log,
	).Execute(ctx, &createinquiryrecord.Input{
		RequesterName:     "E2E Tester",
		RequesterEmail:    "e2e@example.com",
		EventName:         "E2E Summit",
		EventDate:         "2026-12-12",
		VenuePreference:   "Testpur",
		ExpectedHeadcount: "80 people",
		Requirements:      models.Requirements{NeedsProjector: true, NeedsCatering: true, NeedsConventionHall: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "new", created.InquiryStatus)
	assert.Equal(t, 80, created.Headcount)
	t.Cleanup(func() {
		pg.DB.ExecContext(context.Background(), `DELETE FROM event_inquiries WHERE id = $1`, created.InquiryID)
	})

	matched, err := matchvenues.NewHandler(
		matchvenues.LoadConfig(config.GetWorkerConfig(cfg, matchvenues.TaskType)),
		store, venue.NewMatcher(catalog, log), inquiry.NewMatchPersister(store, log), log,
	).Execute(ctx, &matchvenues.Input{InquiryID: created.InquiryID})
	require.NoError(t, err)
	require.True(t, matched.Matched)
	assert.Equal(t, "matched", matched.InquiryStatus)

	notifier := notification.NewInquiryNotifier(nil, cfg.Integrations.Telegram.ReviewChatID, store, log)
	notified, err := notifyreviewer.NewHandler(
		notifyreviewer.LoadConfig(config.GetWorkerConfig(cfg, notifyreviewer.TaskType)), store, notifier, log,
	).Execute(ctx, &notifyreviewer.Input{InquiryID: created.InquiryID})
	require.NoError(t, err)
	assert.False(t, notified.Notified)
	assert.Equal(t, "push_failed", notified.InquiryStatus)

	dispatcher := callback.NewDispatcher(callback.Dependencies{
		Store:    store,
		Claims:   inquiry.NewClaimCoordinator(store, log),
		Quotes:   quote.NewEngine(catalog, cfg.Quote, log),
		Messages: notification.NewMessageUpdater(nil, log),
		Email:    notification.NewEmailSender(nil, log),
		Logger:   log,
	}, cfg.Integrations.Telegram.ReviewChatID)

	const presses = 8
	results := make([]string, presses)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < presses; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i] = dispatcher.HandleGenerateQuote(ctx, fmt.Sprintf("cb-%d", i), created.InquiryID)
		}(i)
	}
	close(start)
	wg.Wait()

	winners := 0
	for _, r := range results {
		switch r {
		case "quoted", "manual":
			winners++
		default:
			assert.Equal(t, "lost", r)
		}
	}
	assert.Equal(t, 1, winners, "results: %v", results)

	final, err := store.Get(ctx, created.InquiryID)
	require.NoError(t, err)
	if final.Status == models.StatusQuoted {
		assert.True(t, final.HasQuote())
		assert.Equal(t, "lost", dispatcher.HandleGenerateQuote(ctx, "cb-late", created.InquiryID))
	} else {
		assert.Equal(t, models.StatusReviewing, final.Status)
	}
}

// ==========================
// Callback Dedupe
// ==========================

func TestDeduper_RealRedis(t *testing.T) {
	ctx := context.Background()
	deduper := callback.NewDeduper(rdb.Client, time.Minute, logger.NewTestLogger(t))
	id := "e2e-" + uuid.NewString()

	assert.True(t, deduper.First(ctx, id))
	assert.False(t, deduper.First(ctx, id))
	rdb.Client.Del(ctx, "callback:seen:"+id)
}
