// internal/quote/engine_test.go
package quote

import (
	"context"
	"errors"
	"testing"
	"time"

	"venue-routing/internal/common/config"
	"venue-routing/internal/common/logger"
	"venue-routing/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFinder struct {
	venues map[string]*models.Venue
	err    error
	calls  []string
}

func (s *stubFinder) FindByName(ctx context.Context, name string) (*models.Venue, error) {
	s.calls = append(s.calls, name)
	if s.err != nil {
		return nil, s.err
	}
	return s.venues[name], nil
}

func createTestEngine(t *testing.T, venues ...*models.Venue) (*Engine, *stubFinder) {
	finder := &stubFinder{venues: map[string]*models.Venue{}}
	for _, v := range venues {
		finder.venues[v.Name] = v
	}
	e := NewEngine(finder, config.QuoteConfig{Currency: "INR", TaxRate: 0.18, ValidityDays: 7}, logger.NewTestLogger(t))
	e.now = func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }
	return e, finder
}

func createTestVenue(rc models.RateCard) *models.Venue {
	return &models.Venue{
		ID:                "v-goa",
		Name:              "Zo House Goa",
		Category:          models.CategoryPremium,
		City:              "Goa",
		Region:            "West",
		OperationalStatus: models.VenueActive,
		RateCard:          rc,
	}
}

func createTestInquiry(date, headcount string, catering bool) *models.EventInquiry {
	return &models.EventInquiry{
		ID:                "2f1c9a7e-0000-4000-8000-000000000001",
		MatchedVenue:      "Zo House Goa",
		EventDate:         date,
		ExpectedHeadcount: headcount,
		Requirements:      models.Requirements{NeedsCatering: catering},
	}
}

// ==========================
// Generate
// ==========================

func TestEngine_GeneratePeakSeason(t *testing.T) {
	e, finder := createTestEngine(t, createTestVenue(models.RateCard{
		FullDayRate:      20000,
		VegMealPerPerson: 500,
		CleaningFee:      1500,
		SecurityDeposit:  5000,
		PeakMultiplier:   1.5,
		PeakMonths:       []int{11, 12, 1},
	}))

	q, err := e.Generate(context.Background(), createTestInquiry("2026-12-20", "50 people", true))
	require.NoError(t, err)
	require.NotNil(t, q)

	assert.Equal(t, []string{"Zo House Goa"}, finder.calls)
	assert.Equal(t, "v-goa", q.VenueID)
	assert.Equal(t, "INR", q.Currency)
	assert.Equal(t, 50, q.Headcount)
	assert.Equal(t, 1.5, q.SeasonalMultiplier)
	assert.Equal(t, []models.QuoteLineItem{
		{Label: "Venue hire (full day)", Amount: 30000},
		{Label: "Catering, veg (50 x 500.00)", Amount: 25000},
		{Label: "Cleaning fee", Amount: 1500},
	}, q.LineItems)
	assert.Equal(t, 56500.0, q.Subtotal)
	assert.Equal(t, 10170.0, q.Tax)
	assert.Equal(t, 66670.0, q.Total)
	assert.Equal(t, 5000.0, q.SecurityDeposit)
	assert.Equal(t, "2026-10-24", q.ValidUntil)
}

func TestEngine_GenerateIsDeterministic(t *testing.T) {
	e, _ := createTestEngine(t, createTestVenue(models.RateCard{HalfDayRate: 8000, NonVegMealPerPerson: 650}))
	inq := createTestInquiry("2026-08-01", "30", true)

	first, err := e.Generate(context.Background(), inq)
	require.NoError(t, err)
	second, err := e.Generate(context.Background(), inq)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "Catering, non-veg (30 x 650.00)", first.LineItems[1].Label)
}

func TestEngine_GenerateReturnsNilWhenUnpriceable(t *testing.T) {
	tests := []struct {
		name    string
		venues  []*models.Venue
		matched string
	}{
		{"no matched venue", nil, ""},
		{"venue missing from catalog", nil, "Zo House Goa"},
		{"rate card empty", []*models.Venue{createTestVenue(models.RateCard{CleaningFee: 500})}, "Zo House Goa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := createTestEngine(t, tt.venues...)
			inq := createTestInquiry("2026-12-20", "40", false)
			inq.MatchedVenue = tt.matched

			q, err := e.Generate(context.Background(), inq)
			assert.NoError(t, err)
			assert.Nil(t, q)
		})
	}
}

func TestEngine_GenerateFinderError(t *testing.T) {
	e, finder := createTestEngine(t)
	finder.err = errors.New("catalog offline")

	q, err := e.Generate(context.Background(), createTestInquiry("", "10", false))
	assert.Error(t, err)
	assert.Nil(t, q)
}

// ==========================
// Calculate
// ==========================

func TestEngine_VenueHire(t *testing.T) {
	tests := []struct {
		name   string
		rc     models.RateCard
		label  string
		amount float64
	}{
		{"full day wins", models.RateCard{FullDayRate: 12000, HalfDayRate: 7000, HourlyRate: 2000}, "Venue hire (full day)", 12000},
		{"half day", models.RateCard{HalfDayRate: 7000, HourlyRate: 2000}, "Venue hire (half day)", 7000},
		{"hourly block", models.RateCard{HourlyRate: 1250.5}, "Venue hire (4 hours)", 5002},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := createTestEngine(t)
			q := e.Calculate(createTestInquiry("", "", false), createTestVenue(tt.rc))

			require.Len(t, q.LineItems, 1)
			assert.Equal(t, tt.label, q.LineItems[0].Label)
			assert.Equal(t, tt.amount, q.LineItems[0].Amount)
			assert.Equal(t, tt.amount, q.Subtotal)
		})
	}
}

func TestEngine_SeasonalMultiplier(t *testing.T) {
	rc := models.RateCard{
		FullDayRate:       10000,
		PeakMultiplier:    1.25,
		OffPeakMultiplier: 0.9,
		PeakMonths:        []int{12},
	}

	tests := []struct {
		name string
		date string
		want float64
		hire float64
	}{
		{"peak month", "2026-12-31", 1.25, 12500},
		{"off-peak month", "2026-07-10", 0.9, 9000},
		{"no date", "", 1, 10000},
		{"unparseable date", "next spring", 1, 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := createTestEngine(t)
			q := e.Calculate(createTestInquiry(tt.date, "", false), createTestVenue(rc))

			assert.Equal(t, tt.want, q.SeasonalMultiplier)
			assert.Equal(t, tt.hire, q.LineItems[0].Amount)
		})
	}
}

func TestEngine_UnsetMultiplierIsNeutral(t *testing.T) {
	e, _ := createTestEngine(t)
	q := e.Calculate(
		createTestInquiry("2026-12-01", "", false),
		createTestVenue(models.RateCard{FullDayRate: 10000, PeakMonths: []int{12}}),
	)
	assert.Equal(t, 1.0, q.SeasonalMultiplier)
}

func TestEngine_CateringNeedsHeadcount(t *testing.T) {
	e, _ := createTestEngine(t)
	q := e.Calculate(
		createTestInquiry("", "a few friends", true),
		createTestVenue(models.RateCard{FullDayRate: 10000, VegMealPerPerson: 400}),
	)

	assert.Len(t, q.LineItems, 1)
	assert.Equal(t, 0, q.Headcount)
}

func TestNewEngine_DefaultCurrency(t *testing.T) {
	e := NewEngine(&stubFinder{}, config.QuoteConfig{}, logger.NewNoOpLogger())
	assert.Equal(t, "INR", e.cfg.Currency)
}
