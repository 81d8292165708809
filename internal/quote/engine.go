// internal/quote/engine.go
package quote

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"venue-routing/internal/common/config"
	"venue-routing/internal/common/logger"
	"venue-routing/internal/models"
)

const (
	dateLayout = "2006-01-02"

	// Hourly-only venues are priced for a standard event block.
	defaultEventHours = 4
)

// VenueFinder resolves the matched venue name stored on an inquiry.
type VenueFinder interface {
	FindByName(ctx context.Context, name string) (*models.Venue, error)
}

// Engine prices an inquiry against its matched venue's rate card. It is
// deterministic for a given venue, inquiry and clock.
type Engine struct {
	finder VenueFinder
	cfg    config.QuoteConfig
	logger logger.Logger
	now    func() time.Time
}

func NewEngine(finder VenueFinder, cfg config.QuoteConfig, log logger.Logger) *Engine {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &Engine{
		finder: finder,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "quote-engine"}),
		now:    time.Now,
	}
}

// Generate returns nil without error when the inquiry cannot be priced
// automatically: no matched venue, the venue is gone, or it has no rates.
func (e *Engine) Generate(ctx context.Context, inq *models.EventInquiry) (*models.QuoteBreakdown, error) {
	name := strings.TrimSpace(inq.MatchedVenue)
	if name == "" {
		e.logger.Info("no matched venue to price", map[string]interface{}{"inquiryId": inq.ID})
		return nil, nil
	}

	venue, err := e.finder.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		e.logger.Warn("matched venue not in catalog", map[string]interface{}{
			"inquiryId": inq.ID,
			"venue":     name,
		})
		return nil, nil
	}
	if !venue.RateCard.HasPricing() {
		e.logger.Info("venue has no rate card", map[string]interface{}{
			"inquiryId": inq.ID,
			"venueId":   venue.ID,
		})
		return nil, nil
	}

	return e.Calculate(inq, venue), nil
}

// Calculate builds the breakdown. The seasonal multiplier applies to venue
// hire only; the security deposit is refundable and stays out of the total.
func (e *Engine) Calculate(inq *models.EventInquiry, venue *models.Venue) *models.QuoteBreakdown {
	rc := venue.RateCard
	headcount := inq.Headcount()
	multiplier := seasonalMultiplier(rc, inq.EventDate)

	hireLabel, hire := venueHire(rc)
	items := []models.QuoteLineItem{
		{Label: hireLabel, Amount: round2(hire * multiplier)},
	}

	if inq.Requirements.NeedsCatering && headcount > 0 {
		if label, perHead := mealRate(rc); perHead > 0 {
			items = append(items, models.QuoteLineItem{
				Label:  fmt.Sprintf("%s (%d x %.2f)", label, headcount, perHead),
				Amount: round2(float64(headcount) * perHead),
			})
		}
	}

	if rc.CleaningFee > 0 {
		items = append(items, models.QuoteLineItem{Label: "Cleaning fee", Amount: round2(rc.CleaningFee)})
	}

	var subtotal float64
	for _, it := range items {
		subtotal += it.Amount
	}
	subtotal = round2(subtotal)
	tax := round2(subtotal * e.cfg.TaxRate)

	return &models.QuoteBreakdown{
		VenueID:            venue.ID,
		VenueName:          venue.Name,
		Currency:           e.cfg.Currency,
		EventDate:          inq.EventDate,
		Headcount:          headcount,
		LineItems:          items,
		SeasonalMultiplier: multiplier,
		Subtotal:           subtotal,
		Tax:                tax,
		Total:              round2(subtotal + tax),
		SecurityDeposit:    round2(rc.SecurityDeposit),
		ValidUntil:         e.now().AddDate(0, 0, e.cfg.ValidityDays).Format(dateLayout),
	}
}

func venueHire(rc models.RateCard) (string, float64) {
	switch {
	case rc.FullDayRate > 0:
		return "Venue hire (full day)", rc.FullDayRate
	case rc.HalfDayRate > 0:
		return "Venue hire (half day)", rc.HalfDayRate
	default:
		return fmt.Sprintf("Venue hire (%d hours)", defaultEventHours), rc.HourlyRate * defaultEventHours
	}
}

func mealRate(rc models.RateCard) (string, float64) {
	if rc.VegMealPerPerson > 0 {
		return "Catering, veg", rc.VegMealPerPerson
	}
	return "Catering, non-veg", rc.NonVegMealPerPerson
}

// seasonalMultiplier is 1 when the date is missing or unparseable, or the
// matching multiplier is unset.
func seasonalMultiplier(rc models.RateCard, eventDate string) float64 {
	d, err := time.Parse(dateLayout, strings.TrimSpace(eventDate))
	if err != nil {
		return 1
	}

	m := rc.OffPeakMultiplier
	for _, pm := range rc.PeakMonths {
		if time.Month(pm) == d.Month() {
			m = rc.PeakMultiplier
			break
		}
	}
	if m <= 0 {
		return 1
	}
	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

