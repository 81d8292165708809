// internal/venue/matcher.go
package venue

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"venue-routing/internal/common/logger"
	"venue-routing/internal/common/metrics"
	"venue-routing/internal/models"
)

const (
	maxScore        = 100
	maxAlternatives = 2

	fallbackReason = "Basic venue availability"
)

// Matcher ranks the active catalog against an inquiry.
type Matcher struct {
	catalog CatalogReader
	logger  logger.Logger
}

func NewMatcher(catalog CatalogReader, log logger.Logger) *Matcher {
	return &Matcher{
		catalog: catalog,
		logger:  log.WithFields(map[string]interface{}{"component": "venue-matcher"}),
	}
}

// MatchVenues returns the best venue and up to two alternatives. A failed or
// empty catalog read yields a nil BestMatch, which callers treat as "nothing
// to match" rather than an error.
func (m *Matcher) MatchVenues(ctx context.Context, inquiry *models.EventInquiry) models.MatchOutcome {
	outcome := models.MatchOutcome{Alternatives: []models.VenueMatchResult{}}

	venues, err := m.catalog.ListActive(ctx)
	if err != nil {
		m.logger.Error("venue catalog read failed", map[string]interface{}{
			"inquiryId": inquiry.ID,
			"error":     err,
		})
		metrics.VenueMatches.WithLabelValues("catalog_error").Inc()
		return outcome
	}

	ranked := Rank(inquiry, venues)
	if len(ranked) == 0 {
		m.logger.Warn("no active venues to match", map[string]interface{}{"inquiryId": inquiry.ID})
		metrics.VenueMatches.WithLabelValues("no_venues").Inc()
		return outcome
	}

	best := ranked[0]
	outcome.BestMatch = &best
	for i := 1; i < len(ranked) && i <= maxAlternatives; i++ {
		outcome.Alternatives = append(outcome.Alternatives, ranked[i])
	}

	metrics.VenueMatches.WithLabelValues("matched").Inc()
	metrics.VenueMatchScore.Observe(float64(best.Score))

	m.logger.Info("venues matched", map[string]interface{}{
		"inquiryId":    inquiry.ID,
		"bestMatch":    best.VenueName,
		"score":        best.Score,
		"alternatives": len(outcome.Alternatives),
		"candidates":   len(ranked),
	})
	return outcome
}

// Rank scores every active venue and sorts descending. Ties keep catalog order.
func Rank(inquiry *models.EventInquiry, venues []models.Venue) []models.VenueMatchResult {
	results := make([]models.VenueMatchResult, 0, len(venues))
	for i := range venues {
		v := &venues[i]
		if !v.IsActive() {
			continue
		}
		score, reasons := Score(inquiry, v)
		results = append(results, models.VenueMatchResult{
			VenueID:   v.ID,
			VenueName: v.Name,
			Score:     score,
			Reasoning: joinReasons(reasons),
			City:      v.City,
			Region:    v.Region,
			Category:  v.Category,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// Score is the sum of the location, capacity, requirement and operational
// components, clamped to [0, 100].
func Score(inquiry *models.EventInquiry, v *models.Venue) (int, []string) {
	var reasons []string
	score := 0

	s, r := locationScore(inquiry.VenuePreference, v)
	score += s
	reasons = append(reasons, r...)

	s, r = capacityScore(inquiry.Headcount(), v.Capabilities)
	score += s
	reasons = append(reasons, r...)

	s, r = requirementScore(inquiry.Requirements, v.Capabilities)
	score += s
	reasons = append(reasons, r...)

	s, r = operationalScore(v)
	score += s
	reasons = append(reasons, r...)

	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		score = 0
	}
	return score, reasons
}

func locationScore(preference string, v *models.Venue) (int, []string) {
	location := strings.ToLower(strings.TrimSpace(preference))
	if location == "" {
		return 0, nil
	}
	city := strings.ToLower(strings.TrimSpace(v.City))

	if city != "" && (strings.Contains(city, location) || strings.Contains(location, city)) {
		return 40, []string{fmt.Sprintf("Exact city match (%s)", v.City)}
	}

	score := 0
	var reason string

	if region := regionFor(location); region != "" && sameRegion(region, v) {
		score = 20
		reason = fmt.Sprintf("Same region (%s)", region)
	}

	// A partial hit replaces the region score rather than adding to it.
	if first := strings.Fields(location)[0]; city != "" && strings.Contains(city, first) {
		score = 30
		reason = fmt.Sprintf("Partial location match (%s)", v.City)
	}

	if reason == "" {
		return 0, nil
	}
	return score, []string{reason}
}

func sameRegion(region string, v *models.Venue) bool {
	if strings.EqualFold(region, strings.TrimSpace(v.Region)) {
		return true
	}
	venueRegion := regionFor(v.City)
	return venueRegion != "" && strings.EqualFold(region, venueRegion)
}

func capacityScore(headcount int, c models.Capabilities) (int, []string) {
	switch {
	case c.ConventionHallAvailable && headcount > 0 && c.ConventionHallCapacity >= headcount:
		return 20, []string{fmt.Sprintf("Convention hall fits %d guests", headcount)}
	case c.ConventionHallAvailable && headcount > 0:
		return 10, []string{"Convention hall available"}
	case c.Lounge || c.Rooftop:
		return 5, []string{"Lounge/rooftop space available"}
	}
	return 0, nil
}

const requirementPoints = 6

func requirementScore(req models.Requirements, c models.Capabilities) (int, []string) {
	var reasons []string

	if req.NeedsProjector && c.Projector {
		reasons = append(reasons, "Projector available")
	}
	if req.NeedsMusic && (c.Speakers || c.AmplifiedMusicAllowed) {
		reasons = append(reasons, "Sound system available")
	}
	if req.NeedsCatering {
		if c.MealBuffetAvailable {
			reasons = append(reasons, "In-house catering")
		} else if c.ExternalCateringAllowed {
			reasons = append(reasons, "External catering allowed")
		}
	}
	if req.NeedsAccommodation {
		reasons = append(reasons, "On-site accommodation")
	}
	if req.NeedsConventionHall && c.ConventionHallAvailable {
		reasons = append(reasons, "Convention hall available for sessions")
	}
	if req.NeedsOutdoorArea && (c.Garden || c.Rooftop) {
		reasons = append(reasons, "Outdoor area available")
	}

	return len(reasons) * requirementPoints, reasons
}

func operationalScore(v *models.Venue) (int, []string) {
	var reasons []string
	score := 0

	if v.IsActive() {
		score += 5
		reasons = append(reasons, "Active venue")
	}
	switch {
	case v.IsPremium():
		score += 5
		reasons = append(reasons, "Premium Zo House")
	case v.IsPlusTier():
		score += 3
		reasons = append(reasons, "Zostel Plus property")
	}
	return score, reasons
}

func joinReasons(reasons []string) string {
	if len(reasons) == 0 {
		return fallbackReason
	}
	return strings.Join(reasons, ". ")
}
