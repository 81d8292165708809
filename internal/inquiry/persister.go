// internal/inquiry/persister.go
package inquiry

import (
	"context"

	"venue-routing/internal/common/logger"
	"venue-routing/internal/models"
)

// MatchPersister stores a match outcome on its inquiry. Write failures are
// logged and swallowed so they never mask the caller's own result.
type MatchPersister struct {
	store  *Store
	logger logger.Logger
}

func NewMatchPersister(store *Store, log logger.Logger) *MatchPersister {
	return &MatchPersister{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "match-persister"}),
	}
}

// Save returns the status the inquiry should now be in, and whether the
// write actually landed.
func (p *MatchPersister) Save(ctx context.Context, inquiryID string, best *models.VenueMatchResult, alternatives []models.VenueMatchResult) (models.InquiryStatus, bool) {
	target := models.StatusNew
	if best != nil {
		target = models.StatusMatched
	}

	ok, err := p.store.SaveMatch(ctx, inquiryID, best, alternatives)
	if err != nil {
		p.logger.Error("failed to persist venue match", map[string]interface{}{
			"inquiryId": inquiryID,
			"error":     err,
		})
		return target, false
	}
	if !ok {
		p.logger.Warn("venue match not persisted: inquiry missing or past matching", map[string]interface{}{
			"inquiryId": inquiryID,
			"target":    target,
		})
		return target, false
	}

	fields := map[string]interface{}{
		"inquiryId": inquiryID,
		"status":    target,
	}
	if best != nil {
		fields["venue"] = best.VenueName
		fields["score"] = best.Score
	}
	p.logger.Info("venue match persisted", fields)
	return target, true
}
