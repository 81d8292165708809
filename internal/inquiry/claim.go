// internal/inquiry/claim.go
package inquiry

import (
	"context"

	"venue-routing/internal/common/errors"
	"venue-routing/internal/common/logger"
	"venue-routing/internal/common/metrics"
)

// Claimer performs the single conditional write behind a quote claim.
type Claimer interface {
	Claim(ctx context.Context, id string) (bool, error)
}

// ClaimCoordinator decides which of several concurrent quote requests for the
// same inquiry gets to generate the quote. There is no in-process lock; the
// conditional UPDATE is the only arbiter.
type ClaimCoordinator struct {
	claimer Claimer
	logger  logger.Logger
}

func NewClaimCoordinator(claimer Claimer, log logger.Logger) *ClaimCoordinator {
	return &ClaimCoordinator{
		claimer: claimer,
		logger:  log.WithFields(map[string]interface{}{"component": "claim-coordinator"}),
	}
}

func (c *ClaimCoordinator) Claim(ctx context.Context, inquiryID string) (bool, error) {
	won, err := c.claimer.Claim(ctx, inquiryID)
	if err != nil {
		metrics.QuoteClaims.WithLabelValues("error").Inc()
		c.logger.Error("quote claim failed", map[string]interface{}{
			"inquiryId": inquiryID,
			"error":     err,
		})
		return false, errors.NewClaimFailedError(inquiryID, err)
	}

	if !won {
		metrics.QuoteClaims.WithLabelValues("lost").Inc()
		c.logger.Info("quote claim lost", map[string]interface{}{"inquiryId": inquiryID})
		return false, nil
	}

	metrics.QuoteClaims.WithLabelValues("won").Inc()
	c.logger.Info("quote claim won", map[string]interface{}{"inquiryId": inquiryID})
	return true, nil
}
