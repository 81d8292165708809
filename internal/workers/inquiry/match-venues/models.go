// internal/workers/inquiry/match-venues/models.go
package matchvenues

import "venue-routing/internal/models"

type Input struct {
	InquiryID string `json:"inquiryId"`
}

type Output struct {
	InquiryID     string                    `json:"inquiryId"`
	Matched       bool                      `json:"matched"`
	BestMatch     *models.VenueMatchResult  `json:"bestMatch"`
	MatchScore    int                       `json:"matchScore"`
	Alternatives  []models.VenueMatchResult `json:"alternatives"`
	InquiryStatus string                    `json:"inquiryStatus"`
	Persisted     bool                      `json:"persisted"`
}
