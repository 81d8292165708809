// internal/models/match.go
package models

type VenueMatchResult struct {
	VenueID   string `json:"venueId"`
	VenueName string `json:"venueName"`
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
	City      string `json:"city"`
	Region    string `json:"region"`
	Category  string `json:"category"`
}

// MatchOutcome is the ranked result of matching one inquiry.
// A nil BestMatch means there was nothing to match against.
type MatchOutcome struct {
	BestMatch    *VenueMatchResult  `json:"bestMatch"`
	Alternatives []VenueMatchResult `json:"alternatives"`
}
