// internal/models/quote.go
package models

type QuoteLineItem struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// QuoteBreakdown is persisted verbatim in event_inquiries.quote_json.
type QuoteBreakdown struct {
	VenueID            string          `json:"venueId"`
	VenueName          string          `json:"venueName"`
	Currency           string          `json:"currency"`
	EventDate          string          `json:"eventDate,omitempty"`
	Headcount          int             `json:"headcount"`
	LineItems          []QuoteLineItem `json:"lineItems"`
	SeasonalMultiplier float64         `json:"seasonalMultiplier"`
	Subtotal           float64         `json:"subtotal"`
	Tax                float64         `json:"tax"`
	Total              float64         `json:"total"`
	SecurityDeposit    float64         `json:"securityDeposit,omitempty"`
	ValidUntil         string          `json:"validUntil"`
}
