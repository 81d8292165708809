// internal/workers/inquiry/create-inquiry-record/models.go
package createinquiryrecord

import "venue-routing/internal/models"

// Input mirrors the intake form. ExpectedHeadcount arrives as text or a
// number depending on the form builder.
type Input struct {
	RequesterName     string              `json:"requesterName"`
	RequesterEmail    string              `json:"requesterEmail"`
	RequesterPhone    string              `json:"requesterPhone,omitempty"`
	EventName         string              `json:"eventName"`
	EventDate         string              `json:"eventDate,omitempty"`
	VenuePreference   string              `json:"venuePreference"`
	ExpectedHeadcount interface{}         `json:"expectedHeadcount,omitempty"`
	Requirements      models.Requirements `json:"requirements"`
}

type Output struct {
	InquiryID     string `json:"inquiryId"`
	InquiryStatus string `json:"inquiryStatus"`
	Headcount     int    `json:"headcount"`
	CreatedAt     string `json:"createdAt"` // ISO 8601
}

var inputSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"requesterName", "requesterEmail"},
	"properties": map[string]interface{}{
		"requesterName":   map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 200},
		"requesterEmail":  map[string]interface{}{"type": "string", "format": "email"},
		"requesterPhone":  map[string]interface{}{"type": "string", "maxLength": 32},
		"eventName":       map[string]interface{}{"type": "string", "maxLength": 300},
		"eventDate":       map[string]interface{}{"type": "string", "pattern": `^(\d{4}-\d{2}-\d{2})?$`},
		"venuePreference": map[string]interface{}{"type": "string", "maxLength": 200},
		"expectedHeadcount": map[string]interface{}{
			"type":    []interface{}{"string", "integer", "null"},
			"minimum": 0,
		},
		"requirements": map[string]interface{}{"type": "object"},
	},
}
