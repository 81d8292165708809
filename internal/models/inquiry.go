// internal/models/inquiry.go
package models

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type EventInquiry struct {
	ID                string        `json:"id"`
	RequesterName     string        `json:"requesterName"`
	RequesterEmail    string        `json:"requesterEmail"`
	RequesterPhone    string        `json:"requesterPhone,omitempty"`
	EventName         string        `json:"eventName"`
	EventDate         string        `json:"eventDate,omitempty"`
	VenuePreference   string        `json:"venuePreference"`
	ExpectedHeadcount string        `json:"expectedHeadcount"`
	Requirements      Requirements  `json:"requirements"`
	Status            InquiryStatus `json:"inquiryStatus"`

	MatchedVenue      string             `json:"matchedVenue,omitempty"`
	MatchScore        int                `json:"matchScore"`
	MatchReasoning    string             `json:"matchReasoning,omitempty"`
	AlternativeVenues []VenueMatchResult `json:"alternativeVenues,omitempty"`

	QuoteJSON json.RawMessage `json:"quoteJson,omitempty"`

	TelegramChatID    int64 `json:"telegramChatId,omitempty"`
	TelegramMessageID int   `json:"telegramMessageId,omitempty"`

	StatusNotes string    `json:"statusNotes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Requirements struct {
	NeedsProjector      bool `json:"needsProjector"`
	NeedsMusic          bool `json:"needsMusic"`
	NeedsCatering       bool `json:"needsCatering"`
	NeedsAccommodation  bool `json:"needsAccommodation"`
	NeedsConventionHall bool `json:"needsConventionHall"`
	NeedsOutdoorArea    bool `json:"needsOutdoorArea"`
}

// MessageHandle locates a posted chat card for later in-place edits.
type MessageHandle struct {
	ChatID    int64 `json:"chatId"`
	MessageID int   `json:"messageId"`
}

var leadingInt = regexp.MustCompile(`^\+?(\d+)`)

// Headcount parses the free-text headcount. Leading digits are taken
// ("50", "80-100", "120 people"); anything else is 0.
func (i *EventInquiry) Headcount() int {
	return ParseHeadcount(i.ExpectedHeadcount)
}

func ParseHeadcount(raw string) int {
	m := leadingInt.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (i *EventInquiry) HasQuote() bool {
	return len(i.QuoteJSON) > 0 && string(i.QuoteJSON) != "null"
}

func (i *EventInquiry) Handle() (MessageHandle, bool) {
	if i.TelegramChatID == 0 || i.TelegramMessageID == 0 {
		return MessageHandle{}, false
	}
	return MessageHandle{ChatID: i.TelegramChatID, MessageID: i.TelegramMessageID}, true
}

// ShortID is the truncated id used in reviewer-facing follow-ups.
func (i *EventInquiry) ShortID() string {
	return ShortID(i.ID)
}

func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
