// internal/models/venue.go
package models

import "strings"

type OperationalStatus string

const (
	VenueActive   OperationalStatus = "Active"
	VenueInactive OperationalStatus = "Inactive"
)

// Venue categories. Anything not listed is treated as standard tier.
const (
	CategoryPremium = "Zo Houses"
	CategoryPlus    = "Zostel Plus"
)

type Venue struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Category          string            `json:"category"`
	City              string            `json:"city"`
	Region            string            `json:"region"`
	OperationalStatus OperationalStatus `json:"operationalStatus"`
	Capabilities      Capabilities      `json:"capabilities"`
	RateCard          RateCard          `json:"rateCard"`
}

type Capabilities struct {
	ConventionHallAvailable bool `json:"conventionHallAvailable"`
	ConventionHallCapacity  int  `json:"conventionHallCapacity"`
	Projector               bool `json:"projector"`
	Speakers                bool `json:"speakers"`
	Mic                     bool `json:"mic"`
	Stage                   bool `json:"stage"`
	Lounge                  bool `json:"lounge"`
	Rooftop                 bool `json:"rooftop"`
	Garden                  bool `json:"garden"`
	AmplifiedMusicAllowed   bool `json:"amplifiedMusicAllowed"`
	MealBuffetAvailable     bool `json:"mealBuffetAvailable"`
	ExternalCateringAllowed bool `json:"externalCateringAllowed"`
}

// RateCard amounts are in the venue's billing currency.
type RateCard struct {
	HourlyRate          float64 `json:"hourlyRate"`
	HalfDayRate         float64 `json:"halfDayRate"`
	FullDayRate         float64 `json:"fullDayRate"`
	VegMealPerPerson    float64 `json:"vegMealPerPerson"`
	NonVegMealPerPerson float64 `json:"nonVegMealPerPerson"`
	CleaningFee         float64 `json:"cleaningFee"`
	SecurityDeposit     float64 `json:"securityDeposit"`
	PeakMultiplier      float64 `json:"peakMultiplier"`
	OffPeakMultiplier   float64 `json:"offPeakMultiplier"`
	PeakMonths          []int   `json:"peakMonths"`
}

func (v *Venue) IsActive() bool {
	return v.OperationalStatus == VenueActive
}

func (v *Venue) IsPremium() bool {
	return strings.EqualFold(strings.TrimSpace(v.Category), CategoryPremium)
}

func (v *Venue) IsPlusTier() bool {
	return strings.EqualFold(strings.TrimSpace(v.Category), CategoryPlus)
}

// HasPricing reports whether the rate card carries enough to price an event.
func (r RateCard) HasPricing() bool {
	return r.FullDayRate > 0 || r.HalfDayRate > 0 || r.HourlyRate > 0
}

// ParseYesNo maps catalog flag strings ("Yes", "No", "true", "1", ...) to a bool.
func ParseYesNo(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1", "available", "allowed":
		return true
	default:
		return false
	}
}
