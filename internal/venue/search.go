// internal/venue/search.go
package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"venue-routing/internal/common/errors"
	"venue-routing/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const searchPageSize = 1000

// SearchCatalog reads the venue catalog from an Elasticsearch index whose
// documents mirror the venues table columns.
type SearchCatalog struct {
	client *elasticsearch.Client
	index  string
}

func NewSearchCatalog(client *elasticsearch.Client, index string) *SearchCatalog {
	return &SearchCatalog{client: client, index: index}
}

type venueDocument struct {
	Name                    string  `json:"name"`
	Category                string  `json:"category"`
	City                    string  `json:"city"`
	Region                  string  `json:"region"`
	OperationalStatus       string  `json:"operational_status"`
	ConventionHallAvailable string  `json:"convention_hall_available"`
	ConventionHallCapacity  int     `json:"convention_hall_capacity"`
	ProjectorAvailable      string  `json:"projector_available"`
	SpeakersAvailable       string  `json:"speakers_available"`
	MicAvailable            string  `json:"mic_available"`
	StageAvailable          string  `json:"stage_available"`
	LoungeAvailable         string  `json:"lounge_available"`
	RooftopAvailable        string  `json:"rooftop_available"`
	GardenAvailable         string  `json:"garden_available"`
	AmplifiedMusicAllowed   string  `json:"amplified_music_allowed"`
	MealBuffetAvailable     string  `json:"meal_buffet_available"`
	ExternalCateringAllowed string  `json:"external_catering_allowed"`
	HourlyRate              float64 `json:"hourly_rate"`
	HalfDayRate             float64 `json:"half_day_rate"`
	FullDayRate             float64 `json:"full_day_rate"`
	VegMealPerPerson        float64 `json:"veg_meal_per_person"`
	NonVegMealPerPerson     float64 `json:"non_veg_meal_per_person"`
	CleaningFee             float64 `json:"cleaning_fee"`
	SecurityDeposit         float64 `json:"security_deposit"`
	PeakMultiplier          float64 `json:"peak_multiplier"`
	OffPeakMultiplier       float64 `json:"off_peak_multiplier"`
	PeakMonths              []int   `json:"peak_months"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string        `json:"_id"`
			Source venueDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *SearchCatalog) ListActive(ctx context.Context) ([]models.Venue, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"operational_status": string(models.VenueActive),
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"_id": "asc"},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(c.index, err)
	}

	size := searchPageSize
	req := esapi.SearchRequest{
		Index: []string{c.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, errors.NewCatalogReadFailedError("elasticsearch", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, errors.NewIndexNotFoundError(c.index)
	}
	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(c.index, fmt.Errorf("search returned %s", res.Status()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchQueryFailedError(c.index, fmt.Errorf("decode response: %w", err))
	}

	venues := make([]models.Venue, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		venues = append(venues, hit.Source.toVenue(hit.ID))
	}
	return venues, nil
}

func (d venueDocument) toVenue(id string) models.Venue {
	return models.Venue{
		ID:                id,
		Name:              d.Name,
		Category:          d.Category,
		City:              d.City,
		Region:            d.Region,
		OperationalStatus: models.OperationalStatus(d.OperationalStatus),
		Capabilities: models.Capabilities{
			ConventionHallAvailable: models.ParseYesNo(d.ConventionHallAvailable),
			ConventionHallCapacity:  d.ConventionHallCapacity,
			Projector:               models.ParseYesNo(d.ProjectorAvailable),
			Speakers:                models.ParseYesNo(d.SpeakersAvailable),
			Mic:                     models.ParseYesNo(d.MicAvailable),
			Stage:                   models.ParseYesNo(d.StageAvailable),
			Lounge:                  models.ParseYesNo(d.LoungeAvailable),
			Rooftop:                 models.ParseYesNo(d.RooftopAvailable),
			Garden:                  models.ParseYesNo(d.GardenAvailable),
			AmplifiedMusicAllowed:   models.ParseYesNo(d.AmplifiedMusicAllowed),
			MealBuffetAvailable:     models.ParseYesNo(d.MealBuffetAvailable),
			ExternalCateringAllowed: models.ParseYesNo(d.ExternalCateringAllowed),
		},
		RateCard: models.RateCard{
			HourlyRate:          d.HourlyRate,
			HalfDayRate:         d.HalfDayRate,
			FullDayRate:         d.FullDayRate,
			VegMealPerPerson:    d.VegMealPerPerson,
			NonVegMealPerPerson: d.NonVegMealPerPerson,
			CleaningFee:         d.CleaningFee,
			SecurityDeposit:     d.SecurityDeposit,
			PeakMultiplier:      d.PeakMultiplier,
			OffPeakMultiplier:   d.OffPeakMultiplier,
			PeakMonths:          d.PeakMonths,
		},
	}
}
