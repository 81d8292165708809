// internal/venue/catalog_test.go
package venue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	apperrors "venue-routing/internal/common/errors"
	"venue-routing/internal/common/logger"
	"venue-routing/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var venueColumns = []string{
	"id", "name", "category", "city", "region", "operational_status",
	"convention_hall_available", "convention_hall_capacity",
	"projector_available", "speakers_available", "mic_available", "stage_available",
	"lounge_available", "rooftop_available", "garden_available",
	"amplified_music_allowed", "meal_buffet_available", "external_catering_allowed",
	"hourly_rate", "half_day_rate", "full_day_rate",
	"veg_meal_per_person", "non_veg_meal_per_person",
	"cleaning_fee", "security_deposit",
	"peak_multiplier", "off_peak_multiplier", "peak_months",
}

// ==========================
// PostgresCatalog
// ==========================

func TestPostgresCatalog_ListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(venueColumns).
		AddRow("v-goa", "Zo House Goa", "Zo Houses", "Goa", "West", "Active",
			"Yes", 120,
			"Yes", "No", "yes", "No",
			"No", "Yes", "No",
			"No", "Yes", "No",
			2500.0, 9000.0, 16000.0,
			450.0, 600.0,
			1500.0, 5000.0,
			1.25, 0.9, "{11,12,1}").
		AddRow("v-leh", "Zostel Leh", "Zostel", "Leh", "North", "Active",
			"No", 0,
			"No", "No", "No", "No",
			"Yes", "No", "Yes",
			"No", "No", "Yes",
			0.0, 0.0, 0.0,
			0.0, 0.0,
			0.0, 0.0,
			1.0, 1.0, "{}")

	mock.ExpectQuery(regexp.QuoteMeta("FROM venues")+`\s+WHERE operational_status = \$1`).
		WithArgs("Active").
		WillReturnRows(rows)

	venues, err := NewPostgresCatalog(db).ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, venues, 2)

	goa := venues[0]
	assert.Equal(t, "Zo House Goa", goa.Name)
	assert.True(t, goa.IsActive())
	assert.True(t, goa.IsPremium())
	assert.True(t, goa.Capabilities.ConventionHallAvailable)
	assert.Equal(t, 120, goa.Capabilities.ConventionHallCapacity)
	assert.True(t, goa.Capabilities.Projector)
	assert.True(t, goa.Capabilities.Mic)
	assert.False(t, goa.Capabilities.Speakers)
	assert.True(t, goa.Capabilities.Rooftop)
	assert.True(t, goa.Capabilities.MealBuffetAvailable)
	assert.Equal(t, 16000.0, goa.RateCard.FullDayRate)
	assert.Equal(t, []int{11, 12, 1}, goa.RateCard.PeakMonths)

	leh := venues[1]
	assert.True(t, leh.Capabilities.Lounge)
	assert.True(t, leh.Capabilities.Garden)
	assert.True(t, leh.Capabilities.ExternalCateringAllowed)
	assert.False(t, leh.RateCard.HasPricing())
	assert.Empty(t, leh.RateCard.PeakMonths)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_ListActiveQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM venues").WillReturnError(errors.New("connection reset"))

	_, err = NewPostgresCatalog(db).ListActive(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCatalogReadFailed))
}

func TestPostgresCatalog_FindByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE name = \$1`).
		WithArgs("Zo House Goa").
		WillReturnRows(sqlmock.NewRows(venueColumns).
			AddRow("v-goa", "Zo House Goa", "Zo Houses", "Goa", "West", "Inactive",
				"No", 0, "No", "No", "No", "No", "No", "No", "No", "No", "No", "No",
				0.0, 0.0, 16000.0, 0.0, 0.0, 0.0, 0.0, 1.0, 1.0, nil))
	mock.ExpectQuery(`WHERE name = \$1`).
		WithArgs("Missing").
		WillReturnRows(sqlmock.NewRows(venueColumns))

	catalog := NewPostgresCatalog(db)

	v, err := catalog.FindByName(context.Background(), "Zo House Goa")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "v-goa", v.ID)
	assert.False(t, v.IsActive())

	v, err = catalog.FindByName(context.Background(), "Missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// CachedCatalog
// ==========================

func TestCachedCatalog_MissLoadsAndStores(t *testing.T) {
	client, mock := redismock.NewClientMock()
	venues := []models.Venue{createTestVenue("goa", "Goa")}
	data, _ := json.Marshal(venues)

	mock.ExpectGet(activeVenuesKey).RedisNil()
	mock.ExpectSet(activeVenuesKey, string(data), 5*time.Minute).SetVal("OK")

	next := &stubCatalog{venues: venues}
	cached := NewCachedCatalog(next, client, 5*time.Minute, logger.NewTestLogger(t))

	got, err := cached.ListActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, venues, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedCatalog_HitSkipsSource(t *testing.T) {
	client, mock := redismock.NewClientMock()
	venues := []models.Venue{createTestVenue("goa", "Goa"), createTestVenue("leh", "Leh")}
	data, _ := json.Marshal(venues)

	mock.ExpectGet(activeVenuesKey).SetVal(string(data))

	next := &stubCatalog{err: errors.New("source must not be read on a hit")}
	cached := NewCachedCatalog(next, client, time.Minute, logger.NewTestLogger(t))

	got, err := cached.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "leh", got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedCatalog_RedisDownFallsThrough(t *testing.T) {
	client, mock := redismock.NewClientMock()
	venues := []models.Venue{createTestVenue("goa", "Goa")}
	data, _ := json.Marshal(venues)

	mock.ExpectGet(activeVenuesKey).SetErr(errors.New("dial tcp: connection refused"))
	mock.ExpectSet(activeVenuesKey, string(data), time.Minute).SetErr(errors.New("dial tcp: connection refused"))

	cached := NewCachedCatalog(&stubCatalog{venues: venues}, client, time.Minute, logger.NewTestLogger(t))

	got, err := cached.ListActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, venues, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedCatalog_EmptyAndErrorsAreNotCached(t *testing.T) {
	client, mock := redismock.NewClientMock()

	mock.ExpectGet(activeVenuesKey).RedisNil()
	cached := NewCachedCatalog(&stubCatalog{}, client, time.Minute, logger.NewTestLogger(t))
	got, err := cached.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	mock.ExpectGet(activeVenuesKey).RedisNil()
	cached = NewCachedCatalog(&stubCatalog{err: errors.New("boom")}, client, time.Minute, logger.NewTestLogger(t))
	_, err = cached.ListActive(context.Background())
	assert.EqualError(t, err, "boom")

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// SearchCatalog
// ==========================

func createTestSearchCatalog(t *testing.T, handler http.HandlerFunc) *SearchCatalog {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewSearchCatalog(client, "venues")
}

func TestSearchCatalog_ListActive(t *testing.T) {
	var body map[string]interface{}
	catalog := createTestSearchCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/venues/_search", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{
			"took": 2,
			"hits": {
				"total": {"value": 1, "relation": "eq"},
				"hits": [{
					"_id": "v-goa",
					"_source": {
						"name": "Zo House Goa",
						"category": "Zo Houses",
						"city": "Goa",
						"region": "West",
						"operational_status": "Active",
						"convention_hall_available": "Yes",
						"convention_hall_capacity": 80,
						"projector_available": "Yes",
						"rooftop_available": "No",
						"meal_buffet_available": "Yes",
						"full_day_rate": 16000,
						"peak_multiplier": 1.25,
						"peak_months": [12, 1]
					}
				}]
			}
		}`))
	})

	venues, err := catalog.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, venues, 1)

	v := venues[0]
	assert.Equal(t, "v-goa", v.ID)
	assert.True(t, v.IsActive())
	assert.True(t, v.Capabilities.ConventionHallAvailable)
	assert.Equal(t, 80, v.Capabilities.ConventionHallCapacity)
	assert.False(t, v.Capabilities.Rooftop)
	assert.Equal(t, []int{12, 1}, v.RateCard.PeakMonths)

	term := body["query"].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, "Active", term["operational_status"])
}

func TestSearchCatalog_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode apperrors.ErrorCode
	}{
		{"missing index", http.StatusNotFound, apperrors.ErrCodeIndexNotFound},
		{"server error", http.StatusInternalServerError, apperrors.ErrCodeSearchQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := createTestSearchCatalog(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"type":"search_failure"}}`))
			})

			_, err := catalog.ListActive(context.Background())
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}
