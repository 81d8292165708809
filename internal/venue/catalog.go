// internal/venue/catalog.go
package venue

import (
	"context"
	"database/sql"

	"venue-routing/internal/common/errors"
	"venue-routing/internal/models"

	"github.com/lib/pq"
)

// CatalogReader lists the venues eligible for matching.
type CatalogReader interface {
	ListActive(ctx context.Context) ([]models.Venue, error)
}

const venueSelect = `
	SELECT id, name, category, city, region, operational_status,
		convention_hall_available, convention_hall_capacity,
		projector_available, speakers_available, mic_available, stage_available,
		lounge_available, rooftop_available, garden_available,
		amplified_music_allowed, meal_buffet_available, external_catering_allowed,
		hourly_rate, half_day_rate, full_day_rate,
		veg_meal_per_person, non_veg_meal_per_person,
		cleaning_fee, security_deposit,
		peak_multiplier, off_peak_multiplier, peak_months
	FROM venues`

const listActiveQuery = venueSelect + `
	WHERE operational_status = $1
	ORDER BY id`

type PostgresCatalog struct {
	db *sql.DB
}

func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

func (c *PostgresCatalog) ListActive(ctx context.Context) ([]models.Venue, error) {
	rows, err := c.db.QueryContext(ctx, listActiveQuery, string(models.VenueActive))
	if err != nil {
		return nil, errors.NewCatalogReadFailedError("postgres", err)
	}
	defer rows.Close()

	var venues []models.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, errors.NewCatalogReadFailedError("postgres", err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewCatalogReadFailedError("postgres", err)
	}
	return venues, nil
}

func scanVenue(rows *sql.Rows) (models.Venue, error) {
	var (
		v          models.Venue
		status     string
		flags      [11]string
		peakMonths pq.Int64Array
	)

	err := rows.Scan(
		&v.ID, &v.Name, &v.Category, &v.City, &v.Region, &status,
		&flags[0], &v.Capabilities.ConventionHallCapacity,
		&flags[1], &flags[2], &flags[3], &flags[4],
		&flags[5], &flags[6], &flags[7],
		&flags[8], &flags[9], &flags[10],
		&v.RateCard.HourlyRate, &v.RateCard.HalfDayRate, &v.RateCard.FullDayRate,
		&v.RateCard.VegMealPerPerson, &v.RateCard.NonVegMealPerPerson,
		&v.RateCard.CleaningFee, &v.RateCard.SecurityDeposit,
		&v.RateCard.PeakMultiplier, &v.RateCard.OffPeakMultiplier, &peakMonths,
	)
	if err != nil {
		return v, err
	}

	v.OperationalStatus = models.OperationalStatus(status)
	v.Capabilities.ConventionHallAvailable = models.ParseYesNo(flags[0])
	v.Capabilities.Projector = models.ParseYesNo(flags[1])
	v.Capabilities.Speakers = models.ParseYesNo(flags[2])
	v.Capabilities.Mic = models.ParseYesNo(flags[3])
	v.Capabilities.Stage = models.ParseYesNo(flags[4])
	v.Capabilities.Lounge = models.ParseYesNo(flags[5])
	v.Capabilities.Rooftop = models.ParseYesNo(flags[6])
	v.Capabilities.Garden = models.ParseYesNo(flags[7])
	v.Capabilities.AmplifiedMusicAllowed = models.ParseYesNo(flags[8])
	v.Capabilities.MealBuffetAvailable = models.ParseYesNo(flags[9])
	v.Capabilities.ExternalCateringAllowed = models.ParseYesNo(flags[10])

	for _, m := range peakMonths {
		v.RateCard.PeakMonths = append(v.RateCard.PeakMonths, int(m))
	}
	return v, nil
}

// FindByName returns the venue an inquiry was matched to, regardless of
// operational status. A missing venue is (nil, nil).
func (c *PostgresCatalog) FindByName(ctx context.Context, name string) (*models.Venue, error) {
	rows, err := c.db.QueryContext(ctx, findVenueQuery, name)
	if err != nil {
		return nil, errors.NewCatalogReadFailedError("postgres", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.NewCatalogReadFailedError("postgres", err)
		}
		return nil, nil
	}
	v, err := scanVenue(rows)
	if err != nil {
		return nil, errors.NewCatalogReadFailedError("postgres", err)
	}
	return &v, nil
}

const findVenueQuery = venueSelect + `
	WHERE name = $1
	ORDER BY id
	LIMIT 1`
