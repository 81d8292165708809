// internal/common/database/schema.go
package database

// Capability columns keep the catalog's "Yes"/"No" text; readers parse them.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS venues (
		id                         TEXT PRIMARY KEY,
		name                       TEXT NOT NULL,
		category                   TEXT NOT NULL DEFAULT '',
		city                       TEXT NOT NULL DEFAULT '',
		region                     TEXT NOT NULL DEFAULT '',
		operational_status         TEXT NOT NULL DEFAULT 'Active',
		convention_hall_available  TEXT NOT NULL DEFAULT 'No',
		convention_hall_capacity   INTEGER NOT NULL DEFAULT 0,
		projector_available        TEXT NOT NULL DEFAULT 'No',
		speakers_available         TEXT NOT NULL DEFAULT 'No',
		mic_available              TEXT NOT NULL DEFAULT 'No',
		stage_available            TEXT NOT NULL DEFAULT 'No',
		lounge_available           TEXT NOT NULL DEFAULT 'No',
		rooftop_available          TEXT NOT NULL DEFAULT 'No',
		garden_available           TEXT NOT NULL DEFAULT 'No',
		amplified_music_allowed    TEXT NOT NULL DEFAULT 'No',
		meal_buffet_available      TEXT NOT NULL DEFAULT 'No',
		external_catering_allowed  TEXT NOT NULL DEFAULT 'No',
		hourly_rate                NUMERIC NOT NULL DEFAULT 0,
		half_day_rate              NUMERIC NOT NULL DEFAULT 0,
		full_day_rate              NUMERIC NOT NULL DEFAULT 0,
		veg_meal_per_person        NUMERIC NOT NULL DEFAULT 0,
		non_veg_meal_per_person    NUMERIC NOT NULL DEFAULT 0,
		cleaning_fee               NUMERIC NOT NULL DEFAULT 0,
		security_deposit           NUMERIC NOT NULL DEFAULT 0,
		peak_multiplier            NUMERIC NOT NULL DEFAULT 1,
		off_peak_multiplier        NUMERIC NOT NULL DEFAULT 1,
		peak_months                INTEGER[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS venues_operational_status_idx ON venues (operational_status)`,
	`CREATE TABLE IF NOT EXISTS event_inquiries (
		id                    UUID PRIMARY KEY,
		requester_name        TEXT NOT NULL,
		requester_email       TEXT NOT NULL,
		requester_phone       TEXT NOT NULL DEFAULT '',
		event_name            TEXT NOT NULL DEFAULT '',
		event_date            TEXT NOT NULL DEFAULT '',
		venue_preference      TEXT NOT NULL DEFAULT '',
		expected_headcount    TEXT NOT NULL DEFAULT '',
		needs_projector       BOOLEAN NOT NULL DEFAULT FALSE,
		needs_music           BOOLEAN NOT NULL DEFAULT FALSE,
		needs_catering        BOOLEAN NOT NULL DEFAULT FALSE,
		needs_accommodation   BOOLEAN NOT NULL DEFAULT FALSE,
		needs_convention_hall BOOLEAN NOT NULL DEFAULT FALSE,
		needs_outdoor_area    BOOLEAN NOT NULL DEFAULT FALSE,
		inquiry_status        TEXT NOT NULL DEFAULT 'new',
		matched_venue         TEXT,
		match_score           INTEGER,
		match_reasoning       TEXT,
		alternative_venues    JSONB NOT NULL DEFAULT '[]',
		quote_json            JSONB,
		telegram_chat_id      BIGINT,
		telegram_message_id   BIGINT,
		status_notes          TEXT,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS event_inquiries_status_idx ON event_inquiries (inquiry_status)`,
}
