// internal/workers/inquiry/create-inquiry-record/handler_test.go
package createinquiryrecord

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"venue-routing/internal/common/config"
	apperrors "venue-routing/internal/common/errors"
	"venue-routing/internal/common/logger"
	"venue-routing/internal/inquiry"
	"venue-routing/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewHandler(&Config{Timeout: time.Second}, inquiry.NewStore(db), logger.NewTestLogger(t)), mock
}

func createTestInput() *Input {
	return &Input{
		RequesterName:     "  Asha Rao ",
		RequesterEmail:    "Asha@Example.com",
		RequesterPhone:    "+91 98765 43210",
		EventName:         "Founders offsite",
		EventDate:         "2026-12-20",
		VenuePreference:   "Goa",
		ExpectedHeadcount: "50 people",
		Requirements:      models.Requirements{NeedsCatering: true},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	handler, mock := createTestHandler(t)

	mock.ExpectExec(`INSERT INTO event_inquiries`).
		WithArgs(
			sqlmock.AnyArg(),
			"Asha Rao",
			"asha@example.com",
			"+91 98765 43210",
			"Founders offsite",
			"2026-12-20",
			"Goa",
			"50 people",
			false, false, true, false, false, false,
			"new",
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	_, perr := uuid.Parse(output.InquiryID)
	assert.NoError(t, perr)
	assert.Equal(t, "new", output.InquiryStatus)
	assert.Equal(t, 50, output.Headcount)
	assert.NotEmpty(t, output.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NumericHeadcount(t *testing.T) {
	handler, mock := createTestHandler(t)

	var input Input
	require.NoError(t, json.Unmarshal([]byte(`{
		"requesterName": "Ravi",
		"requesterEmail": "ravi@example.com",
		"venuePreference": "",
		"expectedHeadcount": 120
	}`), &input))

	mock.ExpectExec(`INSERT INTO event_inquiries`).
		WithArgs(sqlmock.AnyArg(), "Ravi", "ravi@example.com", "", "", "", "", "120",
			false, false, false, false, false, false, "new").
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := handler.Execute(context.Background(), &input)

	require.NoError(t, err)
	assert.Equal(t, 120, output.Headcount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Validation Tests
// ==========================

func TestHandler_Execute_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing name", func(in *Input) { in.RequesterName = "" }},
		{"bad email", func(in *Input) { in.RequesterEmail = "not-an-email" }},
		{"bad date", func(in *Input) { in.EventDate = "20/12/2026" }},
		{"fractional headcount", func(in *Input) { in.ExpectedHeadcount = 12.5 }},
		{"negative headcount", func(in *Input) { in.ExpectedHeadcount = -3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mock := createTestHandler(t)
			input := createTestInput()
			tt.mutate(input)

			output, err := handler.Execute(context.Background(), input)

			assert.Nil(t, output)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInquiryValidationFailed))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_InsertFails(t *testing.T) {
	handler, mock := createTestHandler(t)

	mock.ExpectExec(`INSERT INTO event_inquiries`).
		WillReturnError(errors.New("duplicate key"))

	output, err := handler.Execute(context.Background(), createTestInput())

	assert.Nil(t, output)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatabaseInsertFailed))
}

func TestNormalizeHeadcount(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{" 80-100 ", "80-100"},
		{float64(45), "45"},
		{json.Number("60"), "60"},
		{7, "7"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeHeadcount(tt.in))
	}
}

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, 10*time.Second, LoadConfig(config.WorkerConfig{}).Timeout)
	assert.Equal(t, 2500*time.Millisecond, LoadConfig(config.WorkerConfig{Timeout: 2500}).Timeout)
}
