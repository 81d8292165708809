// internal/inquiry/store.go
package inquiry

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"venue-routing/internal/common/errors"
	"venue-routing/internal/models"

	"github.com/lib/pq"
)

// Store persists event inquiries. Every status write is a conditional UPDATE
// guarded by the set of states allowed to move to the target, and refreshes
// updated_at.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const getInquiryQuery = `
	SELECT id, requester_name, requester_email, requester_phone,
		event_name, event_date, venue_preference, expected_headcount,
		needs_projector, needs_music, needs_catering,
		needs_accommodation, needs_convention_hall, needs_outdoor_area,
		inquiry_status, matched_venue, match_score, match_reasoning,
		alternative_venues, quote_json,
		telegram_chat_id, telegram_message_id, status_notes,
		created_at, updated_at
	FROM event_inquiries
	WHERE id = $1`

// Get loads one inquiry. A missing row is an INQUIRY_NOT_FOUND StandardError.
func (s *Store) Get(ctx context.Context, id string) (*models.EventInquiry, error) {
	var (
		inq          models.EventInquiry
		status       string
		matchedVenue sql.NullString
		matchScore   sql.NullInt64
		reasoning    sql.NullString
		alternatives []byte
		quote        []byte
		chatID       sql.NullInt64
		messageID    sql.NullInt64
		notes        sql.NullString
	)

	err := s.db.QueryRowContext(ctx, getInquiryQuery, id).Scan(
		&inq.ID, &inq.RequesterName, &inq.RequesterEmail, &inq.RequesterPhone,
		&inq.EventName, &inq.EventDate, &inq.VenuePreference, &inq.ExpectedHeadcount,
		&inq.Requirements.NeedsProjector, &inq.Requirements.NeedsMusic, &inq.Requirements.NeedsCatering,
		&inq.Requirements.NeedsAccommodation, &inq.Requirements.NeedsConventionHall, &inq.Requirements.NeedsOutdoorArea,
		&status, &matchedVenue, &matchScore, &reasoning,
		&alternatives, &quote,
		&chatID, &messageID, &notes,
		&inq.CreatedAt, &inq.UpdatedAt,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewInquiryNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get_inquiry", err)
	}

	inq.Status, err = models.ParseInquiryStatus(status)
	if err != nil {
		return nil, errors.NewInquiryValidationFailedError(err.Error())
	}
	inq.MatchedVenue = matchedVenue.String
	inq.MatchScore = int(matchScore.Int64)
	inq.MatchReasoning = reasoning.String
	inq.TelegramChatID = chatID.Int64
	inq.TelegramMessageID = int(messageID.Int64)
	inq.StatusNotes = notes.String

	if len(alternatives) > 0 {
		if err := json.Unmarshal(alternatives, &inq.AlternativeVenues); err != nil {
			return nil, errors.NewInquiryValidationFailedError(fmt.Sprintf("alternative_venues: %v", err))
		}
	}
	if len(quote) > 0 {
		inq.QuoteJSON = json.RawMessage(quote)
	}
	return &inq, nil
}

const insertInquiryQuery = `
	INSERT INTO event_inquiries (
		id, requester_name, requester_email, requester_phone,
		event_name, event_date, venue_preference, expected_headcount,
		needs_projector, needs_music, needs_catering,
		needs_accommodation, needs_convention_hall, needs_outdoor_area,
		inquiry_status, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now())`

// Create inserts a new inquiry in state new.
func (s *Store) Create(ctx context.Context, inq *models.EventInquiry) error {
	_, err := s.db.ExecContext(ctx, insertInquiryQuery,
		inq.ID, inq.RequesterName, inq.RequesterEmail, inq.RequesterPhone,
		inq.EventName, inq.EventDate, inq.VenuePreference, inq.ExpectedHeadcount,
		inq.Requirements.NeedsProjector, inq.Requirements.NeedsMusic, inq.Requirements.NeedsCatering,
		inq.Requirements.NeedsAccommodation, inq.Requirements.NeedsConventionHall, inq.Requirements.NeedsOutdoorArea,
		string(models.StatusNew),
	)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	inq.Status = models.StatusNew
	return nil
}

const saveMatchQuery = `
	UPDATE event_inquiries
	SET matched_venue = $2, match_score = $3, match_reasoning = $4,
		alternative_venues = $5, inquiry_status = $6, updated_at = now()
	WHERE id = $1 AND inquiry_status = ANY($7)`

// SaveMatch writes the match result. A nil best clears the match fields and
// returns the inquiry to new.
func (s *Store) SaveMatch(ctx context.Context, id string, best *models.VenueMatchResult, alternatives []models.VenueMatchResult) (bool, error) {
	if alternatives == nil {
		alternatives = []models.VenueMatchResult{}
	}
	altJSON, err := json.Marshal(alternatives)
	if err != nil {
		return false, errors.NewInquiryValidationFailedError(fmt.Sprintf("alternative_venues: %v", err))
	}

	target := models.StatusNew
	var (
		venue     sql.NullString
		score     sql.NullInt64
		reasoning sql.NullString
	)
	if best != nil {
		target = models.StatusMatched
		venue = sql.NullString{String: best.VenueName, Valid: true}
		score = sql.NullInt64{Int64: int64(best.Score), Valid: true}
		reasoning = sql.NullString{String: best.Reasoning, Valid: true}
	}

	return s.update(ctx, "save_match", saveMatchQuery,
		id, venue, score, reasoning, string(altJSON), string(target), statusArray(models.SourcesOf(target)))
}

const claimQuery = `
	UPDATE event_inquiries
	SET inquiry_status = $2, updated_at = now()
	WHERE id = $1 AND quote_json IS NULL AND inquiry_status = ANY($3)`

// Claim atomically moves an unquoted inquiry to quoting. It reports true for
// exactly one of any number of concurrent callers.
func (s *Store) Claim(ctx context.Context, id string) (bool, error) {
	return s.update(ctx, "claim", claimQuery,
		id, string(models.StatusQuoting), statusArray(models.SourcesOf(models.StatusQuoting)))
}

const saveQuoteQuery = `
	UPDATE event_inquiries
	SET quote_json = $2, inquiry_status = $3, updated_at = now()
	WHERE id = $1 AND inquiry_status = ANY($4)`

func (s *Store) SaveQuote(ctx context.Context, id string, quote json.RawMessage) (bool, error) {
	return s.update(ctx, "save_quote", saveQuoteQuery,
		id, string(quote), string(models.StatusQuoted), statusArray(models.SourcesOf(models.StatusQuoted)))
}

const markReviewingQuery = `
	UPDATE event_inquiries
	SET inquiry_status = $2, telegram_chat_id = $3, telegram_message_id = $4, updated_at = now()
	WHERE id = $1 AND inquiry_status = ANY($5)`

// MarkReviewing records the posted card handle.
func (s *Store) MarkReviewing(ctx context.Context, id string, handle models.MessageHandle) (bool, error) {
	return s.update(ctx, "mark_reviewing", markReviewingQuery,
		id, string(models.StatusReviewing), handle.ChatID, int64(handle.MessageID),
		statusArray(models.ManualReviewSources()))
}

const markStatusWithNotesQuery = `
	UPDATE event_inquiries
	SET inquiry_status = $2, status_notes = $3, updated_at = now()
	WHERE id = $1 AND inquiry_status = ANY($4)`

func (s *Store) MarkPushFailed(ctx context.Context, id, notes string) (bool, error) {
	return s.update(ctx, "mark_push_failed", markStatusWithNotesQuery,
		id, string(models.StatusPushFailed), notes, statusArray(models.SourcesOf(models.StatusPushFailed)))
}

// MarkManualReview hands the inquiry back to a reviewer. from narrows the
// allowed source states; every entry must be a legal source of reviewing.
func (s *Store) MarkManualReview(ctx context.Context, id, notes string, from []models.InquiryStatus) (bool, error) {
	for _, st := range from {
		if !models.CanTransition(st, models.StatusReviewing) {
			return false, errors.NewInvalidStatusTransitionError(id, string(st), string(models.StatusReviewing))
		}
	}
	return s.update(ctx, "mark_manual_review", markStatusWithNotesQuery,
		id, string(models.StatusReviewing), notes, statusArray(from))
}

func (s *Store) update(ctx context.Context, op, query string, args ...interface{}) (bool, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, errors.NewQueryExecutionFailedError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewQueryExecutionFailedError(op, err)
	}
	return n == 1, nil
}

func statusArray(statuses []models.InquiryStatus) interface{} {
	return pq.Array(models.StatusStrings(statuses))
}
