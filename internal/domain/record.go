package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Rating represents the learner's self-reported recall quality for one review.
type Rating string

// Possible rating values, ordered by increasing recall quality.
const (
	RatingAgain Rating = "again"
	RatingHard  Rating = "hard"
	RatingGood  Rating = "good"
	RatingEasy  Rating = "easy"
)

// IsValidRating reports whether r is one of the four closed enum values.
// Anything else is an input-validation error and must be rejected before
// the transition function is invoked.
func IsValidRating(r Rating) bool {
	switch r {
	case RatingAgain, RatingHard, RatingGood, RatingEasy:
		return true
	default:
		return false
	}
}

// IsCorrect reports whether the rating counts as a successful recall.
// Correctness is derived, never stored: every rating except "again".
func (r Rating) IsCorrect() bool {
	return r != RatingAgain
}

// Common validation errors for ReviewRecord
var (
	ErrRecordUserIDEmpty     = errors.New("review record user ID cannot be empty")
	ErrRecordCollectionEmpty = errors.New("review record collection ID cannot be empty")
	ErrRecordItemIDEmpty     = errors.New("review record item ID cannot be empty")
	ErrRecordBoxOutOfRange   = errors.New("box must be between 0 and 6")
	ErrRecordEaseOutOfRange  = errors.New("ease must be between 1.3 and 3.0")
	ErrRecordIntervalInvalid = errors.New("interval days must be at least 1")
	ErrInvalidRating         = errors.New("invalid rating")
)

// Box and ease bounds enforced by ReviewRecord.Validate. The scheduling
// parameters in the srs package default to the same values; records written
// by the transition function always satisfy them.
const (
	MinBox  = 0
	MaxBox  = 6
	MinEase = 1.3
	MaxEase = 3.0

	// InitialEase is the ease assigned to an item the first time it is rated.
	InitialEase = 2.5
)

// ReviewRecord tracks a learner's scheduling state for a single item within
// a collection: a Leitner box level fused with an SM-2-style ease factor.
// One record exists per (user, collection, item), created the first time the
// item is rated and rewritten in place on every rating after that.
//
// Version is an optimistic-concurrency counter. The record store refuses a
// save whose base version no longer matches the stored row, so a stale
// read-modify-write cannot silently overwrite a newer rating.
type ReviewRecord struct {
	UserID             uuid.UUID `json:"user_id"`
	CollectionID       string    `json:"collection_id"`
	ItemID             string    `json:"item_id"`
	Box                int       `json:"box"`           // Leitner level, 0-6
	Ease               float64   `json:"ease"`          // SM-2 multiplier, 1.3-3.0
	IntervalDays       int       `json:"interval_days"` // >= 1
	DueDate            time.Time `json:"due_date"`      // day granularity, UTC midnight
	LastReviewedAt     time.Time `json:"last_reviewed_at"`
	ConsecutiveCorrect int       `json:"consecutive_correct"`
	TotalReps          int       `json:"total_reps"`
	ShownFormats       []string  `json:"shown_formats,omitempty"`
	ChapterNumber      int       `json:"chapter_number"` // denormalized from the item
	Version            int       `json:"version"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewReviewRecord creates the default scheduling state for a never-rated
// item: box 0, initial ease, one-day interval due tomorrow. The caller
// applies the first rating on top of this.
func NewReviewRecord(
	userID uuid.UUID,
	collectionID, itemID string,
	chapterNumber int,
	today time.Time,
) *ReviewRecord {
	day := DateOnly(today)
	return &ReviewRecord{
		UserID:             userID,
		CollectionID:       collectionID,
		ItemID:             itemID,
		Box:                0,
		Ease:               InitialEase,
		IntervalDays:       1,
		DueDate:            day.AddDate(0, 0, 1),
		ConsecutiveCorrect: 0,
		TotalReps:          0,
		ChapterNumber:      chapterNumber,
		CreatedAt:          day,
		UpdatedAt:          day,
	}
}

// Validate checks the ReviewRecord invariants.
// Returns an error if any field is out of range.
func (r *ReviewRecord) Validate() error {
	if r.UserID == uuid.Nil {
		return ErrRecordUserIDEmpty
	}

	if r.CollectionID == "" {
		return ErrRecordCollectionEmpty
	}

	if r.ItemID == "" {
		return ErrRecordItemIDEmpty
	}

	if r.Box < MinBox || r.Box > MaxBox {
		return ErrRecordBoxOutOfRange
	}

	if r.Ease < MinEase || r.Ease > MaxEase {
		return ErrRecordEaseOutOfRange
	}

	if r.IntervalDays < 1 {
		return ErrRecordIntervalInvalid
	}

	return nil
}

// IsDue reports whether the record's scheduled review date has arrived,
// comparing at day granularity.
func (r *ReviewRecord) IsDue(today time.Time) bool {
	return !DateOnly(r.DueDate).After(DateOnly(today))
}

// HasShownFormat reports whether the given presentation variant has already
// been used for this item.
func (r *ReviewRecord) HasShownFormat(format string) bool {
	for _, f := range r.ShownFormats {
		if f == format {
			return true
		}
	}
	return false
}

// DateOnly truncates t to midnight UTC. All due-date arithmetic in the
// scheduling core works at day granularity.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
