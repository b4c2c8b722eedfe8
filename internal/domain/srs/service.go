// Package srs implements the scheduling state transition: a Leitner box
// progression fused with an SM-2-style ease factor. Everything here is a
// pure function over review records; persistence and concurrency control
// are the caller's concern.
package srs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shelterwood/mnemo/internal/domain"
)

// Common errors
var (
	ErrInvalidRating = errors.New("invalid rating")
	ErrMissingKeys   = errors.New("review is missing record identifiers")
)

// Review identifies one rating event: which user rated which item, with
// what outcome, and which presentation variant was shown. ChapterNumber is
// carried so a record can be synthesized for a never-rated item without a
// catalog join.
type Review struct {
	UserID          uuid.UUID
	CollectionID    string
	ItemID          string
	ChapterNumber   int
	Rating          domain.Rating
	PresentedFormat string
}

// Service defines the interface for scheduling transitions.
type Service interface {
	// ApplyRating computes the successor record for a review outcome.
	// A nil prior record means the item has never been rated; a default
	// record is synthesized first and the rating applied on top of it.
	// The output always satisfies the ReviewRecord invariants.
	ApplyRating(
		prior *domain.ReviewRecord,
		review Review,
		now time.Time,
	) (*domain.ReviewRecord, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// ApplyRating implements the Service interface.
func (s *defaultService) ApplyRating(
	prior *domain.ReviewRecord,
	review Review,
	now time.Time,
) (*domain.ReviewRecord, error) {
	if !domain.IsValidRating(review.Rating) {
		return nil, ErrInvalidRating
	}

	if prior == nil {
		if review.UserID == uuid.Nil || review.CollectionID == "" || review.ItemID == "" {
			return nil, ErrMissingKeys
		}
		prior = domain.NewReviewRecord(
			review.UserID,
			review.CollectionID,
			review.ItemID,
			review.ChapterNumber,
			now,
		)
	}

	return nextRecord(prior, review.Rating, review.PresentedFormat, now, s.params), nil
}
