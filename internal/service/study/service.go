// Package study coordinates the scheduling core: it loads catalog items and
// review records from storage, runs the rating transition, batch selection,
// and mastery aggregation, and persists the results.
package study

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shelterwood/mnemo/internal/domain"
	"github.com/shelterwood/mnemo/internal/mastery"
	"github.com/shelterwood/mnemo/internal/session"
)

// RatingSubmission is a learner's self-assessment of one presented item.
type RatingSubmission struct {
	Rating domain.Rating `json:"rating"`

	// PresentedFormat optionally names the presentation format the item
	// was shown in, recorded on the review history.
	PresentedFormat string `json:"presented_format,omitempty"`
}

// RatingResult is the outcome of applying one rating.
type RatingResult struct {
	// Record is the persisted post-rating scheduling state.
	Record *domain.ReviewRecord `json:"record"`

	// WasCorrect reports whether the rating counts as a successful recall.
	WasCorrect bool `json:"was_correct"`

	// Streak is the learner's consecutive-correct run on this item after
	// the rating was applied.
	Streak int `json:"streak"`
}

// StudyService provides the external operations of the scheduling engine.
type StudyService interface {
	// RateItem applies a learner's rating to one item and persists the
	// updated scheduling state.
	//
	// Returns:
	//   - (nil, ErrInvalidRating): the rating is not one of the four values
	//   - (nil, ErrItemNotFound): the item does not exist in the collection
	//   - (nil, ErrRatingConflict): concurrent ratings exhausted the retry budget
	//   - (nil, error): any other storage failure
	RateItem(
		ctx context.Context,
		userID uuid.UUID,
		collectionID, itemID string,
		submission RatingSubmission,
	) (*RatingResult, error)

	// GetNextBatch builds the ordered study batch for one session. An empty
	// batch is a valid outcome, not an error.
	//
	// Returns ErrCollectionNotFound when the collection has no items, and
	// session.ErrInvalidMode / session.ErrInvalidScope for bad requests.
	GetNextBatch(
		ctx context.Context,
		userID uuid.UUID,
		req session.BatchRequest,
	) (session.BatchResult, error)

	// GetMasteryStats computes the learner's mastery summary for a
	// collection: per-chapter progress, overall totals, and strongest
	// concepts.
	//
	// Returns ErrCollectionNotFound when the collection has no items.
	GetMasteryStats(
		ctx context.Context,
		userID uuid.UUID,
		collectionID string,
	) (mastery.Summary, error)
}

// Common error types for StudyService
var (
	// ErrInvalidRating indicates the submitted rating is not one of the
	// four recognized values.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrItemNotFound indicates the item does not exist in the collection.
	ErrItemNotFound = errors.New("item not found")

	// ErrCollectionNotFound indicates the collection has no items.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrRatingConflict indicates concurrent ratings of the same item kept
	// invalidating the read state and the retry budget ran out.
	ErrRatingConflict = errors.New("rating conflicts with a concurrent update")
)

// ServiceError wraps errors from the study service with operation context,
// so consumers can differentiate failures with errors.As instead of string
// matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g. "rate_item").
	Operation string
	// Message is a human-readable description of the error.
	Message string
	// Err is the underlying error that caused the failure.
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewRateItemError returns a new ServiceError for the rate_item operation.
func NewRateItemError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "rate_item", Message: message, Err: err}
}

// NewNextBatchError returns a new ServiceError for the next_batch operation.
func NewNextBatchError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "next_batch", Message: message, Err: err}
}

// NewMasteryStatsError returns a new ServiceError for the mastery_stats operation.
func NewMasteryStatsError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "mastery_stats", Message: message, Err: err}
}
