package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shelterwood/mnemo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReview(rating domain.Rating) Review {
	return Review{
		UserID:        uuid.New(),
		CollectionID:  "col-1",
		ItemID:        "item-1",
		ChapterNumber: 2,
		Rating:        rating,
	}
}

func TestApplyRatingFirstReviewGood(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	// New item, rating Good on 2024-01-01: box 1, ease unchanged,
	// interval round(1 * 2.5) = 3, due 2024-01-04.
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	rec, err := svc.ApplyRating(nil, testReview(domain.RatingGood), now)
	require.NoError(t, err)

	assert.Equal(t, 1, rec.Box)
	assert.Equal(t, 2.5, rec.Ease)
	assert.Equal(t, 3, rec.IntervalDays)
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), rec.DueDate)
	assert.Equal(t, 1, rec.ConsecutiveCorrect)
	assert.Equal(t, 1, rec.TotalReps)
	assert.Equal(t, now, rec.LastReviewedAt)
}

func TestApplyRatingAgainResetsSchedule(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	now := time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)
	prior := &domain.ReviewRecord{
		UserID:             uuid.New(),
		CollectionID:       "col-1",
		ItemID:             "item-1",
		Box:                1,
		Ease:               2.5,
		IntervalDays:       3,
		ConsecutiveCorrect: 4,
		TotalReps:          6,
	}

	rec, err := svc.ApplyRating(prior, testReview(domain.RatingAgain), now)
	require.NoError(t, err)

	assert.Equal(t, 0, rec.Box)
	assert.Equal(t, 2.3, rec.Ease)
	assert.Equal(t, 1, rec.IntervalDays)
	assert.Equal(t, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), rec.DueDate)
	assert.Equal(t, 0, rec.ConsecutiveCorrect)
	assert.Equal(t, 7, rec.TotalReps)
}

func TestApplyRatingEasyAtCeiling(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	prior := &domain.ReviewRecord{
		UserID:       uuid.New(),
		CollectionID: "col-1",
		ItemID:       "item-1",
		Box:          5,
		Ease:         3.0,
		IntervalDays: 30,
	}

	rec, err := svc.ApplyRating(prior, testReview(domain.RatingEasy), now)
	require.NoError(t, err)

	// Ease stays clamped at the ceiling; interval round(30*3.0*1.5)=135 is
	// under the box-6 cap of 360 days; box jumps two levels to 6.
	assert.Equal(t, 3.0, rec.Ease)
	assert.Equal(t, 135, rec.IntervalDays)
	assert.Equal(t, 6, rec.Box)
}

func TestApplyRatingHardDropsBox(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	prior := &domain.ReviewRecord{
		UserID:       uuid.New(),
		CollectionID: "col-1",
		ItemID:       "item-1",
		Box:          3,
		Ease:         2.5,
		IntervalDays: 10,
	}

	rec, err := svc.ApplyRating(prior, testReview(domain.RatingHard), now)
	require.NoError(t, err)

	// Ease 2.5-0.10=2.4, interval round(10*2.4)=24, box drops to 2,
	// then the interval is capped at 2*boxInterval[2]=14.
	assert.Equal(t, 2.4, rec.Ease)
	assert.Equal(t, 2, rec.Box)
	assert.Equal(t, 14, rec.IntervalDays)
}

func TestApplyRatingHardAtBoxZero(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	prior := &domain.ReviewRecord{
		UserID:       uuid.New(),
		CollectionID: "col-1",
		ItemID:       "item-1",
		Box:          0,
		Ease:         1.3,
		IntervalDays: 1,
	}

	rec, err := svc.ApplyRating(prior, testReview(domain.RatingHard), now)
	require.NoError(t, err)

	// Box cannot go below 0 and ease cannot go below the floor.
	assert.Equal(t, 0, rec.Box)
	assert.Equal(t, 1.3, rec.Ease)
	// round(1*1.3)=1, within the box-0 cap of 2.
	assert.Equal(t, 1, rec.IntervalDays)
}

func TestApplyRatingInvariantsHoldForAllRatings(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2024, 2, 2, 12, 0, 0, 0, time.UTC)

	ratings := []domain.Rating{
		domain.RatingAgain, domain.RatingHard, domain.RatingGood, domain.RatingEasy,
	}

	// Walk a variety of starting states through every rating and check the
	// record invariants plus the due-date relation.
	priors := []*domain.ReviewRecord{
		nil,
		{Box: 0, Ease: 1.3, IntervalDays: 1},
		{Box: 2, Ease: 2.1, IntervalDays: 5},
		{Box: 6, Ease: 3.0, IntervalDays: 360},
		{Box: 4, Ease: 1.3, IntervalDays: 60},
	}

	for _, prior := range priors {
		if prior != nil {
			prior.UserID = uuid.New()
			prior.CollectionID = "col-1"
			prior.ItemID = "item-1"
		}
		for _, rating := range ratings {
			rec, err := svc.ApplyRating(prior, testReview(rating), now)
			require.NoError(t, err)

			require.NoError(t, rec.Validate())
			assert.GreaterOrEqual(t, rec.Box, domain.MinBox)
			assert.LessOrEqual(t, rec.Box, domain.MaxBox)
			assert.GreaterOrEqual(t, rec.Ease, domain.MinEase)
			assert.LessOrEqual(t, rec.Ease, domain.MaxEase)
			assert.GreaterOrEqual(t, rec.IntervalDays, 1)

			wantDue := domain.DateOnly(now).AddDate(0, 0, rec.IntervalDays)
			assert.Equal(t, wantDue, rec.DueDate, "due date must be review date plus interval")

			if rating == domain.RatingAgain {
				assert.Equal(t, 0, rec.Box)
				assert.Equal(t, 1, rec.IntervalDays)
				assert.Equal(t, 0, rec.ConsecutiveCorrect)
			}
		}
	}
}

func TestApplyRatingRejectsInvalidRating(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	_, err := svc.ApplyRating(nil, testReview(domain.Rating("flawless")), time.Now())
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestApplyRatingRejectsMissingKeys(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	rev := testReview(domain.RatingGood)
	rev.ItemID = ""

	_, err := svc.ApplyRating(nil, rev, time.Now())
	assert.ErrorIs(t, err, ErrMissingKeys)
}

func TestApplyRatingRecordsPresentedFormatOnce(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now().UTC()

	rev := testReview(domain.RatingGood)
	rev.PresentedFormat = "cloze"

	first, err := svc.ApplyRating(nil, rev, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"cloze"}, first.ShownFormats)

	second, err := svc.ApplyRating(first, rev, now.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, []string{"cloze"}, second.ShownFormats)

	rev.PresentedFormat = "multiple_choice"
	third, err := svc.ApplyRating(second, rev, now.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, []string{"cloze", "multiple_choice"}, third.ShownFormats)
}

func TestApplyRatingDoesNotMutatePrior(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	prior := &domain.ReviewRecord{
		UserID:       uuid.New(),
		CollectionID: "col-1",
		ItemID:       "item-1",
		Box:          2,
		Ease:         2.5,
		IntervalDays: 7,
		ShownFormats: []string{"free_text"},
	}
	snapshot := *prior

	_, err := svc.ApplyRating(prior, testReview(domain.RatingEasy), time.Now())
	require.NoError(t, err)

	assert.Equal(t, snapshot.Box, prior.Box)
	assert.Equal(t, snapshot.Ease, prior.Ease)
	assert.Equal(t, snapshot.IntervalDays, prior.IntervalDays)
	assert.Equal(t, []string{"free_text"}, prior.ShownFormats)
}

func TestEaseRoundedToTwoDecimals(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	prior := &domain.ReviewRecord{
		UserID:       uuid.New(),
		CollectionID: "col-1",
		ItemID:       "item-1",
		Box:          1,
		Ease:         2.37,
		IntervalDays: 3,
	}

	rec, err := svc.ApplyRating(prior, testReview(domain.RatingHard), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2.27, rec.Ease)
}
