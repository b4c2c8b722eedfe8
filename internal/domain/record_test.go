package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReviewRecord(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	today := time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)

	rec := NewReviewRecord(userID, "col-1", "item-1", 3, today)

	assert.Equal(t, 0, rec.Box)
	assert.Equal(t, InitialEase, rec.Ease)
	assert.Equal(t, 1, rec.IntervalDays)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), rec.DueDate)
	assert.Equal(t, 0, rec.ConsecutiveCorrect)
	assert.Equal(t, 0, rec.TotalReps)
	assert.Equal(t, 3, rec.ChapterNumber)

	require.NoError(t, rec.Validate())
}

func TestReviewRecordValidate(t *testing.T) {
	t.Parallel()

	valid := func() *ReviewRecord {
		return &ReviewRecord{
			UserID:       uuid.New(),
			CollectionID: "col-1",
			ItemID:       "item-1",
			Box:          2,
			Ease:         2.5,
			IntervalDays: 7,
		}
	}

	testCases := []struct {
		name    string
		mutate  func(*ReviewRecord)
		wantErr error
	}{
		{
			name:    "valid record",
			mutate:  func(r *ReviewRecord) {},
			wantErr: nil,
		},
		{
			name:    "missing user ID",
			mutate:  func(r *ReviewRecord) { r.UserID = uuid.Nil },
			wantErr: ErrRecordUserIDEmpty,
		},
		{
			name:    "missing collection ID",
			mutate:  func(r *ReviewRecord) { r.CollectionID = "" },
			wantErr: ErrRecordCollectionEmpty,
		},
		{
			name:    "missing item ID",
			mutate:  func(r *ReviewRecord) { r.ItemID = "" },
			wantErr: ErrRecordItemIDEmpty,
		},
		{
			name:    "box below range",
			mutate:  func(r *ReviewRecord) { r.Box = -1 },
			wantErr: ErrRecordBoxOutOfRange,
		},
		{
			name:    "box above range",
			mutate:  func(r *ReviewRecord) { r.Box = 7 },
			wantErr: ErrRecordBoxOutOfRange,
		},
		{
			name:    "ease below range",
			mutate:  func(r *ReviewRecord) { r.Ease = 1.2 },
			wantErr: ErrRecordEaseOutOfRange,
		},
		{
			name:    "ease above range",
			mutate:  func(r *ReviewRecord) { r.Ease = 3.1 },
			wantErr: ErrRecordEaseOutOfRange,
		},
		{
			name:    "interval below one day",
			mutate:  func(r *ReviewRecord) { r.IntervalDays = 0 },
			wantErr: ErrRecordIntervalInvalid,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := valid()
			tc.mutate(rec)

			err := rec.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestReviewRecordIsDue(t *testing.T) {
	t.Parallel()

	today := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name    string
		dueDate time.Time
		want    bool
	}{
		{
			name:    "overdue by days",
			dueDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			want:    true,
		},
		{
			name:    "due today regardless of time of day",
			dueDate: time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC),
			want:    true,
		},
		{
			name:    "due tomorrow",
			dueDate: time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
			want:    false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &ReviewRecord{DueDate: tc.dueDate}
			assert.Equal(t, tc.want, rec.IsDue(today))
		})
	}
}

func TestRatingValidity(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidRating(RatingAgain))
	assert.True(t, IsValidRating(RatingHard))
	assert.True(t, IsValidRating(RatingGood))
	assert.True(t, IsValidRating(RatingEasy))
	assert.False(t, IsValidRating(Rating("perfect")))
	assert.False(t, IsValidRating(Rating("")))
}

func TestRatingIsCorrect(t *testing.T) {
	t.Parallel()

	assert.False(t, RatingAgain.IsCorrect())
	assert.True(t, RatingHard.IsCorrect())
	assert.True(t, RatingGood.IsCorrect())
	assert.True(t, RatingEasy.IsCorrect())
}

func TestHasShownFormat(t *testing.T) {
	t.Parallel()

	rec := &ReviewRecord{ShownFormats: []string{"multiple_choice", "free_text"}}

	assert.True(t, rec.HasShownFormat("multiple_choice"))
	assert.False(t, rec.HasShownFormat("cloze"))
}
