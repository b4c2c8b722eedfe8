package srs

import (
	"math"
	"time"

	"github.com/shelterwood/mnemo/internal/domain"
)

// applyRatingUpdate mutates the working copy's box, ease, and interval for
// a single rating. Order matters: the ease adjustment lands first, so the
// interval recomputation for hard/good/easy sees the updated ease.
func applyRatingUpdate(rec *domain.ReviewRecord, rating domain.Rating, params *Params) {
	rec.Ease = clampEase(rec.Ease+params.EaseAdjustment[rating], params)

	switch rating {
	case domain.RatingAgain:
		rec.Box = 0
		rec.IntervalDays = params.boxInterval(0)
	case domain.RatingHard:
		rec.IntervalDays = atLeastOneDay(roundDays(float64(rec.IntervalDays) * rec.Ease))
		rec.Box = maxInt(0, rec.Box-1)
	case domain.RatingGood:
		rec.IntervalDays = atLeastOneDay(roundDays(float64(rec.IntervalDays) * rec.Ease))
		rec.Box = minInt(domain.MaxBox, rec.Box+1)
	case domain.RatingEasy:
		rec.IntervalDays = atLeastOneDay(
			roundDays(float64(rec.IntervalDays) * rec.Ease * params.EasyIntervalBonus),
		)
		rec.Box = minInt(domain.MaxBox, rec.Box+2)
	}
}

// capIntervalForBox clamps the interval to at most BoxIntervalCapFactor
// times the base interval of the resulting box.
func capIntervalForBox(rec *domain.ReviewRecord, params *Params) {
	cap := params.BoxIntervalCapFactor * params.boxInterval(rec.Box)
	if rec.IntervalDays > cap {
		rec.IntervalDays = cap
	}
}

// nextRecord computes the successor record for one review outcome. The
// prior record is never mutated; a fresh copy carries the updated schedule.
func nextRecord(
	prior *domain.ReviewRecord,
	rating domain.Rating,
	presentedFormat string,
	now time.Time,
	params *Params,
) *domain.ReviewRecord {
	next := *prior
	next.ShownFormats = append([]string(nil), prior.ShownFormats...)

	applyRatingUpdate(&next, rating, params)
	capIntervalForBox(&next, params)

	today := domain.DateOnly(now)
	next.DueDate = today.AddDate(0, 0, next.IntervalDays)
	next.LastReviewedAt = now
	next.TotalReps++

	if rating == domain.RatingAgain {
		next.ConsecutiveCorrect = 0
	} else {
		next.ConsecutiveCorrect++
	}

	next.Ease = roundEase(next.Ease)

	if presentedFormat != "" && !next.HasShownFormat(presentedFormat) {
		next.ShownFormats = append(next.ShownFormats, presentedFormat)
	}

	next.UpdatedAt = now

	return &next
}

func clampEase(ease float64, params *Params) float64 {
	if ease < params.MinEase {
		return params.MinEase
	}
	if ease > params.MaxEase {
		return params.MaxEase
	}
	return ease
}

// roundEase rounds the ease factor to two decimal places.
func roundEase(ease float64) float64 {
	return math.Round(ease*100) / 100
}

// roundDays rounds half away from zero, matching the scheduling tables.
func roundDays(days float64) int {
	return int(math.Round(days))
}

func atLeastOneDay(days int) int {
	if days < 1 {
		return 1
	}
	return days
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
