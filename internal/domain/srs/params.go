package srs

import (
	"github.com/shelterwood/mnemo/internal/domain"
)

// DefaultBoxIntervals is the base interval, in days, for each Leitner box
// 0 through 6. Boxes beyond 6 do not exist; the table's last entry also
// serves as the terminal interval.
var DefaultBoxIntervals = [7]int{1, 3, 7, 14, 30, 90, 180}

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// Ease bounds
	MinEase float64
	MaxEase float64

	// Ease adjustment applied per rating before the interval is recomputed.
	EaseAdjustment map[domain.Rating]float64

	// Extra interval multiplier applied on an "easy" rating, on top of ease.
	EasyIntervalBonus float64

	// Base interval per Leitner box, indexed by box number.
	BoxIntervals [7]int

	// A recomputed interval may not exceed BoxIntervalCapFactor times the
	// base interval of the resulting box. Keeps an easy streak from
	// producing runaway intervals relative to box level.
	BoxIntervalCapFactor int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values mean "keep the default".
type ParamsConfig struct {
	MinEase float64
	MaxEase float64

	AgainEaseAdjustment float64
	HardEaseAdjustment  float64
	EasyEaseAdjustment  float64

	EasyIntervalBonus    float64
	BoxIntervalCapFactor int
}

// NewDefaultParams creates a new Params instance with default values.
// The defaults are the tuned production constants; change them only with
// evidence they were mistuned.
func NewDefaultParams() *Params {
	return &Params{
		MinEase: domain.MinEase,
		MaxEase: domain.MaxEase,

		EaseAdjustment: map[domain.Rating]float64{
			domain.RatingAgain: -0.20,
			domain.RatingHard:  -0.10,
			domain.RatingGood:  0.0,
			domain.RatingEasy:  0.15,
		},

		EasyIntervalBonus:    1.5,
		BoxIntervals:         DefaultBoxIntervals,
		BoxIntervalCapFactor: 2,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEase > 0 {
		params.MinEase = config.MinEase
	}
	if config.MaxEase > 0 {
		params.MaxEase = config.MaxEase
	}

	if config.AgainEaseAdjustment != 0 {
		params.EaseAdjustment[domain.RatingAgain] = config.AgainEaseAdjustment
	}
	if config.HardEaseAdjustment != 0 {
		params.EaseAdjustment[domain.RatingHard] = config.HardEaseAdjustment
	}
	if config.EasyEaseAdjustment != 0 {
		params.EaseAdjustment[domain.RatingEasy] = config.EasyEaseAdjustment
	}

	if config.EasyIntervalBonus > 0 {
		params.EasyIntervalBonus = config.EasyIntervalBonus
	}
	if config.BoxIntervalCapFactor > 0 {
		params.BoxIntervalCapFactor = config.BoxIntervalCapFactor
	}

	return params
}

// boxInterval returns the base interval for the given box, using the
// terminal entry for any box at or beyond the end of the table.
func (p *Params) boxInterval(box int) int {
	if box < 0 {
		box = 0
	}
	if box >= len(p.BoxIntervals) {
		box = len(p.BoxIntervals) - 1
	}
	return p.BoxIntervals[box]
}
