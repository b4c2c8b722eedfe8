// Package session selects which items a learner studies next: overdue
// reviews merged with a rationed stream of never-seen items, bounded to a
// session-sized batch. Selection is a pure function over the catalog and
// the learner's review records.
package session

import (
	"errors"
	"time"

	"github.com/shelterwood/mnemo/internal/domain"
)

// Common errors
var (
	ErrInvalidMode  = errors.New("invalid study mode")
	ErrInvalidScope = errors.New("invalid study scope")
)

// Mode is the session intensity preset. It controls only how many
// never-seen items are introduced; due reviews are always eligible.
type Mode string

// Possible mode values.
const (
	ModeQuick    Mode = "quick"
	ModeStandard Mode = "standard"
	ModeThorough Mode = "thorough"
)

// Scope is the filter dimension restricting which items are eligible.
type Scope string

// Possible scope values.
const (
	ScopeFull     Scope = "full"
	ScopeChapters Scope = "chapters"
	ScopeConcepts Scope = "concepts"
)

// BatchRequest describes one batch selection: which collection, how intense
// a session, and which slice of the catalog is eligible.
type BatchRequest struct {
	CollectionID string
	Mode         Mode  // defaults to ModeStandard when empty
	Scope        Scope // defaults to ScopeFull when empty

	// Chapters is consulted when Scope is ScopeChapters.
	Chapters []int

	// Concepts is consulted when Scope is ScopeConcepts. A concept matches
	// an item when it equals a theme exactly or is a substring of an
	// element label.
	Concepts []string

	// Difficulties optionally restricts items to the given tiers.
	Difficulties []domain.Difficulty
}

// BatchEntry is one selected item annotated with its resolved scheduling
// state. For a never-seen item IsNew is true and DueDate is nil.
type BatchEntry struct {
	Item         domain.LearningItem `json:"item"`
	Box          int                 `json:"box"`
	IntervalDays int                 `json:"interval_days"`
	DueDate      *time.Time          `json:"due_date,omitempty"`
	IsNew        bool                `json:"is_new"`
}

// BatchResult is the ordered study batch plus session metadata.
type BatchResult struct {
	Entries []BatchEntry `json:"entries"`

	// TotalDueToday counts every due candidate that survived filtering,
	// before the session cap. Items dropped by the cap stay due and
	// reappear next session.
	TotalDueToday int `json:"total_due_today"`

	// NewToday counts the new items actually included.
	NewToday int `json:"new_today"`

	// ReviewToday is the number of due items the session can hold.
	ReviewToday int `json:"review_today"`

	// Streak is the best consecutive-correct run across all of the
	// learner's records for the collection.
	Streak int `json:"streak"`

	// Message carries an optional advisory, e.g. when a quick session
	// finds nothing due.
	Message string `json:"message,omitempty"`
}

// Params defines the configurable session bounds.
type Params struct {
	// SessionCap bounds the total batch size.
	SessionCap int

	// NewItemLimits is the per-mode ration of never-seen items.
	NewItemLimits map[Mode]int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		SessionCap: 80,
		NewItemLimits: map[Mode]int{
			ModeQuick:    0,
			ModeStandard: 12,
			ModeThorough: 40,
		},
	}
}
