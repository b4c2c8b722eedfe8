package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// Item-specific validation errors
var (
	// ErrItemIDEmpty is returned when an item ID is empty.
	ErrItemIDEmpty = errors.New("item ID cannot be empty")

	// ErrItemCollectionIDEmpty is returned when an item's collection ID is empty.
	ErrItemCollectionIDEmpty = errors.New("item collection ID cannot be empty")

	// ErrItemChapterInvalid is returned when an item's chapter number is not positive.
	ErrItemChapterInvalid = errors.New("item chapter number must be positive")

	// ErrItemDifficultyInvalid is returned when an item carries an unknown difficulty tier.
	ErrItemDifficultyInvalid = errors.New("invalid item difficulty")
)

// Difficulty is the closed, ordered set of difficulty tiers an item can carry.
type Difficulty string

// Possible difficulty values, ordered by increasing depth.
const (
	DifficultyBasic   Difficulty = "basic"
	DifficultyMedium  Difficulty = "medium"
	DifficultyDeep    Difficulty = "deep"
	DifficultyMastery Difficulty = "mastery"
)

// IsValidDifficulty reports whether d is one of the known difficulty tiers.
func IsValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyBasic, DifficultyMedium, DifficultyDeep, DifficultyMastery:
		return true
	default:
		return false
	}
}

// LearningItem is an immutable catalog entry: one quiz-style question inside
// a collection. The scheduling core reads items but never mutates them;
// ingestion and content generation live outside this service entirely.
//
// Themes and Elements are topical labels used for concept-scoped filtering
// and concept mastery scoring. Content is an opaque JSONB payload carrying
// the question body, whatever shape the generator produced.
type LearningItem struct {
	ID            string          `json:"id"` // unique within its collection
	CollectionID  string          `json:"collection_id"`
	ChapterNumber int             `json:"chapter_number"`
	Difficulty    Difficulty      `json:"difficulty"`
	Themes        []string        `json:"themes,omitempty"`
	Elements      []string        `json:"elements,omitempty"`
	Content       json.RawMessage `json:"content"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Validate checks if the LearningItem has valid data.
// Returns an error if any field fails validation.
func (i *LearningItem) Validate() error {
	if i.ID == "" {
		return ErrItemIDEmpty
	}

	if i.CollectionID == "" {
		return ErrItemCollectionIDEmpty
	}

	if i.ChapterNumber <= 0 {
		return ErrItemChapterInvalid
	}

	if !IsValidDifficulty(i.Difficulty) {
		return ErrItemDifficultyInvalid
	}

	return nil
}

// Labels returns the union of the item's themes and elements, in catalog
// order with themes first. Concept mastery scoring counts every label once
// per item.
func (i *LearningItem) Labels() []string {
	labels := make([]string, 0, len(i.Themes)+len(i.Elements))
	labels = append(labels, i.Themes...)
	labels = append(labels, i.Elements...)
	return labels
}
