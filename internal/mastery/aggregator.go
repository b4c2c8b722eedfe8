// Package mastery derives per-chapter and per-concept mastery statistics
// from the same review records the scheduler maintains. Aggregation is a
// pure function; nothing here touches storage.
package mastery

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shelterwood/mnemo/internal/domain"
)

// ChapterStatus classifies a chapter's progress.
type ChapterStatus string

// Possible chapter statuses, in classification priority order.
const (
	StatusUntouched  ChapterStatus = "untouched"
	StatusMastered   ChapterStatus = "mastered"
	StatusInProgress ChapterStatus = "in-progress"
)

// ChapterStat summarizes one chapter of the catalog.
type ChapterStat struct {
	ChapterNumber  int           `json:"chapter_number"`
	TotalQuestions int           `json:"total_questions"`
	SeenCount      int           `json:"seen_count"`
	MasteredCount  int           `json:"mastered_count"`
	DueCount       int           `json:"due_count"`
	NewCount       int           `json:"new_count"`
	Status         ChapterStatus `json:"status"`
	Percentage     int           `json:"percentage"`
}

// OverallStat sums mastery across all chapters.
type OverallStat struct {
	TotalQuestions int `json:"total_questions"`
	MasteredCount  int `json:"mastered_count"`
	Percentage     int `json:"percentage"`
	Streak         int `json:"streak"`
}

// ConceptScore is the mastery percentage for one topical label.
type ConceptScore struct {
	Concept string `json:"concept"`
	Score   int    `json:"score"`
}

// Summary is the full mastery report for one (user, collection).
type Summary struct {
	Chapters    []ChapterStat  `json:"chapters"`
	Overall     OverallStat    `json:"overall"`
	TopConcepts []ConceptScore `json:"top_concepts"`
}

// Params defines the configurable aggregation thresholds.
type Params struct {
	// MasteredBox is the lowest Leitner box counted as mastered.
	MasteredBox int

	// MasteredThreshold is the mastered share at which a chapter counts
	// as mastered.
	MasteredThreshold float64

	// TopConceptCount bounds the concept report.
	TopConceptCount int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		MasteredBox:       5,
		MasteredThreshold: 0.80,
		TopConceptCount:   6,
	}
}

// Aggregator computes mastery summaries with fixed thresholds.
type Aggregator struct {
	params *Params
}

// NewAggregator creates an Aggregator. A nil params uses the defaults.
func NewAggregator(params *Params) *Aggregator {
	if params == nil {
		params = NewDefaultParams()
	}
	return &Aggregator{params: params}
}

// Aggregate builds the mastery summary for a catalog and the learner's
// records, keyed by item ID. Chapters are reported in ascending order.
func (a *Aggregator) Aggregate(
	items []domain.LearningItem,
	records map[string]*domain.ReviewRecord,
	today time.Time,
) Summary {
	byChapter := map[int]*ChapterStat{}
	conceptSeen := map[string]int{}
	conceptMastered := map[string]int{}

	for _, item := range items {
		stat := byChapter[item.ChapterNumber]
		if stat == nil {
			stat = &ChapterStat{ChapterNumber: item.ChapterNumber}
			byChapter[item.ChapterNumber] = stat
		}
		stat.TotalQuestions++

		rec := records[item.ID]
		if rec == nil {
			continue
		}

		stat.SeenCount++
		mastered := rec.Box >= a.params.MasteredBox
		if mastered {
			stat.MasteredCount++
		}
		if rec.IsDue(today) {
			stat.DueCount++
		}

		for _, label := range item.Labels() {
			conceptSeen[label]++
			if mastered {
				conceptMastered[label]++
			}
		}
	}

	chapters := make([]ChapterStat, 0, len(byChapter))
	overall := OverallStat{Streak: bestStreak(records)}
	for _, stat := range byChapter {
		stat.NewCount = stat.TotalQuestions - stat.SeenCount
		stat.Status = a.classify(stat)
		stat.Percentage = percentage(stat.MasteredCount, stat.TotalQuestions)

		overall.TotalQuestions += stat.TotalQuestions
		overall.MasteredCount += stat.MasteredCount

		chapters = append(chapters, *stat)
	}
	slices.SortFunc(chapters, func(a, b ChapterStat) int {
		return a.ChapterNumber - b.ChapterNumber
	})

	overall.Percentage = percentage(overall.MasteredCount, overall.TotalQuestions)

	return Summary{
		Chapters:    chapters,
		Overall:     overall,
		TopConcepts: a.topConcepts(conceptSeen, conceptMastered),
	}
}

// classify applies the status rules in priority order: untouched wins over
// everything, then the mastered threshold, then in-progress.
func (a *Aggregator) classify(stat *ChapterStat) ChapterStatus {
	if stat.SeenCount == 0 {
		return StatusUntouched
	}
	if stat.TotalQuestions > 0 &&
		float64(stat.MasteredCount)/float64(stat.TotalQuestions) >= a.params.MasteredThreshold {
		return StatusMastered
	}
	return StatusInProgress
}

func (a *Aggregator) topConcepts(seen, mastered map[string]int) []ConceptScore {
	scores := make([]ConceptScore, 0, len(seen))
	for label, count := range seen {
		scores = append(scores, ConceptScore{
			Concept: label,
			Score:   percentage(mastered[label], count),
		})
	}

	// Descending by score; label order breaks ties so the report is stable.
	slices.SortFunc(scores, func(a, b ConceptScore) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return strings.Compare(a.Concept, b.Concept)
	})

	if len(scores) > a.params.TopConceptCount {
		scores = scores[:a.params.TopConceptCount]
	}
	return scores
}

// percentage returns round(100*part/total), and 0 for an empty total so a
// chapter with no catalog items never divides by zero.
func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

func bestStreak(records map[string]*domain.ReviewRecord) int {
	best := 0
	for _, rec := range records {
		if rec != nil && rec.ConsecutiveCorrect > best {
			best = rec.ConsecutiveCorrect
		}
	}
	return best
}
