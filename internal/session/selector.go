package session

import (
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/shelterwood/mnemo/internal/domain"
)

// caughtUpMessage is attached when a quick session finds nothing due.
const caughtUpMessage = "You're all caught up! Nothing is due for review right now."

// candidateState classifies one surviving item against the learner's records.
type candidateState int

const (
	candidateNew candidateState = iota // no record yet
	candidateDue                       // record exists and due date has arrived
	candidateExcluded                  // record exists but not yet due
)

// classify resolves an item's candidate state from its record, if any.
func classify(rec *domain.ReviewRecord, today time.Time) candidateState {
	if rec == nil {
		return candidateNew
	}
	if rec.IsDue(today) {
		return candidateDue
	}
	return candidateExcluded
}

// Selector builds study batches with fixed session parameters and an
// injectable random source, so tests can assert ration counts
// deterministically.
type Selector struct {
	params *Params
	rng    *rand.Rand
}

// NewSelector creates a Selector. A nil params uses the defaults; a nil rng
// falls back to a time-seeded source.
func NewSelector(params *Params, rng *rand.Rand) *Selector {
	if params == nil {
		params = NewDefaultParams()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{params: params, rng: rng}
}

// Select builds the ordered study batch for one session.
//
// Due items come first, oldest overdue leading, then a shuffled ration of
// never-seen items, the whole batch truncated to the session cap. An empty
// result is a legitimate "nothing to study" outcome, not an error.
func (s *Selector) Select(
	items []domain.LearningItem,
	records map[string]*domain.ReviewRecord,
	req BatchRequest,
	today time.Time,
) (BatchResult, error) {
	mode := req.Mode
	if mode == "" {
		mode = ModeStandard
	}
	scope := req.Scope
	if scope == "" {
		scope = ScopeFull
	}

	if _, ok := s.params.NewItemLimits[mode]; !ok {
		return BatchResult{}, ErrInvalidMode
	}
	if scope != ScopeFull && scope != ScopeChapters && scope != ScopeConcepts {
		return BatchResult{}, ErrInvalidScope
	}

	var due, fresh []domain.LearningItem
	for _, item := range items {
		if !matchesScope(item, scope, req) || !matchesDifficulty(item, req.Difficulties) {
			continue
		}

		switch classify(records[item.ID], today) {
		case candidateDue:
			due = append(due, item)
		case candidateNew:
			fresh = append(fresh, item)
		case candidateExcluded:
			// scheduled for a later day
		}
	}

	// Oldest overdue first; catalog order breaks ties.
	slices.SortStableFunc(due, func(a, b domain.LearningItem) int {
		return records[a.ID].DueDate.Compare(records[b.ID].DueDate)
	})

	s.rng.Shuffle(len(fresh), func(i, j int) {
		fresh[i], fresh[j] = fresh[j], fresh[i]
	})

	newLimit := s.params.NewItemLimits[mode]
	if len(fresh) > newLimit {
		fresh = fresh[:newLimit]
	}

	// Due items are placed first, so a due overload crowds out the new
	// ration, and past the cap even due items spill to the next session.
	batch := make([]domain.LearningItem, 0, len(due)+len(fresh))
	batch = append(batch, due...)
	batch = append(batch, fresh...)
	if len(batch) > s.params.SessionCap {
		batch = batch[:s.params.SessionCap]
	}

	entries := make([]BatchEntry, 0, len(batch))
	newToday := 0
	for _, item := range batch {
		entries = append(entries, annotate(item, records[item.ID]))
		if records[item.ID] == nil {
			newToday++
		}
	}

	result := BatchResult{
		Entries:       entries,
		TotalDueToday: len(due),
		NewToday:      newToday,
		ReviewToday:   minInt(len(due), s.params.SessionCap-newToday),
		Streak:        bestStreak(records),
	}

	if mode == ModeQuick && len(due) == 0 {
		result.Message = caughtUpMessage
	}

	return result, nil
}

func matchesScope(item domain.LearningItem, scope Scope, req BatchRequest) bool {
	switch scope {
	case ScopeChapters:
		return slices.Contains(req.Chapters, item.ChapterNumber)
	case ScopeConcepts:
		for _, concept := range req.Concepts {
			if slices.Contains(item.Themes, concept) {
				return true
			}
			for _, element := range item.Elements {
				if strings.Contains(element, concept) {
					return true
				}
			}
		}
		return false
	default:
		return true
	}
}

func matchesDifficulty(item domain.LearningItem, difficulties []domain.Difficulty) bool {
	if len(difficulties) == 0 {
		return true
	}
	return slices.Contains(difficulties, item.Difficulty)
}

// annotate resolves an item's scheduling state into a batch entry.
func annotate(item domain.LearningItem, rec *domain.ReviewRecord) BatchEntry {
	if rec == nil {
		return BatchEntry{Item: item, IsNew: true}
	}
	dueDate := rec.DueDate
	return BatchEntry{
		Item:         item,
		Box:          rec.Box,
		IntervalDays: rec.IntervalDays,
		DueDate:      &dueDate,
	}
}

// bestStreak returns the best consecutive-correct run across the records,
// zero when there are none.
func bestStreak(records map[string]*domain.ReviewRecord) int {
	best := 0
	for _, rec := range records {
		if rec != nil && rec.ConsecutiveCorrect > best {
			best = rec.ConsecutiveCorrect
		}
	}
	return best
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
