package session

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shelterwood/mnemo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)

func newTestSelector() *Selector {
	return NewSelector(nil, rand.New(rand.NewSource(42)))
}

func makeItem(id string, chapter int, difficulty domain.Difficulty) domain.LearningItem {
	return domain.LearningItem{
		ID:            id,
		CollectionID:  "col-1",
		ChapterNumber: chapter,
		Difficulty:    difficulty,
	}
}

// makeItems builds n catalog items named item-0..item-n-1 in chapter 1.
func makeItems(n int) []domain.LearningItem {
	items := make([]domain.LearningItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, makeItem(fmt.Sprintf("item-%d", i), 1, domain.DifficultyBasic))
	}
	return items
}

func dueRecord(itemID string, daysOverdue int) *domain.ReviewRecord {
	return &domain.ReviewRecord{
		CollectionID: "col-1",
		ItemID:       itemID,
		Box:          2,
		Ease:         2.5,
		IntervalDays: 7,
		DueDate:      testToday.AddDate(0, 0, -daysOverdue),
	}
}

func TestSelectDueItemsOrderedByDueDate(t *testing.T) {
	t.Parallel()
	sel := newTestSelector()

	items := makeItems(4)
	records := map[string]*domain.ReviewRecord{
		"item-0": dueRecord("item-0", 1),
		"item-1": dueRecord("item-1", 10),
		"item-2": dueRecord("item-2", 3),
		"item-3": dueRecord("item-3", 0), // due today
	}

	result, err := sel.Select(items, records, BatchRequest{CollectionID: "col-1", Mode: ModeQuick}, testToday)
	require.NoError(t, err)

	require.Len(t, result.Entries, 4)
	for i := 1; i < len(result.Entries); i++ {
		prev := result.Entries[i-1].DueDate
		curr := result.Entries[i].DueDate
		assert.False(t, curr.Before(*prev), "due dates must be non-decreasing")
	}
	assert.Equal(t, "item-1", result.Entries[0].Item.ID) // most overdue first
}

func TestSelectExcludesNotYetDue(t *testing.T) {
	t.Parallel()
	sel := newTestSelector()

	items := makeItems(2)
	records := map[string]*domain.ReviewRecord{
		"item-0": dueRecord("item-0", 0),
		"item-1": dueRecord("item-1", -5), // due in five days
	}

	result, err := sel.Select(items, records, BatchRequest{Mode: ModeQuick}, testToday)
	require.NoError(t, err)

	require.Len(t, result.Entries, 1)
	assert.Equal(t, "item-0", result.Entries[0].Item.ID)
	assert.Equal(t, 1, result.TotalDueToday)
}

func TestSelectNewItemRationPerMode(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		mode    Mode
		wantNew int
	}{
		{ModeQuick, 0},
		{ModeStandard, 12},
		{ModeThorough, 40},
	}

	for _, tc := range testCases {
		t.Run(string(tc.mode), func(t *testing.T) {
			sel := newTestSelector()
			items := makeItems(50) // all new

			result, err := sel.Select(items, nil, BatchRequest{Mode: tc.mode}, testToday)
			require.NoError(t, err)

			assert.Equal(t, tc.wantNew, result.NewToday)
			assert.Len(t, result.Entries, tc.wantNew)
			for _, entry := range result.Entries {
				assert.True(t, entry.IsNew)
				assert.Nil(t, entry.DueDate)
			}
		})
	}
}

func TestSelectThoroughMergesDueAndNew(t *testing.T) {
	t.Parallel()
	sel := newTestSelector()

	// 5 due plus 50 new candidates: all 5 due lead the batch, exactly 40
	// new follow, no truncation.
	items := makeItems(55)
	records := map[string]*domain.ReviewRecord{}
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("item-%d", i)
		records[id] = dueRecord(id, i+1)
	}

	result, err := sel.Select(items, records, BatchRequest{Mode: ModeThorough}, testToday)
	require.NoError(t, err)

	require.Len(t, result.Entries, 45)
	for i := 0; i < 5; i++ {
		assert.False(t, result.Entries[i].IsNew)
	}
	for i := 5; i < 45; i++ {
		assert.True(t, result.Entries[i].IsNew)
	}
	assert.Equal(t, 5, result.TotalDueToday)
	assert.Equal(t, 40, result.NewToday)
	assert.Equal(t, 5, result.ReviewToday)
}

func TestSelectSessionCapCrowdsOutNewItems(t *testing.T) {
	t.Parallel()
	sel := newTestSelector()

	// 75 due and plenty of new: the standard ration of 12 would exceed the
	// cap, so only 5 new items make it in.
	items := makeItems(120)
	records := map[string]*domain.ReviewRecord{}
	for i := 0; i < 75; i++ {
		id := fmt.Sprintf("item-%d", i)
		records[id] = dueRecord(id, 1)
	}

	result, err := sel.Select(items, records, BatchRequest{Mode: ModeStandard}, testToday)
	require.NoError(t, err)

	assert.Len(t, result.Entries, 80)
	assert.Equal(t, 75, result.TotalDueToday)
	assert.Equal(t, 5, result.NewToday)
	assert.Equal(t, 75, result.ReviewToday)
}

func TestSelectDueOverloadDropsExcessThisSession(t *testing.T) {
	t.Parallel()
	sel := newTestSelector()

	items := makeItems(100)
	records := map[string]*domain.ReviewRecord{}
	for i := 0; i < 100; i++ {
		id := fmt.Sprintf("item-%d", i)
		records[id] = dueRecord(id, 1)
	}

	result, err := sel.Select(items, records, BatchRequest{Mode: ModeStandard}, testToday)
	require.NoError(t, err)

	// Excess due items silently spill to the next session; they stay due.
	assert.Len(t, result.Entries, 80)
	assert.Equal(t, 100, result.TotalDueToday)
	assert.Equal(t, 0, result.NewToday)
	assert.Equal(t, 80, result.ReviewToday)
}

func TestSelectChapterScope(t *testing.T) {
	t.Parallel()
	sel := newTestSelector()

	items := []domain.LearningItem{
		makeItem("a", 1, domain.DifficultyBasic),
		makeItem("b", 2, domain.DifficultyBasic),
		makeItem("c", 3, domain.DifficultyBasic),
	}

	result, err := sel.Select(items, nil, BatchRequest{
		Mode:     ModeStandard,
		Scope:    ScopeChapters,
		Chapters: []int{1, 3},
	}, testToday)
	require.NoError(t, err)

	require.Len(t, result.Entries, 2)
	ids := []string{result.Entries[0].Item.ID, result.Entries[1].Item.ID}
	assert.ElementsMatch(t, []string{"a", "c"}, ids)
}

func TestSelectConceptScope(t *testing.T) {
	t.Parallel()
	sel := newTestSelector()

	themed := makeItem("themed", 1, domain.DifficultyBasic)
	themed.Themes = []string{"entropy"}

	elemental := makeItem("elemental", 1, domain.DifficultyBasic)
	elemental.Elements = []string{"second law of thermodynamics"}

	partial := makeItem("partial", 1, domain.DifficultyBasic)
	partial.Themes = []string{"entropy and disorder"} // no exact theme match

	items := []domain.LearningItem{themed, elemental, partial}

	result, err := sel.Select(items, nil, BatchRequest{
		Mode:     ModeStandard,
		Scope:    ScopeConcepts,
		Concepts: []string{"entropy", "thermodynamics"},
	}, testToday)
	require.NoError(t, err)

	// Themes match exactly; elements match by substring. The partial item
	// matches neither rule.
	require.Len(t, result.Entries, 2)
	ids := []string{result.Entries[0].Item.ID, result.Entries[1].Item.ID}
	assert.ElementsMatch(t, []string{"themed", "elemental"}, ids)
}

func TestSelectDifficultyFilter(t *testing.T) {
	t.Parallel()
	sel := newTestSelector()

	items := []domain.LearningItem{
		makeItem("a", 1, domain.DifficultyBasic),
		makeItem("b", 1, domain.DifficultyDeep),
		makeItem("c", 1, domain.DifficultyMastery),
	}

	result, err := sel.Select(items, nil, BatchRequest{
		Mode:         ModeStandard,
		Difficulties: []domain.Difficulty{domain.DifficultyDeep, domain.DifficultyMastery},
	}, testToday)
	require.NoError(t, err)

	require.Len(t, result.Entries, 2)
	ids := []string{result.Entries[0].Item.ID, result.Entries[1].Item.ID}
	assert.ElementsMatch(t, []string{"b", "c"}, ids)
}

func TestSelectQuickCaughtUpMessage(t *testing.T) {
	t.Parallel()
	sel := newTestSelector()

	result, err := sel.Select(makeItems(10), nil, BatchRequest{Mode: ModeQuick}, testToday)
	require.NoError(t, err)

	assert.Empty(t, result.Entries)
	assert.NotEmpty(t, result.Message)

	// Other modes stay silent even when nothing is due.
	result, err = sel.Select(makeItems(10), nil, BatchRequest{Mode: ModeStandard}, testToday)
	require.NoError(t, err)
	assert.Empty(t, result.Message)
}

func TestSelectEmptyResultIsValid(t *testing.T) {
	t.Parallel()
	sel := newTestSelector()

	result, err := sel.Select(nil, nil, BatchRequest{Mode: ModeQuick}, testToday)
	require.NoError(t, err)
	assert.Empty(t, result.Entries)
	assert.Equal(t, 0, result.TotalDueToday)
}

func TestSelectStreakFromRecords(t *testing.T) {
	t.Parallel()
	sel := newTestSelector()

	records := map[string]*domain.ReviewRecord{
		"item-0": {ConsecutiveCorrect: 3, DueDate: testToday.AddDate(0, 0, 5)},
		"item-1": {ConsecutiveCorrect: 9, DueDate: testToday.AddDate(0, 0, 5)},
	}

	result, err := sel.Select(makeItems(2), records, BatchRequest{Mode: ModeStandard}, testToday)
	require.NoError(t, err)
	assert.Equal(t, 9, result.Streak)
}

func TestSelectDefaultsModeAndScope(t *testing.T) {
	t.Parallel()
	sel := newTestSelector()

	// Empty mode behaves as standard, empty scope as full.
	result, err := sel.Select(makeItems(20), nil, BatchRequest{}, testToday)
	require.NoError(t, err)
	assert.Equal(t, 12, result.NewToday)
}

func TestSelectRejectsUnknownModeAndScope(t *testing.T) {
	t.Parallel()
	sel := newTestSelector()

	_, err := sel.Select(nil, nil, BatchRequest{Mode: Mode("relaxed")}, testToday)
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, err = sel.Select(nil, nil, BatchRequest{Scope: Scope("everything")}, testToday)
	assert.ErrorIs(t, err, ErrInvalidScope)
}

func TestSelectShuffleIsDeterministicPerSeed(t *testing.T) {
	t.Parallel()

	items := makeItems(30)

	first, err := NewSelector(nil, rand.New(rand.NewSource(7))).
		Select(items, nil, BatchRequest{Mode: ModeStandard}, testToday)
	require.NoError(t, err)

	second, err := NewSelector(nil, rand.New(rand.NewSource(7))).
		Select(items, nil, BatchRequest{Mode: ModeStandard}, testToday)
	require.NoError(t, err)

	require.Len(t, first.Entries, 12)
	for i := range first.Entries {
		assert.Equal(t, first.Entries[i].Item.ID, second.Entries[i].Item.ID)
	}
}
