package study

import (
	"context"

	"github.com/google/uuid"

	"github.com/shelterwood/mnemo/internal/mastery"
	"github.com/shelterwood/mnemo/internal/session"
)

// MockStudyService is a function-backed implementation of StudyService for
// testing handlers without storage.
type MockStudyService struct {
	RateItemFunc        func(ctx context.Context, userID uuid.UUID, collectionID, itemID string, submission RatingSubmission) (*RatingResult, error)
	GetNextBatchFunc    func(ctx context.Context, userID uuid.UUID, req session.BatchRequest) (session.BatchResult, error)
	GetMasteryStatsFunc func(ctx context.Context, userID uuid.UUID, collectionID string) (mastery.Summary, error)
}

var _ StudyService = (*MockStudyService)(nil)

// RateItem delegates to RateItemFunc when set.
func (m *MockStudyService) RateItem(
	ctx context.Context,
	userID uuid.UUID,
	collectionID, itemID string,
	submission RatingSubmission,
) (*RatingResult, error) {
	if m.RateItemFunc != nil {
		return m.RateItemFunc(ctx, userID, collectionID, itemID, submission)
	}
	return nil, nil
}

// GetNextBatch delegates to GetNextBatchFunc when set.
func (m *MockStudyService) GetNextBatch(
	ctx context.Context,
	userID uuid.UUID,
	req session.BatchRequest,
) (session.BatchResult, error) {
	if m.GetNextBatchFunc != nil {
		return m.GetNextBatchFunc(ctx, userID, req)
	}
	return session.BatchResult{}, nil
}

// GetMasteryStats delegates to GetMasteryStatsFunc when set.
func (m *MockStudyService) GetMasteryStats(
	ctx context.Context,
	userID uuid.UUID,
	collectionID string,
) (mastery.Summary, error) {
	if m.GetMasteryStatsFunc != nil {
		return m.GetMasteryStatsFunc(ctx, userID, collectionID)
	}
	return mastery.Summary{}, nil
}
