package study

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shelterwood/mnemo/internal/domain"
	"github.com/shelterwood/mnemo/internal/domain/srs"
	"github.com/shelterwood/mnemo/internal/mastery"
	"github.com/shelterwood/mnemo/internal/platform/logger"
	"github.com/shelterwood/mnemo/internal/session"
	"github.com/shelterwood/mnemo/internal/store"
)

// maxConflictRetries bounds how many times a rating is re-applied when a
// concurrent writer invalidates the record between read and save.
const maxConflictRetries = 3

// Verify interface compliance at compile time
var _ StudyService = (*studyServiceImpl)(nil)

// txRunnerFunc executes a storage function transactionally. Injectable so
// tests can run the rating cycle without a live database.
type txRunnerFunc func(ctx context.Context, db *sql.DB, fn store.TxFn) error

// studyServiceImpl implements the StudyService interface.
type studyServiceImpl struct {
	db          *sql.DB
	itemStore   store.ItemStore
	recordStore store.ReviewRecordStore
	srsService  srs.Service
	selector    *session.Selector
	aggregator  *mastery.Aggregator
	timeFunc    func() time.Time
	txRunner    txRunnerFunc
	logger      *slog.Logger
}

// NewStudyService creates a new StudyService implementation.
func NewStudyService(
	db *sql.DB,
	itemStore store.ItemStore,
	recordStore store.ReviewRecordStore,
	srsService srs.Service,
	selector *session.Selector,
	aggregator *mastery.Aggregator,
	logger *slog.Logger,
) StudyService {
	if db == nil {
		panic("db cannot be nil")
	}
	if itemStore == nil {
		panic("itemStore cannot be nil")
	}
	if recordStore == nil {
		panic("recordStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if selector == nil {
		selector = session.NewSelector(nil, nil)
	}
	if aggregator == nil {
		aggregator = mastery.NewAggregator(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &studyServiceImpl{
		db:          db,
		itemStore:   itemStore,
		recordStore: recordStore,
		srsService:  srsService,
		selector:    selector,
		aggregator:  aggregator,
		timeFunc:    time.Now,
		txRunner:    store.RunInTransaction,
		logger:      logger.With(slog.String("component", "study_service")),
	}
}

// RateItem implements StudyService.RateItem.
//
// The whole read-apply-save cycle runs inside one transaction. When a
// concurrent rating bumps the record version between our read and save, the
// transaction fails with a version conflict and the cycle is retried from a
// fresh read, so the later rating is applied on top of the earlier one
// rather than overwriting it.
func (s *studyServiceImpl) RateItem(
	ctx context.Context,
	userID uuid.UUID,
	collectionID, itemID string,
	submission RatingSubmission,
) (*RatingResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing item rating",
		slog.String("user_id", userID.String()),
		slog.String("collection_id", collectionID),
		slog.String("item_id", itemID),
		slog.String("rating", string(submission.Rating)))

	if !domain.IsValidRating(submission.Rating) {
		log.Warn("invalid rating submitted",
			slog.String("user_id", userID.String()),
			slog.String("item_id", itemID),
			slog.String("rating", string(submission.Rating)))
		return nil, ErrInvalidRating
	}

	var updated *domain.ReviewRecord
	for attempt := 0; ; attempt++ {
		err := s.txRunner(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			items := s.itemStore.WithTx(tx)
			records := s.recordStore.WithTx(tx)

			item, err := items.GetByID(ctx, collectionID, itemID)
			if err != nil {
				if store.IsNotFoundError(err) {
					return ErrItemNotFound
				}
				return fmt.Errorf("failed to get item: %w", err)
			}

			prior, err := records.Get(ctx, userID, collectionID, itemID)
			if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
				return fmt.Errorf("failed to get review record: %w", err)
			}

			next, err := s.srsService.ApplyRating(prior, srs.Review{
				UserID:          userID,
				CollectionID:    collectionID,
				ItemID:          itemID,
				ChapterNumber:   item.ChapterNumber,
				Rating:          submission.Rating,
				PresentedFormat: submission.PresentedFormat,
			}, s.timeFunc())
			if err != nil {
				return fmt.Errorf("failed to apply rating: %w", err)
			}

			if err := records.Save(ctx, next); err != nil {
				return err
			}
			updated = next
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, store.ErrVersionConflict) && attempt < maxConflictRetries {
			log.Debug("rating hit version conflict, retrying",
				slog.String("item_id", itemID),
				slog.Int("attempt", attempt+1))
			continue
		}
		if errors.Is(err, store.ErrVersionConflict) {
			log.Warn("rating retries exhausted",
				slog.String("user_id", userID.String()),
				slog.String("item_id", itemID))
			return nil, ErrRatingConflict
		}
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		log.Error("failed to apply rating",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("item_id", itemID))
		return nil, NewRateItemError("failed to apply rating", err)
	}

	log.Debug("rating applied",
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID),
		slog.Int("box", updated.Box),
		slog.Int("interval_days", updated.IntervalDays),
		slog.Time("due_date", updated.DueDate))

	return &RatingResult{
		Record:     updated,
		WasCorrect: submission.Rating.IsCorrect(),
		Streak:     updated.ConsecutiveCorrect,
	}, nil
}

// GetNextBatch implements StudyService.GetNextBatch.
func (s *studyServiceImpl) GetNextBatch(
	ctx context.Context,
	userID uuid.UUID,
	req session.BatchRequest,
) (session.BatchResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	items, err := s.itemStore.ListByCollection(ctx, req.CollectionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return session.BatchResult{}, ErrCollectionNotFound
		}
		log.Error("failed to list collection items",
			slog.String("error", err.Error()),
			slog.String("collection_id", req.CollectionID))
		return session.BatchResult{}, NewNextBatchError("failed to list collection items", err)
	}

	records, err := s.recordStore.ListByCollection(ctx, userID, req.CollectionID)
	if err != nil {
		log.Error("failed to list review records",
			slog.String("error", err.Error()),
			slog.String("collection_id", req.CollectionID))
		return session.BatchResult{}, NewNextBatchError("failed to list review records", err)
	}

	today := domain.DateOnly(s.timeFunc())
	result, err := s.selector.Select(items, records, req, today)
	if err != nil {
		return session.BatchResult{}, err
	}

	log.Debug("batch selected",
		slog.String("user_id", userID.String()),
		slog.String("collection_id", req.CollectionID),
		slog.Int("batch_size", len(result.Entries)),
		slog.Int("total_due", result.TotalDueToday),
		slog.Int("new_today", result.NewToday))

	return result, nil
}

// GetMasteryStats implements StudyService.GetMasteryStats.
func (s *studyServiceImpl) GetMasteryStats(
	ctx context.Context,
	userID uuid.UUID,
	collectionID string,
) (mastery.Summary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	items, err := s.itemStore.ListByCollection(ctx, collectionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return mastery.Summary{}, ErrCollectionNotFound
		}
		log.Error("failed to list collection items",
			slog.String("error", err.Error()),
			slog.String("collection_id", collectionID))
		return mastery.Summary{}, NewMasteryStatsError("failed to list collection items", err)
	}

	records, err := s.recordStore.ListByCollection(ctx, userID, collectionID)
	if err != nil {
		log.Error("failed to list review records",
			slog.String("error", err.Error()),
			slog.String("collection_id", collectionID))
		return mastery.Summary{}, NewMasteryStatsError("failed to list review records", err)
	}

	today := domain.DateOnly(s.timeFunc())
	summary := s.aggregator.Aggregate(items, records, today)

	log.Debug("mastery summary computed",
		slog.String("user_id", userID.String()),
		slog.String("collection_id", collectionID),
		slog.Int("chapters", len(summary.Chapters)),
		slog.Int("overall_percentage", summary.Overall.Percentage))

	return summary, nil
}
