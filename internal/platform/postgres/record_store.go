package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shelterwood/mnemo/internal/domain"
	"github.com/shelterwood/mnemo/internal/store"
)

// ReviewRecordStore implements the store.ReviewRecordStore interface using
// a PostgreSQL database as the storage backend.
type ReviewRecordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewRecordStore creates a new PostgreSQL implementation of the
// ReviewRecordStore interface. If logger is nil, a default logger will be
// used.
func NewReviewRecordStore(db store.DBTX, logger *slog.Logger) *ReviewRecordStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewRecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_record_store")),
	}
}

// Ensure ReviewRecordStore implements store.ReviewRecordStore interface
var _ store.ReviewRecordStore = (*ReviewRecordStore)(nil)

const recordColumns = `
	user_id, collection_id, item_id, box, ease, interval_days, due_date,
	last_reviewed_at, consecutive_correct, total_reps, shown_formats,
	chapter_number, version, created_at, updated_at`

// Get implements store.ReviewRecordStore.Get.
func (s *ReviewRecordStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	collectionID, itemID string,
) (*domain.ReviewRecord, error) {
	query := `SELECT ` + recordColumns + `
		FROM review_records
		WHERE user_id = $1 AND collection_id = $2 AND item_id = $3`

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, userID, collectionID, itemID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrRecordNotFound
		}
		return nil, store.NewStoreError("review_record", "get", "query failed", err)
	}
	return rec, nil
}

// ListByCollection implements store.ReviewRecordStore.ListByCollection.
func (s *ReviewRecordStore) ListByCollection(
	ctx context.Context,
	userID uuid.UUID,
	collectionID string,
) (map[string]*domain.ReviewRecord, error) {
	query := `SELECT ` + recordColumns + `
		FROM review_records
		WHERE user_id = $1 AND collection_id = $2`

	rows, err := s.db.QueryContext(ctx, query, userID, collectionID)
	if err != nil {
		return nil, store.NewStoreError("review_record", "list", "query failed", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	records := make(map[string]*domain.ReviewRecord)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, store.NewStoreError("review_record", "list", "scan failed", err)
		}
		records[rec.ItemID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review_record", "list", "iteration failed", err)
	}

	return records, nil
}

// Save implements store.ReviewRecordStore.Save.
//
// Version 0 inserts; a positive version is a conditional update that only
// lands when the stored row still carries that version. Both paths advance
// the record's Version on success, so the caller holds the state it just
// wrote.
func (s *ReviewRecordStore) Save(ctx context.Context, record *domain.ReviewRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	formatsJSON, err := json.Marshal(record.ShownFormats)
	if err != nil {
		return store.NewStoreError("review_record", "save", "marshal shown formats", err)
	}

	if record.Version == 0 {
		return s.insert(ctx, record, formatsJSON)
	}
	return s.update(ctx, record, formatsJSON)
}

func (s *ReviewRecordStore) insert(
	ctx context.Context,
	record *domain.ReviewRecord,
	formatsJSON []byte,
) error {
	query := `
		INSERT INTO review_records (
			user_id, collection_id, item_id, box, ease, interval_days, due_date,
			last_reviewed_at, consecutive_correct, total_reps, shown_formats,
			chapter_number, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1, NOW(), NOW())
	`

	_, err := s.db.ExecContext(ctx, query,
		record.UserID, record.CollectionID, record.ItemID,
		record.Box, record.Ease, record.IntervalDays, record.DueDate,
		record.LastReviewedAt, record.ConsecutiveCorrect, record.TotalReps,
		formatsJSON, record.ChapterNumber,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// A concurrent first rating won the insert race.
			return store.ErrVersionConflict
		}
		return store.NewStoreError("review_record", "save", "insert failed", err)
	}

	record.Version = 1
	return nil
}

func (s *ReviewRecordStore) update(
	ctx context.Context,
	record *domain.ReviewRecord,
	formatsJSON []byte,
) error {
	query := `
		UPDATE review_records SET
			box = $4, ease = $5, interval_days = $6, due_date = $7,
			last_reviewed_at = $8, consecutive_correct = $9, total_reps = $10,
			shown_formats = $11, version = version + 1, updated_at = NOW()
		WHERE user_id = $1 AND collection_id = $2 AND item_id = $3 AND version = $12
	`

	result, err := s.db.ExecContext(ctx, query,
		record.UserID, record.CollectionID, record.ItemID,
		record.Box, record.Ease, record.IntervalDays, record.DueDate,
		record.LastReviewedAt, record.ConsecutiveCorrect, record.TotalReps,
		formatsJSON, record.Version,
	)
	if err != nil {
		return store.NewStoreError("review_record", "save", "update failed", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("review_record", "save", "rows affected", err)
	}
	if affected == 0 {
		// The base version is stale: a concurrent rating landed first.
		return store.ErrVersionConflict
	}

	record.Version++
	return nil
}

// WithTx implements store.ReviewRecordStore.WithTx.
func (s *ReviewRecordStore) WithTx(tx *sql.Tx) store.ReviewRecordStore {
	return &ReviewRecordStore{
		db:     tx,
		logger: s.logger,
	}
}

func scanRecord(row rowScanner) (*domain.ReviewRecord, error) {
	var (
		rec         domain.ReviewRecord
		formatsJSON []byte
		lastReview  sql.NullTime
	)

	err := row.Scan(
		&rec.UserID,
		&rec.CollectionID,
		&rec.ItemID,
		&rec.Box,
		&rec.Ease,
		&rec.IntervalDays,
		&rec.DueDate,
		&lastReview,
		&rec.ConsecutiveCorrect,
		&rec.TotalReps,
		&formatsJSON,
		&rec.ChapterNumber,
		&rec.Version,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastReview.Valid {
		rec.LastReviewedAt = lastReview.Time
	}
	if err := unmarshalLabels(formatsJSON, &rec.ShownFormats); err != nil {
		return nil, fmt.Errorf("invalid shown formats payload: %w", err)
	}

	return &rec, nil
}
