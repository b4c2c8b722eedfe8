package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shelterwood/mnemo/internal/domain"
	"github.com/shelterwood/mnemo/internal/store"
)

// ItemStore implements the store.ItemStore interface using a PostgreSQL
// database as the storage backend. The catalog is read-only from this
// service's point of view.
type ItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewItemStore creates a new PostgreSQL implementation of the ItemStore
// interface. If logger is nil, a default logger will be used.
func NewItemStore(db store.DBTX, logger *slog.Logger) *ItemStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "item_store")),
	}
}

// Ensure ItemStore implements store.ItemStore interface
var _ store.ItemStore = (*ItemStore)(nil)

// GetByID implements store.ItemStore.GetByID.
func (s *ItemStore) GetByID(
	ctx context.Context,
	collectionID, itemID string,
) (*domain.LearningItem, error) {
	query := `
		SELECT id, collection_id, chapter_number, difficulty, themes, elements, content, created_at
		FROM items
		WHERE collection_id = $1 AND id = $2
	`

	item, err := scanItem(s.db.QueryRowContext(ctx, query, collectionID, itemID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrItemNotFound
		}
		return nil, store.NewStoreError("item", "get", "query failed", err)
	}
	return item, nil
}

// ListByCollection implements store.ItemStore.ListByCollection.
// Items come back in catalog order: chapter first, then item ID.
func (s *ItemStore) ListByCollection(
	ctx context.Context,
	collectionID string,
) ([]domain.LearningItem, error) {
	query := `
		SELECT id, collection_id, chapter_number, difficulty, themes, elements, content, created_at
		FROM items
		WHERE collection_id = $1
		ORDER BY chapter_number, id
	`

	rows, err := s.db.QueryContext(ctx, query, collectionID)
	if err != nil {
		return nil, store.NewStoreError("item", "list", "query failed", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logger.Warn("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	var items []domain.LearningItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, store.NewStoreError("item", "list", "scan failed", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("item", "list", "iteration failed", err)
	}

	// An unknown collection is a not-found condition, distinct from a
	// valid zero-match filter result downstream.
	if len(items) == 0 {
		return nil, store.ErrCollectionNotFound
	}

	return items, nil
}

// WithTx implements store.ItemStore.WithTx.
func (s *ItemStore) WithTx(tx *sql.Tx) store.ItemStore {
	return &ItemStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.LearningItem, error) {
	var (
		item         domain.LearningItem
		themesJSON   []byte
		elementsJSON []byte
	)

	err := row.Scan(
		&item.ID,
		&item.CollectionID,
		&item.ChapterNumber,
		&item.Difficulty,
		&themesJSON,
		&elementsJSON,
		&item.Content,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalLabels(themesJSON, &item.Themes); err != nil {
		return nil, fmt.Errorf("invalid themes payload: %w", err)
	}
	if err := unmarshalLabels(elementsJSON, &item.Elements); err != nil {
		return nil, fmt.Errorf("invalid elements payload: %w", err)
	}

	return &item, nil
}

func unmarshalLabels(raw []byte, dest *[]string) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
