package store

import (
	"context"
	"database/sql"

	"github.com/shelterwood/mnemo/internal/domain"
)

// ItemStore is the read-only contract over the item catalog. Ingestion and
// item generation populate the catalog elsewhere; the scheduling core only
// ever reads it.
type ItemStore interface {
	// GetByID retrieves one catalog item.
	// Returns ErrItemNotFound if the item does not exist in the collection.
	GetByID(ctx context.Context, collectionID, itemID string) (*domain.LearningItem, error)

	// ListByCollection retrieves every item in a collection, in catalog
	// order (chapter, then item ID). Returns ErrCollectionNotFound when
	// the collection has no items at all, which is distinct from a valid
	// empty filter result downstream.
	ListByCollection(ctx context.Context, collectionID string) ([]domain.LearningItem, error)

	// WithTx returns an ItemStore bound to the given transaction.
	WithTx(tx *sql.Tx) ItemStore
}
