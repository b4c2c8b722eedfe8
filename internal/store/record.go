package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shelterwood/mnemo/internal/domain"
)

// ReviewRecordStore persists one ReviewRecord per (user, collection, item).
// Records are created on first rating, rewritten on every rating after
// that, and never deleted by the scheduling core.
type ReviewRecordStore interface {
	// Get retrieves the record for one item.
	// Returns ErrRecordNotFound when the item has never been rated.
	Get(
		ctx context.Context,
		userID uuid.UUID,
		collectionID, itemID string,
	) (*domain.ReviewRecord, error)

	// ListByCollection retrieves all of the user's records for a
	// collection, keyed by item ID. The map is empty, not nil-erroring,
	// when nothing has been rated yet.
	ListByCollection(
		ctx context.Context,
		userID uuid.UUID,
		collectionID string,
	) (map[string]*domain.ReviewRecord, error)

	// Save writes the record conditionally. A record with Version 0 is
	// inserted; a positive Version updates the row only when the stored
	// version still matches, returning ErrVersionConflict otherwise so a
	// stale read-modify-write cannot silently overwrite a newer rating.
	// On success the record's Version is advanced.
	Save(ctx context.Context, record *domain.ReviewRecord) error

	// WithTx returns a ReviewRecordStore bound to the given transaction.
	WithTx(tx *sql.Tx) ReviewRecordStore
}
