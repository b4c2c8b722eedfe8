package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityErrorsWrapNotFound(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ErrCollectionNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrItemNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrRecordNotFound, ErrNotFound)

	assert.True(t, IsNotFoundError(ErrItemNotFound))
	assert.False(t, IsNotFoundError(ErrVersionConflict))
	assert.False(t, IsNotFoundError(nil))
}

func TestStoreErrorWrapping(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection refused")
	err := NewStoreError("review_record", "save", "database unavailable", inner)

	assert.Contains(t, err.Error(), "save operation on review_record failed")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, inner)

	var storeErr *StoreError
	assert.ErrorAs(t, error(err), &storeErr)
	assert.Equal(t, "save", storeErr.Operation)
}

func TestStoreErrorWithoutCause(t *testing.T) {
	t.Parallel()

	err := NewStoreError("item", "get", "not in catalog", nil)
	assert.Equal(t, "get operation on item failed: not in catalog", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
