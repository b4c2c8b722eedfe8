// Package store defines the persistence contracts the scheduling core
// depends on: a read-only item catalog and a review record store with an
// optimistic-concurrency write. Implementations live under
// internal/platform.
package store
