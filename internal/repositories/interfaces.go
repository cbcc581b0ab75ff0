package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Filter matches records by column name. A slice value matches any of its
// elements; a nil value matches NULL.
type Filter map[string]interface{}

// Store is the generic record store. Results of FindMany, Page and All are
// ordered by primary key.
type Store[T any] interface {
	FindOne(ctx context.Context, filter Filter) (*T, error)
	FindMany(ctx context.Context, filter Filter) ([]T, error)
	All(ctx context.Context) ([]T, error)
	Page(ctx context.Context, offset, limit int) ([]T, int64, error)
	Count(ctx context.Context, filter Filter) (int64, error)

	// Create assigns auto-increment keys and timestamps on record.
	Create(ctx context.Context, record *T) error
	// Save inserts or fully replaces record by primary key.
	Save(ctx context.Context, record *T) error
	// Delete removes matching records and reports how many were removed.
	Delete(ctx context.Context, filter Filter) (int64, error)
}

// IsNotFoundError recognises missing records from any Store.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError recognises unique-key violations. The postgres store
// reports them once gorm's TranslateError is on.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// SequenceSyncer is implemented by repositories whose auto-increment
// counters must be moved past rows written with explicit keys.
type SequenceSyncer interface {
	SyncSequence(ctx context.Context, table, column string) error
}
