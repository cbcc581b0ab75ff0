package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/diet-service/internal/repositories"
)

// gormStore implements repositories.Store for one model.
type gormStore[T any] struct {
	db   *gorm.DB
	name string
}

func newStore[T any](db *gorm.DB, name string) *gormStore[T] {
	return &gormStore[T]{db: db, name: name}
}

var byPrimaryKey = clause.OrderByColumn{
	Column: clause.Column{Table: clause.CurrentTable, Name: clause.PrimaryKey},
}

func (s *gormStore[T]) query(ctx context.Context, filter repositories.Filter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(new(T))
	if len(filter) > 0 {
		q = q.Where(map[string]interface{}(filter))
	}
	return q
}

func (s *gormStore[T]) FindOne(ctx context.Context, filter repositories.Filter) (*T, error) {
	var record T
	err := s.query(ctx, filter).Order(byPrimaryKey).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, handleDBError(err, "find "+s.name)
	}
	return &record, nil
}

func (s *gormStore[T]) FindMany(ctx context.Context, filter repositories.Filter) ([]T, error) {
	var records []T
	if err := s.query(ctx, filter).Order(byPrimaryKey).Find(&records).Error; err != nil {
		return nil, handleDBError(err, "list "+s.name)
	}
	return records, nil
}

func (s *gormStore[T]) All(ctx context.Context) ([]T, error) {
	return s.FindMany(ctx, nil)
}

func (s *gormStore[T]) Page(ctx context.Context, offset, limit int) ([]T, int64, error) {
	var total int64
	if err := s.query(ctx, nil).Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count "+s.name)
	}

	var records []T
	err := s.query(ctx, nil).
		Order(byPrimaryKey).
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, handleDBError(err, "page "+s.name)
	}
	return records, total, nil
}

func (s *gormStore[T]) Count(ctx context.Context, filter repositories.Filter) (int64, error) {
	var total int64
	if err := s.query(ctx, filter).Count(&total).Error; err != nil {
		return 0, handleDBError(err, "count "+s.name)
	}
	return total, nil
}

// Associations are persisted through their own stores.
func (s *gormStore[T]) Create(ctx context.Context, record *T) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(record).Error
	return handleDBError(err, "create "+s.name)
}

func (s *gormStore[T]) Save(ctx context.Context, record *T) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Save(record).Error
	return handleDBError(err, "save "+s.name)
}

func (s *gormStore[T]) Delete(ctx context.Context, filter repositories.Filter) (int64, error) {
	if len(filter) == 0 {
		return 0, fmt.Errorf("delete %s: %w", s.name, gorm.ErrMissingWhereClause)
	}
	result := s.db.WithContext(ctx).Where(map[string]interface{}(filter)).Delete(new(T))
	if result.Error != nil {
		return 0, handleDBError(result.Error, "delete "+s.name)
	}
	return result.RowsAffected, nil
}

func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}
