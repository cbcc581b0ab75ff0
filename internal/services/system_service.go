package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SAP-F-2025/diet-service/internal/bulk"
	"github.com/SAP-F-2025/diet-service/internal/cache"
	"github.com/SAP-F-2025/diet-service/internal/events"
	"github.com/SAP-F-2025/diet-service/internal/models"
)

type systemService struct {
	bulk      *bulk.Service
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewSystemService(bulkService *bulk.Service, cm *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger) SystemService {
	return &systemService{
		bulk:      bulkService,
		cache:     cm,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *systemService) Backup(ctx context.Context, actor *models.User, resource string) ([]byte, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	data, err := s.bulk.ExportCSV(ctx, resource)
	if errors.Is(err, bulk.ErrUnknownResource) {
		return nil, nil
	}
	return data, err
}

func (s *systemService) Workbook(ctx context.Context, actor *models.User, resource string) ([]byte, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	data, err := s.bulk.ExportXLSX(ctx, resource)
	if errors.Is(err, bulk.ErrUnknownResource) {
		return nil, nil
	}
	return data, err
}

// Rollback restores a resource from a CSV backup. Cached users and
// intakes are dropped after a successful import.
func (s *systemService) Rollback(ctx context.Context, actor *models.User, resource string, data []byte) (*RollbackResult, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}

	result, err := s.bulk.ImportCSV(ctx, resource, data)
	if errors.Is(err, bulk.ErrUnknownResource) {
		return &RollbackResult{Known: false}, nil
	}
	if err != nil {
		return nil, err
	}

	if result.HasErrors {
		s.logger.Warn("Rollback rejected", "resource", resource, "errors", result.Errors)
	} else {
		cache.SafeInvalidatePattern(ctx, s.cache.Users, "*")
		cache.InvalidateAllIntake(ctx, s.cache)
	}

	events.PublishSafe(ctx, s.publisher, s.logger, events.SystemRollback, events.RollbackEvent{
		Resource:  resource,
		Rows:      result.Rows,
		HasErrors: result.HasErrors,
		UserID:    actor.UserID,
	})
	return &RollbackResult{Known: true, Rows: result.Rows, HasErrors: result.HasErrors}, nil
}
