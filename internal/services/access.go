package services

import (
	"context"

	"github.com/SAP-F-2025/diet-service/internal/models"
	"github.com/SAP-F-2025/diet-service/internal/repositories"
)

// requireRole fails with 401 for a missing actor and 403 for one below min.
func requireRole(actor *models.User, min models.UserRole) error {
	if actor == nil {
		return NewAuthenticationError()
	}
	if !actor.Role.AtLeast(min) {
		return NewPermissionError()
	}
	return nil
}

// requireSelfOr lets the owner of a record through, or anyone with min.
func requireSelfOr(actor *models.User, ownerID string, min models.UserRole) error {
	if actor == nil {
		return NewAuthenticationError()
	}
	if actor.UserID == ownerID || actor.Role.AtLeast(min) {
		return nil
	}
	return NewPermissionError()
}

// findOne maps a missing record to notFound and passes other failures up.
func findOne[T any](ctx context.Context, store repositories.Store[T], filter repositories.Filter, notFound *Error) (*T, error) {
	record, err := store.FindOne(ctx, filter)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, notFound
		}
		return nil, err
	}
	return record, nil
}

// findOptional returns nil without error for a missing record.
func findOptional[T any](ctx context.Context, store repositories.Store[T], filter repositories.Filter) (*T, error) {
	record, err := store.FindOne(ctx, filter)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
