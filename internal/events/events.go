// Package events publishes domain events. Publishing is best effort: the
// request that caused an event never fails because of it.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	Source  = "diet-service"
	Version = "1.0"
)

const (
	UserRegistered     = "user.registered"
	UserDeleted        = "user.deleted"
	SubmissionCreated  = "submission.created"
	SubmissionReviewed = "submission.reviewed"
	SystemRollback     = "system.rollback"
)

type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    Source,
		Version:   Version,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type UserEvent struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

type SubmissionEvent struct {
	SubmissionID uint    `json:"submission_id"`
	UserID       string  `json:"user_id"`
	Reviewer     *string `json:"reviewer,omitempty"`
	IsAccepted   bool    `json:"is_accepted"`
}

type RollbackEvent struct {
	Resource  string `json:"resource"`
	Rows      int    `json:"rows"`
	HasErrors bool   `json:"has_errors"`
	UserID    string `json:"user_id"`
}
