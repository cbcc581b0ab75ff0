package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/diet-service/internal/events"
	"github.com/SAP-F-2025/diet-service/internal/models"
	"github.com/SAP-F-2025/diet-service/internal/repositories"
)

type submissionService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewSubmissionService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger) SubmissionService {
	return &submissionService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *submissionService) Create(ctx context.Context, actor *models.User, note string) (*SubmissionResponse, error) {
	if actor == nil {
		return nil, NewAuthenticationError()
	}

	submission := &models.Submission{Note: note, UserID: actor.UserID}
	if err := s.repo.Submissions().Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	events.PublishSafe(ctx, s.publisher, s.logger, events.SubmissionCreated, events.SubmissionEvent{
		SubmissionID: submission.SubmissionID,
		UserID:       submission.UserID,
	})
	return s.respond(ctx, submission)
}

// Edit lets the author change the note. Only managers may accept or reject.
func (s *submissionService) Edit(ctx context.Context, actor *models.User, req *SubmissionRequest) (*SubmissionResponse, error) {
	if actor == nil {
		return nil, NewAuthenticationError()
	}
	submission, err := findOne(ctx, s.repo.Submissions(), repositories.Filter{"submission_id": req.SubmissionID}, errGenericNotFound())
	if err != nil {
		return nil, err
	}
	if err := requireSelfOr(actor, submission.UserID, models.RoleManager); err != nil {
		return nil, err
	}

	assign(&submission.Note, req.Note)
	reviewed := false
	if req.IsAccepted != nil {
		if err := requireRole(actor, models.RoleManager); err != nil {
			return nil, err
		}
		submission.Review(*req.IsAccepted, actor.UserID)
		reviewed = true
	}

	if err := s.repo.Submissions().Save(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}

	if reviewed {
		s.logger.Info("Submission reviewed",
			"submission_id", submission.SubmissionID,
			"accepted", submission.IsAccepted,
			"reviewer", actor.UserID)
		events.PublishSafe(ctx, s.publisher, s.logger, events.SubmissionReviewed, events.SubmissionEvent{
			SubmissionID: submission.SubmissionID,
			UserID:       submission.UserID,
			Reviewer:     submission.Reviewer,
			IsAccepted:   submission.IsAccepted,
		})
	}
	return s.respond(ctx, submission)
}

// Delete reports a missing submission before checking permissions.
func (s *submissionService) Delete(ctx context.Context, actor *models.User, submissionID uint) error {
	if actor == nil {
		return NewAuthenticationError()
	}
	submission, err := findOne(ctx, s.repo.Submissions(), repositories.Filter{"submission_id": submissionID}, errGenericNotFound())
	if err != nil {
		return err
	}
	if err := requireSelfOr(actor, submission.UserID, models.RoleManager); err != nil {
		return err
	}

	if _, err := s.repo.Submissions().Delete(ctx, repositories.Filter{"submission_id": submissionID}); err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	return nil
}

func (s *submissionService) Get(ctx context.Context, submissionID uint) (*SubmissionResponse, error) {
	submission, err := findOne(ctx, s.repo.Submissions(), repositories.Filter{"submission_id": submissionID}, errGenericNotFound())
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, submission)
}

func (s *submissionService) List(ctx context.Context, page string) (*Page[SubmissionResponse], error) {
	submissions, overflow, err := paginate(ctx, s.repo.Submissions(), page)
	if err != nil {
		return nil, err
	}

	results := make([]SubmissionResponse, 0, len(submissions))
	for i := range submissions {
		resp, err := s.respond(ctx, &submissions[i])
		if err != nil {
			return nil, err
		}
		results = append(results, *resp)
	}
	return &Page[SubmissionResponse]{Overflow: overflow, Results: results}, nil
}

// respond expands the author and the reviewer. A reviewer whose account
// is gone is reported as nil.
func (s *submissionService) respond(ctx context.Context, submission *models.Submission) (*SubmissionResponse, error) {
	author, err := findOptional(ctx, s.repo.Users(), repositories.Filter{"user_id": submission.UserID})
	if err != nil {
		return nil, err
	}
	resp := &SubmissionResponse{Submission: *submission, User: author}
	if submission.Reviewer != nil {
		resp.Reviewer, err = findOptional(ctx, s.repo.Users(), repositories.Filter{"user_id": *submission.Reviewer})
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}
