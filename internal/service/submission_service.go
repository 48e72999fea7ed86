package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/skolara/skolara-api/internal/apperr"
	"github.com/skolara/skolara-api/internal/dto"
	"github.com/skolara/skolara-api/internal/models"
	"github.com/skolara/skolara-api/internal/repository"
)

// submitRetries bounds the version-collision retry loop. Two collisions in a
// row for the same (assignment, learner) pair already means a pathological
// caller; give up rather than spin.
const submitRetries = 3

// SubmissionService accepts, versions and timestamps learner work.
type SubmissionService interface {
	Submit(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Update(ctx context.Context, actor Actor, submissionID uint, payload dto.SubmissionUpdateRequest) (dto.SubmissionResponse, error)
	GetLatest(ctx context.Context, actor Actor, assignmentID uint) (dto.SubmissionResponse, error)
	List(ctx context.Context, filter repository.SubmissionFilter) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions  repository.SubmissionRepository
	assignments  repository.AssignmentRepository
	enrollments  repository.EnrollmentRepository
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	events       EventPublisher
	logger       zerolog.Logger
	now          func() time.Time
	storeTimeout time.Duration
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, enrollments repository.EnrollmentRepository, validate *validator.Validate, events EventPublisher, logger zerolog.Logger, storeTimeout time.Duration) SubmissionService {
	return &submissionService{
		submissions:  submissions,
		assignments:  assignments,
		enrollments:  enrollments,
		validator:    validate,
		sanitizer:    bluemonday.StrictPolicy(),
		events:       events,
		logger:       logger.With().Str("component", "submission_service").Logger(),
		now:          time.Now,
		storeTimeout: storeTimeout,
	}
}

func (s *submissionService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *submissionService) Submit(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, validationErr(err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if isNotFound(err) {
			return dto.SubmissionResponse{}, apperr.NotFound("assignment not found")
		}
		return dto.SubmissionResponse{}, storeErr(ctx, err)
	}

	switch assignment.Status {
	case models.AssignmentStatusDraft:
		return dto.SubmissionResponse{}, apperr.Unprocessable("assignment is not published yet")
	case models.AssignmentStatusClosed:
		return dto.SubmissionResponse{}, apperr.Unprocessable("assignment is closed")
	}

	if _, err := s.enrollments.GetByLearnerAndCourse(ctx, actor.ID, assignment.CourseID); err != nil {
		if isNotFound(err) {
			return dto.SubmissionResponse{}, apperr.Forbidden("not enrolled in this course")
		}
		return dto.SubmissionResponse{}, storeErr(ctx, err)
	}

	submittedAt := s.now()
	isLate := assignment.IsPastDue(submittedAt)
	if isLate && !assignment.AllowLate {
		return dto.SubmissionResponse{}, apperr.Unprocessable("deadline passed")
	}

	// Version assignment and insert race against concurrent submits for the
	// same (assignment, learner) pair. The unique (assignment, learner,
	// version) index makes the loser fail with a duplicated key, which we
	// resolve by re-reading the latest version and trying again.
	for attempt := 0; attempt < submitRetries; attempt++ {
		version := 1
		latest, err := s.submissions.GetLatest(ctx, assignment.ID, actor.ID)
		switch {
		case err == nil:
			// Resubmission is gated purely by the assignment flag, not by
			// the prior submission's grading status.
			if !assignment.AllowResubmission {
				return dto.SubmissionResponse{}, apperr.Conflict("already submitted")
			}
			version = latest.Version + 1
		case isNotFound(err):
			// First submission.
		default:
			return dto.SubmissionResponse{}, storeErr(ctx, err)
		}

		submission := models.Submission{
			AssignmentID: assignment.ID,
			LearnerID:    actor.ID,
			Version:      version,
			Content:      s.sanitizer.Sanitize(payload.Content),
			Link:         payload.Link,
			SubmittedAt:  submittedAt,
			Late:         isLate,
			Status:       models.SubmissionStatusSubmitted,
		}

		if err := s.submissions.Create(ctx, &submission); err != nil {
			if isDuplicate(err) {
				s.logger.Debug().Uint("assignment_id", assignment.ID).Uint("learner_id", actor.ID).Int("version", version).Msg("submission version collision, retrying")
				continue
			}
			return dto.SubmissionResponse{}, storeErr(ctx, err)
		}

		if s.events != nil {
			if err := s.events.Publish("submission.created", dto.NewSubmissionResponse(submission)); err != nil {
				s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to publish submission event")
			}
		}

		s.logger.Info().Uint("submission_id", submission.ID).Int("version", version).Bool("late", isLate).Msg("submission created")

		submission.Assignment = assignment
		return dto.NewSubmissionResponse(submission), nil
	}

	return dto.SubmissionResponse{}, apperr.Conflict("could not allocate a submission version, retry")
}

func (s *submissionService) Update(ctx context.Context, actor Actor, submissionID uint, payload dto.SubmissionUpdateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, validationErr(err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if isNotFound(err) {
			return dto.SubmissionResponse{}, apperr.NotFound("submission not found")
		}
		return dto.SubmissionResponse{}, storeErr(ctx, err)
	}

	if submission.LearnerID != actor.ID {
		return dto.SubmissionResponse{}, apperr.Forbidden("only the submitting learner may edit this")
	}
	if !submission.Assignment.AllowResubmission {
		return dto.SubmissionResponse{}, apperr.Unprocessable("assignment does not allow edits")
	}
	if submission.IsGraded() {
		return dto.SubmissionResponse{}, apperr.Unprocessable("submission has already been graded")
	}

	if payload.Content != nil {
		submission.Content = s.sanitizer.Sanitize(*payload.Content)
	}
	if payload.Link != nil {
		submission.Link = *payload.Link
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, storeErr(ctx, err)
	}

	s.logger.Info().Uint("submission_id", submission.ID).Msg("submission updated")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) GetLatest(ctx context.Context, actor Actor, assignmentID uint) (dto.SubmissionResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	submission, err := s.submissions.GetLatest(ctx, assignmentID, actor.ID)
	if err != nil {
		if isNotFound(err) {
			return dto.SubmissionResponse{}, apperr.NotFound("no submission yet")
		}
		return dto.SubmissionResponse{}, storeErr(ctx, err)
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, filter repository.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		return nil, storeErr(ctx, err)
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}
