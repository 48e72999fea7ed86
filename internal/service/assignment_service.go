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

// WarningPastDuePublish is returned when an assignment is published after its
// due date. Publication still succeeds; the instructor just gets told.
const WarningPastDuePublish = "assignment published after its due date; learners can no longer submit on time"

// AssignmentService owns the assignment lifecycle state machine:
// draft -> published -> closed, with closed terminal.
type AssignmentService interface {
	List(ctx context.Context, filter repository.AssignmentFilter) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Publish(ctx context.Context, actor Actor, id uint) (dto.AssignmentPublishResponse, error)
	Close(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type assignmentService struct {
	assignments  repository.AssignmentRepository
	courses      repository.CourseRepository
	submissions  repository.SubmissionRepository
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	events       EventPublisher
	logger       zerolog.Logger
	now          func() time.Time
	storeTimeout time.Duration
}

// NewAssignmentService builds an assignment service.
func NewAssignmentService(assignments repository.AssignmentRepository, courses repository.CourseRepository, submissions repository.SubmissionRepository, validate *validator.Validate, events EventPublisher, logger zerolog.Logger, storeTimeout time.Duration) AssignmentService {
	return &assignmentService{
		assignments:  assignments,
		courses:      courses,
		submissions:  submissions,
		validator:    validate,
		sanitizer:    bluemonday.StrictPolicy(),
		events:       events,
		logger:       logger.With().Str("component", "assignment_service").Logger(),
		now:          time.Now,
		storeTimeout: storeTimeout,
	}
}

func (s *assignmentService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *assignmentService) List(ctx context.Context, filter repository.AssignmentFilter) ([]dto.AssignmentResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	assignments, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, storeErr(ctx, err)
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return dto.AssignmentResponse{}, apperr.NotFound("assignment not found")
		}
		return dto.AssignmentResponse{}, storeErr(ctx, err)
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, validationErr(err)
	}

	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, apperr.Validation("invalid due date: " + err.Error())
	}
	if !dueDate.After(s.now()) {
		return dto.AssignmentResponse{}, apperr.Validation("due date must be in the future")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.resolveOwnedCourse(ctx, actor, payload.CourseID); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		CourseID:          payload.CourseID,
		Title:             s.sanitizer.Sanitize(payload.Title),
		Description:       s.sanitizer.Sanitize(payload.Description),
		DueDate:           dueDate,
		Weight:            payload.Weight,
		AllowLate:         payload.AllowLate,
		AllowResubmission: payload.AllowResubmission,
		Status:            models.AssignmentStatusDraft,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, storeErr(ctx, err)
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("course_id", assignment.CourseID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, validationErr(err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	assignment, err := s.resolveOwned(ctx, actor, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	// Title and due date freeze once the assignment leaves draft. Policy
	// fields stay mutable in every status.
	if !assignment.IsDraft() {
		if payload.Title != nil {
			return dto.AssignmentResponse{}, apperr.Unprocessable("title is immutable once the assignment is published")
		}
		if payload.DueDate != nil {
			return dto.AssignmentResponse{}, apperr.Unprocessable("due date is immutable once the assignment is published")
		}
	}

	if payload.Title != nil {
		assignment.Title = s.sanitizer.Sanitize(*payload.Title)
	}
	if payload.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, apperr.Validation("invalid due date: " + err.Error())
		}
		if !dueDate.After(s.now()) {
			return dto.AssignmentResponse{}, apperr.Validation("due date must be in the future")
		}
		assignment.DueDate = dueDate
	}
	if payload.Description != nil {
		assignment.Description = s.sanitizer.Sanitize(*payload.Description)
	}
	if payload.Weight != nil {
		assignment.Weight = *payload.Weight
	}
	if payload.AllowLate != nil {
		assignment.AllowLate = *payload.AllowLate
	}
	if payload.AllowResubmission != nil {
		assignment.AllowResubmission = *payload.AllowResubmission
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, storeErr(ctx, err)
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Publish(ctx context.Context, actor Actor, id uint) (dto.AssignmentPublishResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	assignment, err := s.resolveOwned(ctx, actor, id)
	if err != nil {
		return dto.AssignmentPublishResponse{}, err
	}

	if !assignment.IsDraft() {
		return dto.AssignmentPublishResponse{}, apperr.Unprocessable("only draft assignments can be published")
	}

	course, err := s.courses.GetByID(ctx, assignment.CourseID)
	if err != nil {
		if isNotFound(err) {
			return dto.AssignmentPublishResponse{}, apperr.NotFound("course not found")
		}
		return dto.AssignmentPublishResponse{}, storeErr(ctx, err)
	}
	if !course.IsPublished() {
		return dto.AssignmentPublishResponse{}, apperr.Unprocessable("parent course must be published first")
	}

	moved, err := s.assignments.UpdateStatus(ctx, assignment.ID, models.AssignmentStatusDraft, models.AssignmentStatusPublished)
	if err != nil {
		return dto.AssignmentPublishResponse{}, storeErr(ctx, err)
	}
	if !moved {
		return dto.AssignmentPublishResponse{}, apperr.Unprocessable("assignment is no longer a draft")
	}
	assignment.Status = models.AssignmentStatusPublished

	// A past due date does not block publication; it is surfaced to the
	// caller as an integrity warning instead.
	var warnings []string
	if assignment.IsPastDue(s.now()) {
		warnings = append(warnings, WarningPastDuePublish)
		s.logger.Warn().Uint("assignment_id", assignment.ID).Time("due_date", assignment.DueDate).Msg("assignment published past due")
	}

	if s.events != nil {
		if err := s.events.Publish("assignment.published", dto.NewAssignmentResponse(assignment)); err != nil {
			s.logger.Warn().Err(err).Uint("assignment_id", assignment.ID).Msg("failed to publish assignment event")
		}
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment published")

	return dto.AssignmentPublishResponse{
		Assignment: dto.NewAssignmentResponse(assignment),
		Warnings:   warnings,
	}, nil
}

func (s *assignmentService) Close(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	assignment, err := s.resolveOwned(ctx, actor, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if assignment.Status != models.AssignmentStatusPublished {
		return dto.AssignmentResponse{}, apperr.Unprocessable("only published assignments can be closed")
	}

	moved, err := s.assignments.UpdateStatus(ctx, assignment.ID, models.AssignmentStatusPublished, models.AssignmentStatusClosed)
	if err != nil {
		return dto.AssignmentResponse{}, storeErr(ctx, err)
	}
	if !moved {
		return dto.AssignmentResponse{}, apperr.Unprocessable("assignment is no longer published")
	}

	assignment.Status = models.AssignmentStatusClosed
	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment closed")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, actor Actor, id uint) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	assignment, err := s.resolveOwned(ctx, actor, id)
	if err != nil {
		return err
	}

	if !assignment.IsDraft() {
		return apperr.Unprocessable("only draft assignments can be deleted")
	}

	count, err := s.submissions.CountByAssignment(ctx, assignment.ID)
	if err != nil {
		return storeErr(ctx, err)
	}
	if count > 0 {
		return apperr.Unprocessable("assignment has submissions and cannot be deleted")
	}

	if err := s.assignments.Delete(ctx, assignment.ID); err != nil {
		if isNotFound(err) {
			return apperr.NotFound("assignment not found")
		}
		return storeErr(ctx, err)
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment deleted")
	return nil
}

func (s *assignmentService) resolveOwned(ctx context.Context, actor Actor, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return models.Assignment{}, apperr.NotFound("assignment not found")
		}
		return models.Assignment{}, storeErr(ctx, err)
	}

	if _, err := s.resolveOwnedCourse(ctx, actor, assignment.CourseID); err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (s *assignmentService) resolveOwnedCourse(ctx context.Context, actor Actor, courseID uint) (models.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if isNotFound(err) {
			return models.Course{}, apperr.NotFound("course not found")
		}
		return models.Course{}, storeErr(ctx, err)
	}

	if !course.IsOwnedBy(actor.ID) {
		return models.Course{}, apperr.Forbidden("only the course owner may do this")
	}

	return course, nil
}
