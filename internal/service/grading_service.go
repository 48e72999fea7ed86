package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/skolara/skolara-api/internal/apperr"
	"github.com/skolara/skolara-api/internal/dto"
	"github.com/skolara/skolara-api/internal/models"
	"github.com/skolara/skolara-api/internal/repository"
)

// GradingService transitions submissions to graded or resubmission_required.
type GradingService interface {
	Grade(ctx context.Context, actor Actor, submissionID uint, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error)
	GradeBatch(ctx context.Context, actor Actor, payload dto.GradeBatchRequest) []dto.GradeBatchOutcome
}

type gradingService struct {
	submissions  repository.SubmissionRepository
	assignments  repository.AssignmentRepository
	enrollments  repository.EnrollmentRepository
	validator    *validator.Validate
	activity     ActivityRecorder
	events       EventPublisher
	cache        *redis.Client
	logger       zerolog.Logger
	now          func() time.Time
	storeTimeout time.Duration
	tracer       trace.Tracer
}

// NewGradingService constructs the grading service.
func NewGradingService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, enrollments repository.EnrollmentRepository, validate *validator.Validate, activity ActivityRecorder, events EventPublisher, cache *redis.Client, logger zerolog.Logger, storeTimeout time.Duration) GradingService {
	return &gradingService{
		submissions:  submissions,
		assignments:  assignments,
		enrollments:  enrollments,
		validator:    validate,
		activity:     activity,
		events:       events,
		cache:        cache,
		logger:       logger.With().Str("component", "grading_service").Logger(),
		now:          time.Now,
		storeTimeout: storeTimeout,
		tracer:       otel.Tracer("github.com/skolara/skolara-api/internal/service/grading"),
	}
}

func (s *gradingService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *gradingService) Grade(ctx context.Context, actor Actor, submissionID uint, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.update")
	span.SetAttributes(
		attribute.Int64("grading.submission_id", int64(submissionID)),
		attribute.Int64("grading.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, validationErr(err)
	}

	feedback := strings.TrimSpace(payload.Feedback)
	if feedback == "" {
		return dto.SubmissionResponse{}, apperr.Validation("feedback must not be empty")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if isNotFound(err) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, apperr.NotFound("submission not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.SubmissionResponse{}, storeErr(ctx, err)
	}

	if !submission.Assignment.Course.IsOwnedBy(actor.ID) {
		span.SetStatus(codes.Error, "not_course_owner")
		return dto.SubmissionResponse{}, apperr.Forbidden("only the course owner may grade")
	}

	if submission.Assignment.IsDraft() {
		span.SetStatus(codes.Error, "assignment_draft")
		return dto.SubmissionResponse{}, apperr.Unprocessable("cannot grade work under an unpublished assignment")
	}

	// Re-grading overwrites score, feedback and status in place. There is no
	// grading history; the latest grade is the only grade.
	score := payload.Score
	submission.Score = &score
	submission.Feedback = feedback
	if payload.RequestResubmission {
		submission.Status = models.SubmissionStatusResubmissionRequired
	} else {
		submission.Status = models.SubmissionStatusGraded
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, storeErr(ctx, err)
	}

	s.invalidateGradebook(ctx, submission.Assignment.CourseID, submission.LearnerID)
	s.recomputeProgress(ctx, submission.Assignment.CourseID, submission.LearnerID)

	if s.activity != nil {
		_ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "submission.graded",
			EntityType: "submission",
			EntityID:   &submission.ID,
			Metadata: map[string]interface{}{
				"assignment_id": submission.AssignmentID,
				"learner_id":    submission.LearnerID,
				"score":         payload.Score,
				"status":        submission.Status,
			},
		})
	}

	if s.events != nil {
		if err := s.events.Publish("submission.graded", dto.NewSubmissionResponse(submission)); err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to publish grading event")
		}
	}

	span.SetAttributes(
		attribute.Float64("grading.score", payload.Score),
		attribute.String("grading.status", submission.Status),
	)

	s.logger.Info().Uint("submission_id", submission.ID).Float64("score", payload.Score).Str("status", submission.Status).Msg("submission graded")

	return dto.NewSubmissionResponse(submission), nil
}

// GradeBatch applies Grade independently per item. One item's failure never
// rolls back or blocks the others.
func (s *gradingService) GradeBatch(ctx context.Context, actor Actor, payload dto.GradeBatchRequest) []dto.GradeBatchOutcome {
	outcomes := make([]dto.GradeBatchOutcome, 0, len(payload.Items))

	for _, item := range payload.Items {
		response, err := s.Grade(ctx, actor, item.SubmissionID, dto.GradeSubmissionRequest{
			Score:               item.Score,
			Feedback:            item.Feedback,
			RequestResubmission: item.RequestResubmission,
		})
		if err != nil {
			outcomes = append(outcomes, dto.GradeBatchOutcome{
				SubmissionID: item.SubmissionID,
				Success:      false,
				Error:        apperr.MessageOf(err),
			})
			continue
		}

		outcomes = append(outcomes, dto.GradeBatchOutcome{
			SubmissionID: item.SubmissionID,
			Success:      true,
			Submission:   &response,
		})
	}

	return outcomes
}

func (s *gradingService) invalidateGradebook(ctx context.Context, courseID, learnerID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, gradebookCacheKey(courseID, learnerID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("course_id", courseID).Uint("learner_id", learnerID).Msg("failed to invalidate gradebook cache")
	}
}

// recomputeProgress refreshes the enrollment's derived progress counter:
// graded assignments over gradable assignments. Best-effort only.
func (s *gradingService) recomputeProgress(ctx context.Context, courseID, learnerID uint) {
	enrollment, err := s.enrollments.GetByLearnerAndCourse(ctx, learnerID, courseID)
	if err != nil {
		// Unenrolled learners keep their submissions; nothing to update.
		return
	}

	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{
		CourseID: &courseID,
		Statuses: []string{models.AssignmentStatusPublished, models.AssignmentStatusClosed},
	})
	if err != nil || len(assignments) == 0 {
		return
	}

	submissions, err := s.submissions.ListLatestByCourse(ctx, courseID, learnerID)
	if err != nil {
		return
	}

	graded := 0
	for _, submission := range submissions {
		if submission.IsGraded() {
			graded++
		}
	}

	progress := graded * 100 / len(assignments)
	if err := s.enrollments.UpdateProgress(ctx, enrollment.ID, progress); err != nil {
		s.logger.Warn().Err(err).Uint("enrollment_id", enrollment.ID).Msg("failed to update enrollment progress")
	}
}
