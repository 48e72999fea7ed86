package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/skolara/skolara-api/internal/apperr"
	"github.com/skolara/skolara-api/internal/dto"
	"github.com/skolara/skolara-api/internal/models"
	"github.com/skolara/skolara-api/internal/repository"
)

// EnrollmentService is the ledger linking learners to courses. It gates both
// submissions and grade visibility.
type EnrollmentService interface {
	Enroll(ctx context.Context, actor Actor, courseID uint) (dto.EnrollmentResponse, error)
	Unenroll(ctx context.Context, actor Actor, courseID uint) error
	IsEnrolled(ctx context.Context, learnerID, courseID uint) (bool, error)
	ListForLearner(ctx context.Context, learnerID uint) ([]dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	enrollments  repository.EnrollmentRepository
	courses      repository.CourseRepository
	activity     ActivityRecorder
	logger       zerolog.Logger
	now          func() time.Time
	storeTimeout time.Duration
}

// NewEnrollmentService builds an enrollment service.
func NewEnrollmentService(enrollments repository.EnrollmentRepository, courses repository.CourseRepository, activity ActivityRecorder, logger zerolog.Logger, storeTimeout time.Duration) EnrollmentService {
	return &enrollmentService{
		enrollments:  enrollments,
		courses:      courses,
		activity:     activity,
		logger:       logger.With().Str("component", "enrollment_service").Logger(),
		now:          time.Now,
		storeTimeout: storeTimeout,
	}
}

func (s *enrollmentService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *enrollmentService) Enroll(ctx context.Context, actor Actor, courseID uint) (dto.EnrollmentResponse, error) {
	if !actor.IsLearner() {
		return dto.EnrollmentResponse{}, apperr.Forbidden("only learners may enroll")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if isNotFound(err) {
			return dto.EnrollmentResponse{}, apperr.NotFound("course not found")
		}
		return dto.EnrollmentResponse{}, storeErr(ctx, err)
	}
	if !course.IsPublished() {
		return dto.EnrollmentResponse{}, apperr.Unprocessable("course is not open for enrollment")
	}

	enrollment := models.Enrollment{
		LearnerID:  actor.ID,
		CourseID:   courseID,
		EnrolledAt: s.now(),
	}

	if err := s.enrollments.Create(ctx, &enrollment); err != nil {
		if isDuplicate(err) {
			return dto.EnrollmentResponse{}, apperr.Conflict("already enrolled in this course")
		}
		return dto.EnrollmentResponse{}, storeErr(ctx, err)
	}

	if s.activity != nil {
		_ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "enrollment.created",
			EntityType: "enrollment",
			EntityID:   &enrollment.ID,
			Metadata:   map[string]interface{}{"course_id": courseID},
		})
	}

	s.logger.Info().Uint("learner_id", actor.ID).Uint("course_id", courseID).Msg("learner enrolled")

	enrollment.Course = course
	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) Unenroll(ctx context.Context, actor Actor, courseID uint) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	enrollment, err := s.enrollments.GetByLearnerAndCourse(ctx, actor.ID, courseID)
	if err != nil {
		if isNotFound(err) {
			return apperr.NotFound("enrollment not found")
		}
		return storeErr(ctx, err)
	}

	// Submissions and grades survive unenrollment as historical record.
	if err := s.enrollments.Delete(ctx, enrollment.ID); err != nil {
		if isNotFound(err) {
			return apperr.NotFound("enrollment not found")
		}
		return storeErr(ctx, err)
	}

	if s.activity != nil {
		_ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "enrollment.removed",
			EntityType: "enrollment",
			EntityID:   &enrollment.ID,
			Metadata:   map[string]interface{}{"course_id": courseID},
		})
	}

	s.logger.Info().Uint("learner_id", actor.ID).Uint("course_id", courseID).Msg("learner unenrolled")
	return nil
}

func (s *enrollmentService) IsEnrolled(ctx context.Context, learnerID, courseID uint) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.enrollments.GetByLearnerAndCourse(ctx, learnerID, courseID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, storeErr(ctx, err)
	}

	return true, nil
}

func (s *enrollmentService) ListForLearner(ctx context.Context, learnerID uint) ([]dto.EnrollmentResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	enrollments, err := s.enrollments.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, storeErr(ctx, err)
	}

	return dto.NewEnrollmentResponseSlice(enrollments), nil
}
