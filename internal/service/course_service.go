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

// CourseService owns the course lifecycle: draft, published, archived.
type CourseService interface {
	List(ctx context.Context, filter repository.CourseFilter) ([]dto.CourseResponse, int64, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error)
	Publish(ctx context.Context, actor Actor, id uint) (dto.CourseResponse, error)
	Archive(ctx context.Context, actor Actor, id uint) (dto.CourseResponse, error)
}

type courseService struct {
	courses      repository.CourseRepository
	assignments  repository.AssignmentRepository
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	logger       zerolog.Logger
	storeTimeout time.Duration
}

// NewCourseService builds a course service.
func NewCourseService(courses repository.CourseRepository, assignments repository.AssignmentRepository, validate *validator.Validate, logger zerolog.Logger, storeTimeout time.Duration) CourseService {
	return &courseService{
		courses:      courses,
		assignments:  assignments,
		validator:    validate,
		sanitizer:    bluemonday.StrictPolicy(),
		logger:       logger.With().Str("component", "course_service").Logger(),
		storeTimeout: storeTimeout,
	}
}

func (s *courseService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *courseService) List(ctx context.Context, filter repository.CourseFilter) ([]dto.CourseResponse, int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	courses, total, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, 0, storeErr(ctx, err)
	}

	return dto.NewCourseResponseSlice(courses), total, nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return dto.CourseResponse{}, apperr.NotFound("course not found")
		}
		return dto.CourseResponse{}, storeErr(ctx, err)
	}

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Create(ctx context.Context, actor Actor, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if !actor.IsInstructor() {
		return dto.CourseResponse{}, apperr.Forbidden("only instructors may create courses")
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, validationErr(err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	course := models.Course{
		OwnerID:     actor.ID,
		Title:       s.sanitizer.Sanitize(payload.Title),
		Description: s.sanitizer.Sanitize(payload.Description),
		Status:      models.CourseStatusDraft,
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, storeErr(ctx, err)
	}

	s.logger.Info().Uint("course_id", course.ID).Uint("owner_id", actor.ID).Msg("course created")

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Update(ctx context.Context, actor Actor, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, validationErr(err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	course, err := s.resolveOwned(ctx, actor, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	if payload.Title != nil {
		course.Title = s.sanitizer.Sanitize(*payload.Title)
	}
	if payload.Description != nil {
		course.Description = s.sanitizer.Sanitize(*payload.Description)
	}

	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, storeErr(ctx, err)
	}

	s.logger.Info().Uint("course_id", course.ID).Msg("course updated")

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Publish(ctx context.Context, actor Actor, id uint) (dto.CourseResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	course, err := s.resolveOwned(ctx, actor, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	if course.Status != models.CourseStatusDraft {
		return dto.CourseResponse{}, apperr.Unprocessable("only draft courses can be published")
	}

	count, err := s.assignments.CountByCourse(ctx, course.ID)
	if err != nil {
		return dto.CourseResponse{}, storeErr(ctx, err)
	}
	if count == 0 {
		return dto.CourseResponse{}, apperr.Unprocessable("course needs at least one assignment before publishing")
	}

	moved, err := s.courses.UpdateStatus(ctx, course.ID, models.CourseStatusDraft, models.CourseStatusPublished)
	if err != nil {
		return dto.CourseResponse{}, storeErr(ctx, err)
	}
	if !moved {
		return dto.CourseResponse{}, apperr.Unprocessable("course is no longer a draft")
	}

	course.Status = models.CourseStatusPublished
	s.logger.Info().Uint("course_id", course.ID).Msg("course published")

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Archive(ctx context.Context, actor Actor, id uint) (dto.CourseResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	course, err := s.resolveOwned(ctx, actor, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	if course.Status == models.CourseStatusArchived {
		return dto.NewCourseResponse(course), nil
	}

	moved, err := s.courses.UpdateStatus(ctx, course.ID, course.Status, models.CourseStatusArchived)
	if err != nil {
		return dto.CourseResponse{}, storeErr(ctx, err)
	}
	if !moved {
		return dto.CourseResponse{}, apperr.Unprocessable("course status changed concurrently")
	}

	course.Status = models.CourseStatusArchived
	s.logger.Info().Uint("course_id", course.ID).Msg("course archived")

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) resolveOwned(ctx context.Context, actor Actor, id uint) (models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
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
