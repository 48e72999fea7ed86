package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skolara/skolara-api/internal/apperr"
	"github.com/skolara/skolara-api/internal/dto"
	"github.com/skolara/skolara-api/internal/models"
	"github.com/skolara/skolara-api/internal/repository"
)

// GradebookService computes a learner's weighted total and letter grade for a
// course from graded submissions.
type GradebookService interface {
	ComputeCourseGrade(ctx context.Context, actor Actor, courseID uint) (dto.CourseGradeResponse, error)
}

type gradebookService struct {
	assignments  repository.AssignmentRepository
	submissions  repository.SubmissionRepository
	enrollments  repository.EnrollmentRepository
	cache        *redis.Client
	cacheTTL     time.Duration
	logger       zerolog.Logger
	storeTimeout time.Duration
}

// NewGradebookService builds the score aggregator.
func NewGradebookService(assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, enrollments repository.EnrollmentRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger, storeTimeout time.Duration) GradebookService {
	return &gradebookService{
		assignments:  assignments,
		submissions:  submissions,
		enrollments:  enrollments,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger.With().Str("component", "gradebook_service").Logger(),
		storeTimeout: storeTimeout,
	}
}

func gradebookCacheKey(courseID, learnerID uint) string {
	return fmt.Sprintf("gradebook:course:%d:learner:%d", courseID, learnerID)
}

func (s *gradebookService) ComputeCourseGrade(ctx context.Context, actor Actor, courseID uint) (dto.CourseGradeResponse, error) {
	if s.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.storeTimeout)
		defer cancel()
	}

	if _, err := s.enrollments.GetByLearnerAndCourse(ctx, actor.ID, courseID); err != nil {
		if isNotFound(err) {
			return dto.CourseGradeResponse{}, apperr.Forbidden("not enrolled in this course")
		}
		return dto.CourseGradeResponse{}, storeErr(ctx, err)
	}

	cacheKey := gradebookCacheKey(courseID, actor.ID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.CourseGradeResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("course_id", courseID).Uint("learner_id", actor.ID).Msg("gradebook cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read gradebook cache")
		}
	}

	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{
		CourseID: &courseID,
		Statuses: []string{models.AssignmentStatusPublished, models.AssignmentStatusClosed},
	})
	if err != nil {
		return dto.CourseGradeResponse{}, storeErr(ctx, err)
	}

	submissions, err := s.submissions.ListLatestByCourse(ctx, courseID, actor.ID)
	if err != nil {
		return dto.CourseGradeResponse{}, storeErr(ctx, err)
	}

	currentByAssignment := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		currentByAssignment[submission.AssignmentID] = submission
	}

	// Only graded submissions count, in both numerator and denominator. A
	// learner with a single graded assignment therefore scores exactly that
	// assignment's score regardless of how much remains ungraded.
	var weightedSum, weightTotal float64
	perAssignment := make([]dto.AssignmentGrade, 0, len(assignments))

	for _, assignment := range assignments {
		entry := dto.AssignmentGrade{
			AssignmentID: assignment.ID,
			Title:        assignment.Title,
			Weight:       assignment.Weight,
			DueDate:      assignment.DueDate,
		}

		if submission, ok := currentByAssignment[assignment.ID]; ok {
			entry.Status = submission.Status
			entry.Version = submission.Version
			entry.Late = submission.Late
			entry.Score = submission.Score

			if submission.IsGraded() && submission.Score != nil {
				weightedSum += *submission.Score * assignment.Weight
				weightTotal += assignment.Weight
				entry.Counted = true
			}
		}

		perAssignment = append(perAssignment, entry)
	}

	totalScore := 0.0
	if weightTotal > 0 {
		totalScore = math.Round(weightedSum/weightTotal*10) / 10
	}

	response := dto.CourseGradeResponse{
		CourseID:      courseID,
		LearnerID:     actor.ID,
		TotalScore:    totalScore,
		LetterGrade:   LetterGrade(totalScore),
		PerAssignment: perAssignment,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store gradebook cache")
			}
		}
	}

	return response, nil
}

// LetterGrade maps a 0-100 total to a letter, inclusive at each threshold.
func LetterGrade(total float64) string {
	switch {
	case total >= 95:
		return "A+"
	case total >= 90:
		return "A"
	case total >= 85:
		return "B+"
	case total >= 80:
		return "B"
	case total >= 75:
		return "C+"
	case total >= 70:
		return "C"
	case total >= 65:
		return "D+"
	case total >= 60:
		return "D"
	default:
		return "F"
	}
}
