package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skolara/skolara-api/internal/models"
)

// SubmissionFilter narrows submission queries.
type SubmissionFilter struct {
	AssignmentID *uint
	LearnerID    *uint
	Status       *string
}

// SubmissionRepository defines data operations for versioned submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	// GetLatest returns the highest-version submission for the pair, or
	// gorm.ErrRecordNotFound when the learner has not submitted yet.
	GetLatest(ctx context.Context, assignmentID, learnerID uint) (models.Submission, error)
	ListLatestByCourse(ctx context.Context, courseID, learnerID uint) ([]models.Submission, error)
	CountByAssignment(ctx context.Context, assignmentID uint) (int64, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Assignment").
		Preload("Assignment.Course")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}
	if filter.LearnerID != nil {
		query = query.Where("learner_id = ?", *filter.LearnerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var submissions []models.Submission
	if err := query.Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetLatest(ctx context.Context, assignmentID, learnerID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("learner_id = ?", learnerID).
		Order("version DESC").
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

// ListLatestByCourse returns the current submission per assignment of the
// course for one learner. Earlier versions are superseded and skipped.
func (r *submissionRepository) ListLatestByCourse(ctx context.Context, courseID, learnerID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Where("assignments.course_id = ?", courseID).
		Where("submissions.learner_id = ?", learnerID).
		Order("submissions.assignment_id ASC, submissions.version DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	latest := make([]models.Submission, 0, len(submissions))
	seen := make(map[uint]struct{}, len(submissions))
	for _, submission := range submissions {
		if _, ok := seen[submission.AssignmentID]; ok {
			continue
		}
		seen[submission.AssignmentID] = struct{}{}
		latest = append(latest, submission)
	}

	return latest, nil
}

func (r *submissionRepository) CountByAssignment(ctx context.Context, assignmentID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("assignment_id = ?", assignmentID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}
