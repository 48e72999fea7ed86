package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skolara/skolara-api/internal/models"
	"github.com/skolara/skolara-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func listFilterFor(assignmentID, learnerID uint) repository.SubmissionFilter {
	return repository.SubmissionFilter{AssignmentID: &assignmentID, LearnerID: &learnerID}
}

// In-memory repositories mirroring the GORM-backed behavior, including the
// unique constraints the services rely on.

type memCourseRepo struct {
	mu      sync.Mutex
	courses map[uint]models.Course
	nextID  uint
}

func newMemCourseRepo() *memCourseRepo {
	return &memCourseRepo{courses: make(map[uint]models.Course), nextID: 1}
}

func (m *memCourseRepo) List(ctx context.Context, filter repository.CourseFilter) ([]models.Course, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]models.Course, 0, len(m.courses))
	for _, course := range m.courses {
		if filter.OwnerID != nil && course.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.Status != nil && course.Status != *filter.Status {
			continue
		}
		results = append(results, course)
	}
	return results, int64(len(results)), nil
}

func (m *memCourseRepo) GetByID(ctx context.Context, id uint) (models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	course, ok := m.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (m *memCourseRepo) Create(ctx context.Context, course *models.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	course.ID = m.nextID
	course.CreatedAt = time.Now()
	course.UpdatedAt = time.Now()
	m.courses[course.ID] = *course
	m.nextID++
	return nil
}

func (m *memCourseRepo) Update(ctx context.Context, course *models.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	course.UpdatedAt = time.Now()
	m.courses[course.ID] = *course
	return nil
}

func (m *memCourseRepo) UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	course, ok := m.courses[id]
	if !ok || course.Status != from {
		return false, nil
	}
	course.Status = to
	m.courses[id] = course
	return true, nil
}

type memAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[uint]models.Assignment
	nextID      uint
	courses     *memCourseRepo
}

func newMemAssignmentRepo(courses *memCourseRepo) *memAssignmentRepo {
	return &memAssignmentRepo{assignments: make(map[uint]models.Assignment), nextID: 1, courses: courses}
}

func (m *memAssignmentRepo) List(ctx context.Context, filter repository.AssignmentFilter) ([]models.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]models.Assignment, 0, len(m.assignments))
	for _, assignment := range m.assignments {
		if filter.CourseID != nil && assignment.CourseID != *filter.CourseID {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if assignment.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		results = append(results, assignment)
	}
	return results, nil
}

func (m *memAssignmentRepo) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	m.mu.Lock()
	assignment, ok := m.assignments[id]
	m.mu.Unlock()
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	if m.courses != nil {
		if course, err := m.courses.GetByID(ctx, assignment.CourseID); err == nil {
			assignment.Course = course
		}
	}
	return assignment, nil
}

func (m *memAssignmentRepo) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, assignment := range m.assignments {
		if assignment.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

func (m *memAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	assignment.ID = m.nextID
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = time.Now()
	stored := *assignment
	stored.Course = models.Course{}
	m.assignments[assignment.ID] = stored
	m.nextID++
	return nil
}

func (m *memAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	assignment.UpdatedAt = time.Now()
	stored := *assignment
	stored.Course = models.Course{}
	m.assignments[assignment.ID] = stored
	return nil
}

func (m *memAssignmentRepo) UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	assignment, ok := m.assignments[id]
	if !ok || assignment.Status != from {
		return false, nil
	}
	assignment.Status = to
	m.assignments[id] = assignment
	return true, nil
}

func (m *memAssignmentRepo) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.assignments, id)
	return nil
}

type memEnrollmentRepo struct {
	mu          sync.Mutex
	enrollments map[uint]models.Enrollment
	nextID      uint
}

func newMemEnrollmentRepo() *memEnrollmentRepo {
	return &memEnrollmentRepo{enrollments: make(map[uint]models.Enrollment), nextID: 1}
}

func (m *memEnrollmentRepo) GetByLearnerAndCourse(ctx context.Context, learnerID, courseID uint) (models.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, enrollment := range m.enrollments {
		if enrollment.LearnerID == learnerID && enrollment.CourseID == courseID {
			return enrollment, nil
		}
	}
	return models.Enrollment{}, gorm.ErrRecordNotFound
}

func (m *memEnrollmentRepo) ListByCourse(ctx context.Context, courseID uint) ([]models.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]models.Enrollment, 0)
	for _, enrollment := range m.enrollments {
		if enrollment.CourseID == courseID {
			results = append(results, enrollment)
		}
	}
	return results, nil
}

func (m *memEnrollmentRepo) ListByLearner(ctx context.Context, learnerID uint) ([]models.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := make([]models.Enrollment, 0)
	for _, enrollment := range m.enrollments {
		if enrollment.LearnerID == learnerID {
			results = append(results, enrollment)
		}
	}
	return results, nil
}

func (m *memEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.enrollments {
		if existing.LearnerID == enrollment.LearnerID && existing.CourseID == enrollment.CourseID {
			return gorm.ErrDuplicatedKey
		}
	}
	enrollment.ID = m.nextID
	m.enrollments[enrollment.ID] = *enrollment
	m.nextID++
	return nil
}

func (m *memEnrollmentRepo) UpdateProgress(ctx context.Context, id uint, progress int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	enrollment, ok := m.enrollments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	enrollment.Progress = progress
	m.enrollments[id] = enrollment
	return nil
}

func (m *memEnrollmentRepo) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.enrollments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.enrollments, id)
	return nil
}

type memSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[uint]models.Submission
	nextID      uint
	assignments *memAssignmentRepo
}

func newMemSubmissionRepo(assignments *memAssignmentRepo) *memSubmissionRepo {
	return &memSubmissionRepo{submissions: make(map[uint]models.Submission), nextID: 1, assignments: assignments}
}

func (m *memSubmissionRepo) preload(ctx context.Context, submission models.Submission) models.Submission {
	if m.assignments != nil {
		if assignment, err := m.assignments.GetByID(ctx, submission.AssignmentID); err == nil {
			submission.Assignment = assignment
		}
	}
	return submission
}

func (m *memSubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	m.mu.Lock()
	snapshot := make([]models.Submission, 0, len(m.submissions))
	for _, submission := range m.submissions {
		snapshot = append(snapshot, submission)
	}
	m.mu.Unlock()

	results := make([]models.Submission, 0, len(snapshot))
	for _, submission := range snapshot {
		if filter.AssignmentID != nil && submission.AssignmentID != *filter.AssignmentID {
			continue
		}
		if filter.LearnerID != nil && submission.LearnerID != *filter.LearnerID {
			continue
		}
		if filter.Status != nil && submission.Status != *filter.Status {
			continue
		}
		results = append(results, m.preload(ctx, submission))
	}
	return results, nil
}

func (m *memSubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	m.mu.Lock()
	submission, ok := m.submissions[id]
	m.mu.Unlock()
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return m.preload(ctx, submission), nil
}

func (m *memSubmissionRepo) GetLatest(ctx context.Context, assignmentID, learnerID uint) (models.Submission, error) {
	m.mu.Lock()
	var latest models.Submission
	found := false
	for _, submission := range m.submissions {
		if submission.AssignmentID != assignmentID || submission.LearnerID != learnerID {
			continue
		}
		if !found || submission.Version > latest.Version {
			latest = submission
			found = true
		}
	}
	m.mu.Unlock()
	if !found {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return m.preload(ctx, latest), nil
}

func (m *memSubmissionRepo) ListLatestByCourse(ctx context.Context, courseID, learnerID uint) ([]models.Submission, error) {
	m.mu.Lock()
	snapshot := make([]models.Submission, 0, len(m.submissions))
	for _, submission := range m.submissions {
		snapshot = append(snapshot, submission)
	}
	m.mu.Unlock()

	latest := make(map[uint]models.Submission)
	for _, submission := range snapshot {
		if submission.LearnerID != learnerID {
			continue
		}
		assignment, err := m.assignments.GetByID(ctx, submission.AssignmentID)
		if err != nil || assignment.CourseID != courseID {
			continue
		}
		if current, ok := latest[submission.AssignmentID]; !ok || submission.Version > current.Version {
			latest[submission.AssignmentID] = submission
		}
	}

	results := make([]models.Submission, 0, len(latest))
	for _, submission := range latest {
		results = append(results, submission)
	}
	return results, nil
}

func (m *memSubmissionRepo) CountByAssignment(ctx context.Context, assignmentID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, submission := range m.submissions {
		if submission.AssignmentID == assignmentID {
			count++
		}
	}
	return count, nil
}

func (m *memSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.submissions {
		if existing.AssignmentID == submission.AssignmentID &&
			existing.LearnerID == submission.LearnerID &&
			existing.Version == submission.Version {
			return gorm.ErrDuplicatedKey
		}
	}
	submission.ID = m.nextID
	submission.CreatedAt = time.Now()
	submission.UpdatedAt = time.Now()
	stored := *submission
	stored.Assignment = models.Assignment{}
	m.submissions[submission.ID] = stored
	m.nextID++
	return nil
}

func (m *memSubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.submissions[submission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	submission.UpdatedAt = time.Now()
	stored := *submission
	stored.Assignment = models.Assignment{}
	m.submissions[submission.ID] = stored
	return nil
}

type memActivityRepo struct {
	mu      sync.Mutex
	entries []models.ActivityLog
}

func (m *memActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memActivityRepo) ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.entries) {
		limit = len(m.entries)
	}
	result := make([]models.ActivityLog, limit)
	copy(result, m.entries[len(m.entries)-limit:])
	return result, nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(subject string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]string, len(p.subjects))
	copy(result, p.subjects)
	return result
}
