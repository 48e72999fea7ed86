package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skolara/skolara-api/internal/models"
)

func TestEnrollmentRepositoryUniquePerLearnerAndCourse(t *testing.T) {
	db := setupTestDB(t, &models.Course{}, &models.Enrollment{})
	repo := NewEnrollmentRepository(db)

	course := models.Course{OwnerID: 1, Title: "Calculus", Status: models.CourseStatusPublished}
	require.NoError(t, db.Create(&course).Error)

	enrollment := models.Enrollment{LearnerID: 5, CourseID: course.ID, EnrolledAt: time.Now()}
	require.NoError(t, repo.Create(context.Background(), &enrollment))

	duplicate := models.Enrollment{LearnerID: 5, CourseID: course.ID, EnrolledAt: time.Now()}
	err := repo.Create(context.Background(), &duplicate)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestEnrollmentRepositoryDeleteKeepsNothingBehind(t *testing.T) {
	db := setupTestDB(t, &models.Course{}, &models.Enrollment{})
	repo := NewEnrollmentRepository(db)

	course := models.Course{OwnerID: 1, Title: "Physics", Status: models.CourseStatusPublished}
	require.NoError(t, db.Create(&course).Error)

	enrollment := models.Enrollment{LearnerID: 5, CourseID: course.ID, EnrolledAt: time.Now()}
	require.NoError(t, repo.Create(context.Background(), &enrollment))

	require.NoError(t, repo.Delete(context.Background(), enrollment.ID))

	_, err := repo.GetByLearnerAndCourse(context.Background(), 5, course.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.ErrorIs(t, repo.Delete(context.Background(), enrollment.ID), gorm.ErrRecordNotFound)
}

func TestAssignmentRepositoryUpdateStatusCompareAndSet(t *testing.T) {
	db := setupTestDB(t, &models.Course{}, &models.Assignment{})
	repo := NewAssignmentRepository(db)

	course := models.Course{OwnerID: 1, Title: "Chemistry", Status: models.CourseStatusPublished}
	require.NoError(t, db.Create(&course).Error)

	assignment := models.Assignment{
		CourseID: course.ID,
		Title:    "Lab 1",
		DueDate:  time.Now().Add(24 * time.Hour),
		Status:   models.AssignmentStatusDraft,
	}
	require.NoError(t, repo.Create(context.Background(), &assignment))

	moved, err := repo.UpdateStatus(context.Background(), assignment.ID, models.AssignmentStatusDraft, models.AssignmentStatusPublished)
	require.NoError(t, err)
	require.True(t, moved)

	// Second transition from draft loses the race.
	moved, err = repo.UpdateStatus(context.Background(), assignment.ID, models.AssignmentStatusDraft, models.AssignmentStatusPublished)
	require.NoError(t, err)
	require.False(t, moved)
}
