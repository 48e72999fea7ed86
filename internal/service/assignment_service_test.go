package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/skolara/skolara-api/internal/apperr"
	"github.com/skolara/skolara-api/internal/dto"
	"github.com/skolara/skolara-api/internal/models"
)

type assignmentFixture struct {
	svc         AssignmentService
	courses     *memCourseRepo
	assignments *memAssignmentRepo
	submissions *memSubmissionRepo
	events      *recordingPublisher
	course      models.Course
	owner       Actor
}

func newAssignmentFixture(t *testing.T, courseStatus string) *assignmentFixture {
	t.Helper()

	courses := newMemCourseRepo()
	assignments := newMemAssignmentRepo(courses)
	submissions := newMemSubmissionRepo(assignments)
	events := &recordingPublisher{}

	owner := Actor{ID: 1, Role: models.RoleInstructor}
	course := models.Course{OwnerID: owner.ID, Title: "Compilers", Status: courseStatus}
	require.NoError(t, courses.Create(context.Background(), &course))

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAssignmentService(assignments, courses, submissions, validate, events, testLogger(), 0)

	return &assignmentFixture{
		svc:         svc,
		courses:     courses,
		assignments: assignments,
		submissions: submissions,
		events:      events,
		course:      course,
		owner:       owner,
	}
}

func (fx *assignmentFixture) createDraft(t *testing.T, due time.Time) dto.AssignmentResponse {
	t.Helper()
	created, err := fx.svc.Create(context.Background(), fx.owner, dto.AssignmentCreateRequest{
		CourseID: fx.course.ID,
		Title:    "Lexer",
		DueDate:  due.Format(time.RFC3339),
		Weight:   20,
	})
	require.NoError(t, err)
	return created
}

func TestAssignmentServiceCreateRejectsPastDueDate(t *testing.T) {
	fx := newAssignmentFixture(t, models.CourseStatusPublished)

	_, err := fx.svc.Create(context.Background(), fx.owner, dto.AssignmentCreateRequest{
		CourseID: fx.course.ID,
		Title:    "Late from birth",
		DueDate:  time.Now().Add(-time.Hour).Format(time.RFC3339),
	})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestAssignmentServiceCreateRequiresOwnership(t *testing.T) {
	fx := newAssignmentFixture(t, models.CourseStatusPublished)
	other := Actor{ID: 2, Role: models.RoleInstructor}

	_, err := fx.svc.Create(context.Background(), other, dto.AssignmentCreateRequest{
		CourseID: fx.course.ID,
		Title:    "Not mine",
		DueDate:  time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestAssignmentServicePublishRequiresPublishedCourse(t *testing.T) {
	fx := newAssignmentFixture(t, models.CourseStatusDraft)
	created := fx.createDraft(t, time.Now().Add(time.Hour))

	_, err := fx.svc.Publish(context.Background(), fx.owner, created.ID)
	require.True(t, apperr.IsKind(err, apperr.KindUnprocessable))

	// Once the course is published, the same assignment goes out fine.
	moved, err := fx.courses.UpdateStatus(context.Background(), fx.course.ID, models.CourseStatusDraft, models.CourseStatusPublished)
	require.NoError(t, err)
	require.True(t, moved)

	result, err := fx.svc.Publish(context.Background(), fx.owner, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusPublished, result.Assignment.Status)
	require.Empty(t, result.Warnings)
	require.Contains(t, fx.events.published(), "assignment.published")
}

func TestAssignmentServicePublishPastDueWarnsButSucceeds(t *testing.T) {
	fx := newAssignmentFixture(t, models.CourseStatusPublished)
	created := fx.createDraft(t, time.Now().Add(time.Minute))

	// Shift the due date into the past behind the service's back, then
	// publish: no error, only a warning.
	stored, err := fx.assignments.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	stored.DueDate = time.Now().Add(-time.Hour)
	require.NoError(t, fx.assignments.Update(context.Background(), &stored))

	result, err := fx.svc.Publish(context.Background(), fx.owner, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusPublished, result.Assignment.Status)
	require.Equal(t, []string{WarningPastDuePublish}, result.Warnings)
}

func TestAssignmentServiceTitleAndDueDateFreezeAfterPublish(t *testing.T) {
	fx := newAssignmentFixture(t, models.CourseStatusPublished)
	created := fx.createDraft(t, time.Now().Add(time.Hour))

	_, err := fx.svc.Publish(context.Background(), fx.owner, created.ID)
	require.NoError(t, err)

	title := "Renamed"
	_, err = fx.svc.Update(context.Background(), fx.owner, created.ID, dto.AssignmentUpdateRequest{Title: &title})
	require.True(t, apperr.IsKind(err, apperr.KindUnprocessable))

	due := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	_, err = fx.svc.Update(context.Background(), fx.owner, created.ID, dto.AssignmentUpdateRequest{DueDate: &due})
	require.True(t, apperr.IsKind(err, apperr.KindUnprocessable))

	// Policy fields stay mutable after publication.
	weight := 45.0
	allowLate := true
	updated, err := fx.svc.Update(context.Background(), fx.owner, created.ID, dto.AssignmentUpdateRequest{Weight: &weight, AllowLate: &allowLate})
	require.NoError(t, err)
	require.Equal(t, 45.0, updated.Weight)
	require.True(t, updated.AllowLate)
}

func TestAssignmentServiceClosedIsTerminal(t *testing.T) {
	fx := newAssignmentFixture(t, models.CourseStatusPublished)
	created := fx.createDraft(t, time.Now().Add(time.Hour))

	// Draft cannot close directly.
	_, err := fx.svc.Close(context.Background(), fx.owner, created.ID)
	require.True(t, apperr.IsKind(err, apperr.KindUnprocessable))

	_, err = fx.svc.Publish(context.Background(), fx.owner, created.ID)
	require.NoError(t, err)

	closed, err := fx.svc.Close(context.Background(), fx.owner, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusClosed, closed.Status)

	// No way back to published or draft.
	_, err = fx.svc.Publish(context.Background(), fx.owner, created.ID)
	require.True(t, apperr.IsKind(err, apperr.KindUnprocessable))
	_, err = fx.svc.Close(context.Background(), fx.owner, created.ID)
	require.True(t, apperr.IsKind(err, apperr.KindUnprocessable))
}

func TestAssignmentServiceDeleteRules(t *testing.T) {
	fx := newAssignmentFixture(t, models.CourseStatusPublished)
	created := fx.createDraft(t, time.Now().Add(time.Hour))

	// A draft with a submission cannot be deleted.
	submission := models.Submission{
		AssignmentID: created.ID,
		LearnerID:    7,
		Version:      1,
		Content:      "early work",
		SubmittedAt:  time.Now(),
		Status:       models.SubmissionStatusSubmitted,
	}
	require.NoError(t, fx.submissions.Create(context.Background(), &submission))

	err := fx.svc.Delete(context.Background(), fx.owner, created.ID)
	require.True(t, apperr.IsKind(err, apperr.KindUnprocessable))

	// With zero submissions the draft goes away and becomes unresolvable.
	clean := fx.createDraft(t, time.Now().Add(time.Hour))
	require.NoError(t, fx.svc.Delete(context.Background(), fx.owner, clean.ID))

	_, err = fx.svc.Get(context.Background(), clean.ID)
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAssignmentServiceDeletePublishedFails(t *testing.T) {
	fx := newAssignmentFixture(t, models.CourseStatusPublished)
	created := fx.createDraft(t, time.Now().Add(time.Hour))

	_, err := fx.svc.Publish(context.Background(), fx.owner, created.ID)
	require.NoError(t, err)

	err = fx.svc.Delete(context.Background(), fx.owner, created.ID)
	require.True(t, apperr.IsKind(err, apperr.KindUnprocessable))
}
