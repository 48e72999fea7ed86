package dto

import (
	"time"

	"github.com/skolara/skolara-api/internal/models"
)

// EnrollmentResponse is returned to API clients when viewing enrollments.
type EnrollmentResponse struct {
	ID         uint        `json:"id"`
	LearnerID  uint        `json:"learner_id"`
	CourseID   uint        `json:"course_id"`
	EnrolledAt time.Time   `json:"enrolled_at"`
	Progress   int         `json:"progress"`
	Course     *CourseLite `json:"course,omitempty"`
}

// CourseLite summarizes a course in nested responses.
type CourseLite struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// NewEnrollmentResponse converts an Enrollment model into a DTO.
func NewEnrollmentResponse(model models.Enrollment) EnrollmentResponse {
	response := EnrollmentResponse{
		ID:         model.ID,
		LearnerID:  model.LearnerID,
		CourseID:   model.CourseID,
		EnrolledAt: model.EnrolledAt,
		Progress:   model.Progress,
	}

	if model.Course.ID != 0 {
		response.Course = &CourseLite{
			ID:     model.Course.ID,
			Title:  model.Course.Title,
			Status: model.Course.Status,
		}
	}

	return response
}

// NewEnrollmentResponseSlice converts enrollment models into DTOs.
func NewEnrollmentResponseSlice(enrollments []models.Enrollment) []EnrollmentResponse {
	responses := make([]EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, NewEnrollmentResponse(enrollment))
	}

	return responses
}
