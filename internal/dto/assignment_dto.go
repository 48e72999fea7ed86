package dto

import (
	"time"

	"github.com/skolara/skolara-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an assignment.
type AssignmentCreateRequest struct {
	CourseID          uint    `json:"course_id" validate:"required,gt=0"`
	Title             string  `json:"title" validate:"required,min=3,max=255"`
	Description       string  `json:"description" validate:"omitempty,max=10000"`
	DueDate           string  `json:"due_date" validate:"required"`
	Weight            float64 `json:"weight" validate:"gte=0,lte=100"`
	AllowLate         bool    `json:"allow_late"`
	AllowResubmission bool    `json:"allow_resubmission"`
}

// AssignmentUpdateRequest is a partial update. Title and due date are only
// honored while the assignment is still a draft.
type AssignmentUpdateRequest struct {
	Title             *string  `json:"title" validate:"omitempty,min=3,max=255"`
	Description       *string  `json:"description" validate:"omitempty,max=10000"`
	DueDate           *string  `json:"due_date"`
	Weight            *float64 `json:"weight" validate:"omitempty,gte=0,lte=100"`
	AllowLate         *bool    `json:"allow_late"`
	AllowResubmission *bool    `json:"allow_resubmission"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
type AssignmentResponse struct {
	ID                uint      `json:"id"`
	CourseID          uint      `json:"course_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	DueDate           time.Time `json:"due_date"`
	Weight            float64   `json:"weight"`
	AllowLate         bool      `json:"allow_late"`
	AllowResubmission bool      `json:"allow_resubmission"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AssignmentPublishResponse carries the published assignment plus any
// non-fatal integrity warnings, such as publishing past the due date.
type AssignmentPublishResponse struct {
	Assignment AssignmentResponse `json:"assignment"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:                model.ID,
		CourseID:          model.CourseID,
		Title:             model.Title,
		Description:       model.Description,
		DueDate:           model.DueDate,
		Weight:            model.Weight,
		AllowLate:         model.AllowLate,
		AllowResubmission: model.AllowResubmission,
		Status:            model.Status,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts assignment models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
