package dto

import (
	"time"

	"github.com/skolara/skolara-api/internal/models"
)

// SubmissionCreateRequest describes the payload for handing in work.
type SubmissionCreateRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required,gt=0"`
	Content      string `json:"content" validate:"required,min=1,max=100000"`
	Link         string `json:"link" validate:"omitempty,url,max=512"`
}

// SubmissionUpdateRequest edits the current submission in place without
// creating a new version.
type SubmissionUpdateRequest struct {
	Content *string `json:"content" validate:"omitempty,min=1,max=100000"`
	Link    *string `json:"link" validate:"omitempty,url,max=512"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint            `json:"id"`
	AssignmentID uint            `json:"assignment_id"`
	LearnerID    uint            `json:"learner_id"`
	Version      int             `json:"version"`
	Content      string          `json:"content"`
	Link         string          `json:"link,omitempty"`
	SubmittedAt  time.Time       `json:"submitted_at"`
	Late         bool            `json:"late"`
	Status       string          `json:"status"`
	Score        *float64        `json:"score"`
	Feedback     string          `json:"feedback"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Assignment   *AssignmentLite `json:"assignment,omitempty"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID      uint      `json:"id"`
	Title   string    `json:"title"`
	DueDate time.Time `json:"due_date"`
	Weight  float64   `json:"weight"`
	Status  string    `json:"status"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		LearnerID:    model.LearnerID,
		Version:      model.Version,
		Content:      model.Content,
		Link:         model.Link,
		SubmittedAt:  model.SubmittedAt,
		Late:         model.Late,
		Status:       model.Status,
		Score:        model.Score,
		Feedback:     model.Feedback,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if model.Assignment.ID != 0 {
		response.Assignment = &AssignmentLite{
			ID:      model.Assignment.ID,
			Title:   model.Assignment.Title,
			DueDate: model.Assignment.DueDate,
			Weight:  model.Assignment.Weight,
			Status:  model.Assignment.Status,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
