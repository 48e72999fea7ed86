package dto

import "time"

// GradeSubmissionRequest describes the payload for grading a submission.
type GradeSubmissionRequest struct {
	Score               float64 `json:"score" validate:"gte=0,lte=100"`
	Feedback            string  `json:"feedback" validate:"required,min=1,max=10000"`
	RequestResubmission bool    `json:"request_resubmission"`
}

// GradeBatchRequest grades several submissions independently.
type GradeBatchRequest struct {
	Items []GradeBatchItem `json:"items" validate:"required,min=1,dive"`
}

// GradeBatchItem is one submission's grade within a batch.
type GradeBatchItem struct {
	SubmissionID        uint    `json:"submission_id" validate:"required,gt=0"`
	Score               float64 `json:"score" validate:"gte=0,lte=100"`
	Feedback            string  `json:"feedback" validate:"required,min=1,max=10000"`
	RequestResubmission bool    `json:"request_resubmission"`
}

// GradeBatchOutcome reports one item's result; failures never roll back
// sibling items.
type GradeBatchOutcome struct {
	SubmissionID uint                `json:"submission_id"`
	Success      bool                `json:"success"`
	Error        string              `json:"error,omitempty"`
	Submission   *SubmissionResponse `json:"submission,omitempty"`
}

// AssignmentGrade is one assignment's contribution to a course grade.
type AssignmentGrade struct {
	AssignmentID uint      `json:"assignment_id"`
	Title        string    `json:"title"`
	Weight       float64   `json:"weight"`
	DueDate      time.Time `json:"due_date"`
	Status       string    `json:"submission_status,omitempty"`
	Version      int       `json:"version,omitempty"`
	Late         bool      `json:"late,omitempty"`
	Score        *float64  `json:"score"`
	Counted      bool      `json:"counted"`
}

// CourseGradeResponse is the learner's aggregate standing in a course.
type CourseGradeResponse struct {
	CourseID      uint              `json:"course_id"`
	LearnerID     uint              `json:"learner_id"`
	TotalScore    float64           `json:"total_score"`
	LetterGrade   string            `json:"letter_grade"`
	PerAssignment []AssignmentGrade `json:"per_assignment"`
}
