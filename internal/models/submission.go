package models

import "time"

// Submission is one learner's versioned attempt at an assignment. Versions for
// a (assignment, learner) pair form a gapless ascending sequence starting at 1;
// the unique index backs the version-collision retry during concurrent submits.
// Rows are append-only for resubmissions, while grading mutates the current row.
type Submission struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;uniqueIndex:idx_submission_version" json:"assignment_id"`
	LearnerID    uint       `gorm:"not null;uniqueIndex:idx_submission_version" json:"learner_id"`
	Version      int        `gorm:"not null;uniqueIndex:idx_submission_version" json:"version"`
	Content      string     `gorm:"type:text;not null" json:"content"`
	Link         string     `gorm:"size:512" json:"link"`
	SubmittedAt  time.Time  `gorm:"not null" json:"submitted_at"`
	Late         bool       `gorm:"not null;default:false" json:"late"`
	Status       string     `gorm:"size:32;not null" json:"status"`
	Score        *float64   `json:"score"`
	Feedback     string     `gorm:"type:text" json:"feedback"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Assignment   Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
}

const (
	// SubmissionStatusSubmitted indicates the work has been handed in but not graded.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded indicates the submission carries a final score.
	SubmissionStatusGraded = "graded"
	// SubmissionStatusResubmissionRequired indicates the grader asked for another attempt.
	SubmissionStatusResubmissionRequired = "resubmission_required"
)

// IsGraded reports whether the submission has a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
