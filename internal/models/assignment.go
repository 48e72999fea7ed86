package models

import "time"

// Assignment represents a gradable unit of work under a course.
type Assignment struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	CourseID          uint      `gorm:"not null;index" json:"course_id"`
	Title             string    `gorm:"size:255;not null" json:"title"`
	Description       string    `gorm:"type:text" json:"description"`
	DueDate           time.Time `gorm:"not null" json:"due_date"`
	Weight            float64   `gorm:"not null;default:0" json:"weight"`
	AllowLate         bool      `gorm:"not null;default:false" json:"allow_late"`
	AllowResubmission bool      `gorm:"not null;default:false" json:"allow_resubmission"`
	Status            string    `gorm:"size:32;not null;default:draft" json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	Course            Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
	Submissions       []Submission
}

const (
	// AssignmentStatusDraft indicates the assignment is being prepared and accepts no submissions.
	AssignmentStatusDraft = "draft"
	// AssignmentStatusPublished indicates the assignment accepts submissions.
	AssignmentStatusPublished = "published"
	// AssignmentStatusClosed indicates the assignment no longer accepts submissions. Terminal.
	AssignmentStatusClosed = "closed"
)

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// IsDraft reports whether the assignment is still unpublished.
func (a Assignment) IsDraft() bool {
	return a.Status == AssignmentStatusDraft
}

// AcceptsSubmissions reports whether the assignment is open for learner work.
func (a Assignment) AcceptsSubmissions() bool {
	return a.Status == AssignmentStatusPublished
}
