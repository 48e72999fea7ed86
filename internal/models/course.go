package models

import "time"

// Course groups assignments under an owning instructor.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"size:32;not null;default:draft" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Assignments []Assignment
}

const (
	// CourseStatusDraft indicates the course is not yet visible to learners.
	CourseStatusDraft = "draft"
	// CourseStatusPublished indicates the course accepts enrollments.
	CourseStatusPublished = "published"
	// CourseStatusArchived indicates the course is retired.
	CourseStatusArchived = "archived"
)

// IsOwnedBy reports whether the given instructor owns the course.
func (c Course) IsOwnedBy(instructorID uint) bool {
	return c.OwnerID == instructorID
}

// IsPublished reports whether the course is open for enrollment and assignment publication.
func (c Course) IsPublished() bool {
	return c.Status == CourseStatusPublished
}
