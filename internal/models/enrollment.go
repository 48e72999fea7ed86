package models

import "time"

// Enrollment links a learner to a course and gates submission and grade visibility.
// Submissions are never deleted through an enrollment; unenrolling keeps the
// learner's historical work intact.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LearnerID  uint      `gorm:"not null;uniqueIndex:idx_enrollment_learner_course" json:"learner_id"`
	CourseID   uint      `gorm:"not null;uniqueIndex:idx_enrollment_learner_course" json:"course_id"`
	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`
	Progress   int       `gorm:"not null;default:0" json:"progress"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Course     Course    `gorm:"constraint:OnUpdate:CASCADE" json:"course"`
}
