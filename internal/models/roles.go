package models

// Roles supplied by the identity layer. The core trusts these as-is.
const (
	// RoleLearner identifies users who enroll and submit work.
	RoleLearner = "learner"
	// RoleInstructor identifies users who own courses and grade work.
	RoleInstructor = "instructor"
)
