package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/skolara/skolara-api/internal/apperr"
	"github.com/skolara/skolara-api/internal/models"
)

// Actor is the authenticated caller, resolved by the identity layer before any
// core call. The core never authenticates; it only checks role and ownership.
type Actor struct {
	ID   uint
	Role string
}

// IsLearner reports whether the actor carries the learner role.
func (a Actor) IsLearner() bool {
	return a.Role == models.RoleLearner
}

// IsInstructor reports whether the actor carries the instructor role.
func (a Actor) IsInstructor() bool {
	return a.Role == models.RoleInstructor
}

// EventPublisher emits domain events for external consumers. Delivery is
// best-effort; the core never fails an operation over a lost event.
type EventPublisher interface {
	Publish(subject string, payload interface{}) error
}

// storeErr classifies a storage failure. Record-not-found and duplicated-key
// are handled at their call sites; anything else becomes Timeout or
// Unavailable so driver detail never reaches callers.
func storeErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperr.Timeout("store deadline exceeded", err)
	}
	if errors.Is(err, context.Canceled) {
		return apperr.Unavailable("request canceled", err)
	}
	return apperr.Unavailable("store unavailable", err)
}

// validationErr converts validator output into the Validation kind.
func validationErr(err error) error {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		return apperr.Validation(fieldErrors.Error())
	}
	return apperr.Validation(err.Error())
}

// isNotFound reports whether the storage layer signalled a missing row.
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate reports whether the storage layer rejected a unique-constraint
// violation.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
