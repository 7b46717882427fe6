package internal

import (
	"errors"
	"fmt"
)

// ValidationError reports inputs that cannot be combined at all: a missing
// sonar model, or models that differ across the list. It is raised before
// any group is processed, so no partial output exists.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// AttributeConflictError reports a violation of the "identical" or
// "no_conflicts" attrs policy while merging one group's global attributes.
type AttributeConflictError struct {
	Policy  string
	Key     string
	Message string
}

func (e *AttributeConflictError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("attribute conflict under %s policy for key %q: %s", e.Policy, e.Key, e.Message)
	}
	return fmt.Sprintf("attribute conflict under %s policy: %s", e.Policy, e.Message)
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

// IsAttributeConflictError checks if an error is an AttributeConflictError.
func IsAttributeConflictError(err error) bool {
	var conflictError *AttributeConflictError
	return errors.As(err, &conflictError)
}
