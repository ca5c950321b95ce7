package models

import (
	"fmt"
	"strings"
)

const MinPasswordLength = 6

// ValidationError blocks a submission before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	return nil
}

func ValidateStatus(status Status) error {
	if !status.Valid() {
		return &ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("invalid status %q, expected pending or completed", status),
		}
	}
	return nil
}

func ValidatePriority(priority Priority) error {
	if !priority.Valid() {
		return &ValidationError{
			Field:   "priority",
			Message: fmt.Sprintf("invalid priority %q, expected low, medium or high", priority),
		}
	}
	return nil
}

// ValidateSignup checks the sign-up form. The mismatch check runs first.
func ValidateSignup(password, confirmPassword string) error {
	if password != confirmPassword {
		return &ValidationError{Field: "confirm_password", Message: "passwords do not match"}
	}
	if len(password) < MinPasswordLength {
		return &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters long", MinPasswordLength),
		}
	}
	return nil
}
