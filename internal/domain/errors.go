package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskExists         = errors.New("task already exists")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrSubmissionExists   = errors.New("submission already exists")
	ErrCapExceeded        = errors.New("completion cap exceeded")
	ErrAlreadyResolved    = errors.New("submission already reviewed")
	ErrPermission         = errors.New("permission denied")
	ErrMemberNotFound     = errors.New("member not found")
)

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// CapExceededError carries how many more completions are still allowed.
type CapExceededError struct {
	TaskKey   string
	Cap       int
	Remaining int
}

func (e *CapExceededError) Error() string {
	return fmt.Sprintf("task %s: cap %d reached, %d remaining", e.TaskKey, e.Cap, e.Remaining)
}

func (e *CapExceededError) Is(target error) bool {
	return target == ErrCapExceeded
}
