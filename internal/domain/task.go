package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTaskNameLen = 100
	// MaxTaskKeyLen bounds the key so it fits into a chat button payload.
	MaxTaskKeyLen = 48
	// MaxTaskPoints and MaxClaimAmount keep amount*points far inside int64.
	MaxTaskPoints  = 1_000_000
	MaxClaimAmount = 9999
)

// Task is a claimable order definition.
type Task struct {
	Key            string
	Name           string
	Points         int64
	MaxCompletions int // 0 = unlimited
	CreatedBy      string
	CreatedAt      time.Time
}

func (t *Task) Unlimited() bool {
	return t.MaxCompletions == 0
}

// Snapshot freezes the accounting-relevant part of the task.
func (t *Task) Snapshot() TaskSnapshot {
	return TaskSnapshot{
		Name:           t.Name,
		Points:         t.Points,
		MaxCompletions: t.MaxCompletions,
	}
}

// TaskSnapshot is the task definition as it was when a claim was made.
type TaskSnapshot struct {
	Name           string `json:"name"`
	Points         int64  `json:"points"`
	MaxCompletions int    `json:"max_completions"`
}

// TaskKey derives the catalog key from a display name.
func TaskKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// NewTask validates the input and builds a task with its derived key.
func NewTask(name string, points int64, maxCompletions int) (Task, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return Task{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	case utf8.RuneCountInString(name) > MaxTaskNameLen:
		return Task{}, &ValidationError{Field: "name", Reason: "is too long"}
	case points <= 0:
		return Task{}, &ValidationError{Field: "points", Reason: "must be a positive integer"}
	case points > MaxTaskPoints:
		return Task{}, &ValidationError{Field: "points", Reason: fmt.Sprintf("must not exceed %d", MaxTaskPoints)}
	case maxCompletions < 0:
		return Task{}, &ValidationError{Field: "max_completions", Reason: "cannot be negative"}
	}

	key := TaskKey(name)
	if len(key) > MaxTaskKeyLen {
		return Task{}, &ValidationError{Field: "name", Reason: "is too long"}
	}

	return Task{
		Key:            key,
		Name:           name,
		Points:         points,
		MaxCompletions: maxCompletions,
	}, nil
}

// ValidateClaimAmount accepts 1..MaxClaimAmount completions per claim.
func ValidateClaimAmount(amount int) error {
	switch {
	case amount <= 0:
		return &ValidationError{Field: "amount", Reason: "must be a positive integer"}
	case amount > MaxClaimAmount:
		return &ValidationError{Field: "amount", Reason: fmt.Sprintf("must not exceed %d", MaxClaimAmount)}
	}
	return nil
}
