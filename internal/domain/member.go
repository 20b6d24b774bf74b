package domain

import "time"

// Member is a directory entry used to show names on boards.
type Member struct {
	ID          string
	DisplayName string
	UpdatedAt   time.Time
}

// Actor is whoever triggered an inbound event.
type Actor struct {
	ID          string
	DisplayName string
	Privileged  bool
}
