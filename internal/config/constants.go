package config

import "time"

const (
	// Database pool
	DBMaxConns = 20
	DBMinConns = 2

	DBMaxConnIdleTime = 5 * time.Minute

	// How often reset boundaries are checked
	ResetCheckInterval = 1 * time.Minute

	// Per-chat rate limit
	RateLimitPerMinute = 20
	RateLimitWindow    = 1 * time.Minute

	// Timeout for a single outbound notification
	NotifyTimeout = 10 * time.Second

	// Tasks per page in the delete list
	TasksPerPage = 5

	// Archives returned by /history and the HTTP API
	ArchiveHistoryLimit = 5
	MaxArchiveLimit     = 50

	// Read-only HTTP API
	HTTPReadTimeout     = 10 * time.Second
	HTTPWriteTimeout    = 10 * time.Second
	HTTPShutdownTimeout = 5 * time.Second
)

// ClaimAmountOptions are offered as buttons after a task is picked.
var ClaimAmountOptions = []int{1, 2, 3, 5, 10}
