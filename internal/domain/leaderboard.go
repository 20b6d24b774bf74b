package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LeaderboardEntry struct {
	Rank        int             `json:"rank"`
	MemberID    string          `json:"member_id"`
	DisplayName string          `json:"display_name"`
	Points      int64           `json:"points"`
	Share       decimal.Decimal `json:"share"` // percent of the period's points
}

// Leaderboard is a rendered-ready standing of one period.
type Leaderboard struct {
	Period   Period             `json:"period"`
	Title    string             `json:"title"`
	Footer   string             `json:"footer"`
	Archived bool               `json:"archived"`
	Entries  []LeaderboardEntry `json:"entries"`
}

// LeaderboardArchive is the immutable record written on every reset.
type LeaderboardArchive struct {
	ID         string       `json:"id"`
	Period     Period       `json:"period"`
	Title      string       `json:"title"`
	Snapshot   PeriodLedger `json:"snapshot"`
	ArchivedAt time.Time    `json:"archived_at"`
}
