package repository

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// timestamptzToTime maps NULL to the zero time.
func timestamptzToTime(ts pgtype.Timestamptz) time.Time {
	if ts.Valid {
		return ts.Time
	}
	return time.Time{}
}

// timeToTimestamptz maps the zero time to NULL.
func timeToTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}
