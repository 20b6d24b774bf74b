package domain

import "fmt"

type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Periods lists every ledger period in a fixed order.
func Periods() []Period {
	return []Period{PeriodWeekly, PeriodMonthly}
}

func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodWeekly, PeriodMonthly:
		return Period(s), nil
	}
	return "", &ValidationError{Field: "period", Reason: fmt.Sprintf("unknown period %q", s)}
}

// MemberPeriodRecord holds a member's standing in one period. TotalPoints is
// an aggregate of approved points and is never derived from Completions.
type MemberPeriodRecord struct {
	TotalPoints int64          `json:"total_points"`
	Completions map[string]int `json:"completions"`
}

func (r MemberPeriodRecord) CompletionsFor(taskKey string) int {
	return r.Completions[taskKey]
}

func (r MemberPeriodRecord) Clone() MemberPeriodRecord {
	c := MemberPeriodRecord{
		TotalPoints: r.TotalPoints,
		Completions: make(map[string]int, len(r.Completions)),
	}
	for k, v := range r.Completions {
		c.Completions[k] = v
	}
	return c
}

// PeriodLedger maps member id to record. A missing member has zero totals.
type PeriodLedger map[string]MemberPeriodRecord

func (l PeriodLedger) Record(memberID string) MemberPeriodRecord {
	if rec, ok := l[memberID]; ok {
		return rec
	}
	return MemberPeriodRecord{Completions: map[string]int{}}
}

func (l PeriodLedger) Clone() PeriodLedger {
	c := make(PeriodLedger, len(l))
	for id, rec := range l {
		c[id] = rec.Clone()
	}
	return c
}

// Totals is a member's point total in both periods.
type Totals struct {
	Weekly  int64
	Monthly int64
}
