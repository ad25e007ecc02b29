package domain

import "time"

// Named date-range filters accepted by the task listing and counting
// endpoints. Matching is exact and case-sensitive; anything else falls back
// to the week window.
const (
	FilterWeek  = "week"
	FilterMonth = "month"
	FilterYear  = "year"
)

// ResolveDateRange maps a filter key to a trailing due-date window ending at
// now. The window covers the last 7, 30 or 365 calendar days inclusive: start
// is midnight N-1 days before now, end is the last instant of today. The
// caller injects now so the resolver stays deterministic.
func ResolveDateRange(filter string, now time.Time) (start, end time.Time) {
	days := 7
	switch filter {
	case FilterWeek:
		days = 7
	case FilterMonth:
		days = 30
	case FilterYear:
		days = 365
	}
	first := now.AddDate(0, 0, -(days - 1))
	start = time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, now.Location())
	end = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), now.Location())
	return start, end
}
