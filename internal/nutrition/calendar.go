package nutrition

import "time"

// DayLayout is the canonical day key format
const DayLayout = "2006-01-02"

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's day
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// StartOfWeek returns the Monday that starts t's week. Sunday belongs to the
// week that began six days earlier.
func StartOfWeek(t time.Time) time.Time {
	offset := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		offset = 6
	}
	return StartOfDay(t).AddDate(0, 0, -offset)
}

// WeekNumber returns the ISO 8601 year and week of t
func WeekNumber(t time.Time) (year, week int) {
	return t.ISOWeek()
}

// DaysInMonth lays out a month as calendar cells. Leading nil cells pad the
// grid so the 1st lands on its weekday column, with Sunday as column 0.
func DaysInMonth(year int, month time.Month, loc *time.Location) []*time.Time {
	if loc == nil {
		loc = time.UTC
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	blanks := int(first.Weekday())
	count := first.AddDate(0, 1, -1).Day()

	cells := make([]*time.Time, blanks, blanks+count)
	for i := 0; i < count; i++ {
		day := first.AddDate(0, 0, i)
		cells = append(cells, &day)
	}
	return cells
}

// PreviousWeek moves t back seven days
func PreviousWeek(t time.Time) time.Time {
	return t.AddDate(0, 0, -7)
}

// NextWeek moves t forward seven days
func NextWeek(t time.Time) time.Time {
	return t.AddDate(0, 0, 7)
}

// PreviousMonth returns the month before, rolling into the prior year
func PreviousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// NextMonth returns the month after, rolling into the next year
func NextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// IsSameDay compares calendar dates and ignores time of day
func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FormatDay renders t as a day key
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay parses a day key as midnight in loc
func ParseDay(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DayLayout, key, loc)
}
