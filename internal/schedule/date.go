package schedule

import "time"

// DateLayout is the ISO calendar date format entries are persisted in.
const DateLayout = "2006-01-02"

// Date drops the time of day from t, keeping its calendar date in t's own
// location, and returns it as midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays moves a calendar date by n days.
func AddDays(t time.Time, n int) time.Time {
	return Date(t).AddDate(0, 0, n)
}

func FormatDate(t time.Time) string {
	return Date(t).Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
