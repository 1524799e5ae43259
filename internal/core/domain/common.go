package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// Now is the current UTC time at the microsecond precision TIMESTAMPTZ stores,
// so a stamp returned to a client compares equal to the one read back later.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// SameInstant compares two timestamps at stored precision.
func SameInstant(a, b time.Time) bool {
	return a.Truncate(time.Microsecond).Equal(b.Truncate(time.Microsecond))
}

// CalendarDate is the calendar day of t in t's own location, expressed as midnight UTC.
// 2024-04-01T08:00:00+09:00 is April 1st, not March 31st.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
