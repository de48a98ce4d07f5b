package investec

import "time"

const dateLayout = "2006-01-02"

// Date is a calendar day parameter for API calls. It can be built either
// from an already formatted string or from a time.Time and always renders
// as YYYY-MM-DD on the wire - never a full timestamp.
type Date struct {
	s string
	t time.Time
}

// DateString wraps a pre-formatted date string. The string is sent as-is.
func DateString(s string) Date {
	return Date{s: s}
}

// DateOf wraps a point in time. Only the calendar day is transmitted.
func DateOf(t time.Time) Date {
	return Date{t: t}
}

func (d Date) IsZero() bool {
	return d.s == "" && d.t.IsZero()
}

func (d Date) String() string {
	if d.s != "" {
		return d.s
	}

	if d.t.IsZero() {
		return ""
	}

	return d.t.Format(dateLayout)
}
