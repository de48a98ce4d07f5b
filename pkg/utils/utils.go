package utils

import (
	"os"
	"time"
)

// FormatDate renders a timestamp in the bank's home timezone.
func FormatDate(t time.Time) string {
	if t.Unix() <= 0 {
		return ""
	}

	return t.In(GetTz()).Format("2006-01-02 15:04:05")
}

// FormatDay renders just the calendar day.
func FormatDay(t time.Time) string {
	if t.Unix() <= 0 {
		return ""
	}

	return t.In(GetTz()).Format("2006-01-02")
}

func FormatWeekday(t time.Time) string {
	return t.In(GetTz()).Weekday().String()
}

// GetTz returns the Africa/Johannesburg timezone - Investec is a South
// African bank and all its dates live there.
func GetTz() *time.Location {
	tz, err := time.LoadLocation("Africa/Johannesburg")
	if err != nil {
		os.Stderr.WriteString("Failed to load timezone: " + err.Error())
		os.Exit(1)
	}
	return tz
}

func GetOkJSON() []byte {
	return []byte(`{"is_ok":true}`)
}
