package helpers

import "time"

// Timezone is the fixed IANA zone all day bucketing and "today/tomorrow"
// labeling is computed in, independent of the host timezone.
const Timezone = "Europe/Tallinn"

var tallinn = mustLoadLocation(Timezone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("failed to load timezone " + name + ": " + err.Error())
	}
	return loc
}

// CalendarDateInZone converts an instant into that zone's YYYY-MM-DD calendar day.
func CalendarDateInZone(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// TallinnDateString returns the Tallinn calendar day for an instant.
func TallinnDateString(t time.Time) string {
	return CalendarDateInZone(t, tallinn)
}

// TodayInTallinn returns today's date in Tallinn (YYYY-MM-DD).
func TodayInTallinn() string {
	return TallinnDateString(time.Now())
}

// TomorrowInTallinn returns tomorrow's date in Tallinn (YYYY-MM-DD).
func TomorrowInTallinn() string {
	return TallinnDateString(time.Now().AddDate(0, 0, 1))
}

// EventDateKey returns the grouping key for an event start time. Events are
// always bucketed by the Tallinn day, not the viewer's or server's day.
func EventDateKey(startTime time.Time) string {
	return TallinnDateString(startTime)
}

// DateBoundToUTC converts a YYYY-MM-DD calendar date plus an HH:MM:SS wall
// time in Tallinn into the corresponding UTC instant. Used when translating
// inclusive date filters into absolute start_time bounds.
func DateBoundToUTC(dateStr, timeStr string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02T15:04:05", dateStr+"T"+timeStr, tallinn)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
