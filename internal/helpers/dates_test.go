package helpers

import (
	"testing"
	"time"
)

func TestCalendarDateInZoneCrossesMidnight(t *testing.T) {
	// 21:30 UTC on June 1st is already 00:30 on June 2nd in Tallinn (EEST, UTC+3).
	instant := time.Date(2025, 6, 1, 21, 30, 0, 0, time.UTC)
	if got := TallinnDateString(instant); got != "2025-06-02" {
		t.Errorf("expected 2025-06-02, got %s", got)
	}

	// 20:30 UTC is still 23:30 the same day in Tallinn.
	instant = time.Date(2025, 6, 1, 20, 30, 0, 0, time.UTC)
	if got := TallinnDateString(instant); got != "2025-06-01" {
		t.Errorf("expected 2025-06-01, got %s", got)
	}
}

func TestCalendarDateInZoneIgnoresHostTimezone(t *testing.T) {
	instant := time.Date(2025, 1, 14, 22, 30, 0, 0, time.UTC)

	// Re-expressing the same instant in a different wall clock must not change
	// the Tallinn day. Winter time is EET, UTC+2, so this is Jan 15th.
	for _, loc := range []*time.Location{time.UTC, time.FixedZone("UTC-8", -8*3600), time.FixedZone("UTC+9", 9*3600)} {
		if got := TallinnDateString(instant.In(loc)); got != "2025-01-15" {
			t.Errorf("zone %v: expected 2025-01-15, got %s", loc, got)
		}
	}
}

func TestEventDateKeyMatchesCalendarDate(t *testing.T) {
	instant := time.Date(2025, 6, 1, 21, 30, 0, 0, time.UTC)
	if EventDateKey(instant) != TallinnDateString(instant) {
		t.Error("event date key must equal the Tallinn calendar date of the start time")
	}
}

func TestDateBoundToUTC(t *testing.T) {
	tests := []struct {
		date string
		time string
		want time.Time
	}{
		// Summer: Tallinn midnight is 21:00 UTC the previous day.
		{"2025-06-01", "00:00:00", time.Date(2025, 5, 31, 21, 0, 0, 0, time.UTC)},
		{"2025-06-01", "23:59:59", time.Date(2025, 6, 1, 20, 59, 59, 0, time.UTC)},
		// Winter: offset is +2.
		{"2025-01-15", "00:00:00", time.Date(2025, 1, 14, 22, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := DateBoundToUTC(tt.date, tt.time)
		if err != nil {
			t.Fatalf("DateBoundToUTC(%s, %s): %v", tt.date, tt.time, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("DateBoundToUTC(%s, %s) = %v, want %v", tt.date, tt.time, got, tt.want)
		}
	}

	if _, err := DateBoundToUTC("01-06-2025", "00:00:00"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestTodayAndTomorrowAreConsecutive(t *testing.T) {
	today := TodayInTallinn()
	tomorrow := TomorrowInTallinn()
	if today >= tomorrow {
		t.Errorf("expected %s < %s", today, tomorrow)
	}
}
