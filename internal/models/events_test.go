package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func TestTransformEvent(t *testing.T) {
	id := uuid.New()
	venueID := uuid.New()
	start := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)

	row := EventDbRow{
		ID:          id,
		Title:       "Jazz Night",
		Description: "Live quartet",
		PriceTier:   2,
		VenueID:     venueID,
		City:        CityTartu,
		TopPick:     true,
		ImageURL:    strPtr("https://res.cloudinary.com/demo/image/upload/x.jpg"),
		FacebookURL: nil,
		StartTime:   start,
		EndTime:     end,
		Venues:      &struct {
			Name string `json:"name"`
		}{Name: "Genialistide Klubi"},
	}

	event := TransformEvent(row)
	if event.ID != id || event.VenueID != venueID {
		t.Error("ids not carried over")
	}
	if event.Venue != "Genialistide Klubi" {
		t.Errorf("expected joined venue name, got %q", event.Venue)
	}
	if event.PriceTier != 2 || !event.TopPick || event.City != CityTartu {
		t.Error("attributes not carried over")
	}
	if !event.StartTime.Equal(start) || !event.EndTime.Equal(end) {
		t.Error("timestamps not carried over")
	}
}

func TestTransformEventMissingVenueName(t *testing.T) {
	event := TransformEvent(EventDbRow{Title: "Orphan"})
	if event.Venue != UnknownVenueName {
		t.Errorf("expected %q placeholder, got %q", UnknownVenueName, event.Venue)
	}
}

func TestParseCity(t *testing.T) {
	for input, want := range map[string]City{
		"tartu":   CityTartu,
		"TALLINN": CityTallinn,
		" pärnu ": CityParnu,
	} {
		got, err := ParseCity(input)
		if err != nil {
			t.Errorf("ParseCity(%q): %v", input, err)
		}
		if got != want {
			t.Errorf("ParseCity(%q) = %q, want %q", input, got, want)
		}
	}

	if _, err := ParseCity("NARVA"); err == nil {
		t.Error("expected error for unsupported city")
	}
}

func eventAt(start time.Time, title string) Event {
	return Event{ID: uuid.New(), Title: title, StartTime: start, EndTime: start.Add(time.Hour)}
}

func TestGroupEventsByDate(t *testing.T) {
	// June 1st 21:30 UTC is June 2nd in Tallinn; the bucketing must follow the
	// fixed zone, not UTC.
	late := eventAt(time.Date(2025, 6, 1, 21, 30, 0, 0, time.UTC), "late")
	evening := eventAt(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC), "evening")
	noon := eventAt(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), "noon")
	nextDay := eventAt(time.Date(2025, 6, 2, 16, 0, 0, 0, time.UTC), "next")

	groups := GroupEventsByDate([]Event{nextDay, evening, late, noon})

	if len(groups) != 2 {
		t.Fatalf("expected 2 day groups, got %d", len(groups))
	}
	if groups[0].DateKey != "2025-06-01" || groups[1].DateKey != "2025-06-02" {
		t.Fatalf("unexpected day keys: %s, %s", groups[0].DateKey, groups[1].DateKey)
	}
	if len(groups[0].Events) != 2 {
		t.Fatalf("expected 2 events on 2025-06-01, got %d", len(groups[0].Events))
	}
	if groups[0].Events[0].Title != "noon" || groups[0].Events[1].Title != "evening" {
		t.Error("events within a day must be ordered by start time")
	}
	// The 21:30 UTC event belongs to the Tallinn June 2nd bucket.
	if len(groups[1].Events) != 2 || groups[1].Events[0].Title != "late" {
		t.Error("late event must bucket into the Tallinn day, ordered first")
	}
}

func TestGroupEventsByDateIdempotent(t *testing.T) {
	events := []Event{
		eventAt(time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC), "c"),
		eventAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), "a"),
		eventAt(time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC), "b"),
		eventAt(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), "a0"),
	}

	first := GroupEventsByDate(events)

	var flattened []Event
	for _, group := range first {
		flattened = append(flattened, group.Events...)
	}
	second := GroupEventsByDate(flattened)

	if len(first) != len(second) {
		t.Fatalf("group count changed on regroup: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].DateKey != second[i].DateKey || len(first[i].Events) != len(second[i].Events) {
			t.Fatalf("group %d changed on regroup", i)
		}
		for j := range first[i].Events {
			if first[i].Events[j].ID != second[i].Events[j].ID {
				t.Fatalf("event order changed on regroup at %d/%d", i, j)
			}
		}
	}
}

func TestGroupEventsByDateEmpty(t *testing.T) {
	if groups := GroupEventsByDate(nil); len(groups) != 0 {
		t.Errorf("expected no groups for empty input, got %d", len(groups))
	}
}
