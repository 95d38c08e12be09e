package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/K-AMeus/kluub/internal/helpers"
	"github.com/google/uuid"
)

type City string

const (
	CityTartu   City = "TARTU"
	CityTallinn City = "TALLINN"
	CityParnu   City = "PÄRNU"
)

// ParseCity normalizes a path/query value into one of the supported cities.
func ParseCity(s string) (City, error) {
	switch City(strings.ToUpper(strings.TrimSpace(s))) {
	case CityTartu:
		return CityTartu, nil
	case CityTallinn:
		return CityTallinn, nil
	case CityParnu:
		return CityParnu, nil
	}
	return "", fmt.Errorf("unsupported city: %q", s)
}

// PriceTier is an ordinal 0-3: free, low, medium, high.
type PriceTier int

const PriceTierFree PriceTier = 0

var priceTierLabels = [...]string{"Free", "€", "€€", "€€€"}

func (p PriceTier) Label() string {
	if p < 0 || int(p) >= len(priceTierLabels) {
		return ""
	}
	return priceTierLabels[p]
}

const EventsPageSize = 10

const UnknownVenueName = "Unknown Venue"

type Event struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PriceTier   PriceTier `json:"price_tier"`
	VenueID     uuid.UUID `json:"venue_id"`
	Venue       string    `json:"venue"`
	City        City      `json:"city"`
	TopPick     bool      `json:"top_pick"`
	ImageURL    *string   `json:"image_url"`
	FacebookURL *string   `json:"facebook_url"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// EventDbRow is the raw events row shape returned by the store, including the
// venues(name) foreign-row projection.
type EventDbRow struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PriceTier   PriceTier `json:"price_tier"`
	VenueID     uuid.UUID `json:"venue_id"`
	City        City      `json:"city"`
	TopPick     bool      `json:"top_pick"`
	ImageURL    *string   `json:"image_url"`
	FacebookURL *string   `json:"facebook_url"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Venues      *struct {
		Name string `json:"name"`
	} `json:"venues"`
}

// TransformEvent maps a raw row into the canonical Event. A missing joined
// venue name falls back to a fixed placeholder; everything else is carried
// over as-is.
func TransformEvent(row EventDbRow) Event {
	venueName := UnknownVenueName
	if row.Venues != nil && row.Venues.Name != "" {
		venueName = row.Venues.Name
	}
	return Event{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		PriceTier:   row.PriceTier,
		VenueID:     row.VenueID,
		Venue:       venueName,
		City:        row.City,
		TopPick:     row.TopPick,
		ImageURL:    row.ImageURL,
		FacebookURL: row.FacebookURL,
		StartTime:   row.StartTime,
		EndTime:     row.EndTime,
	}
}

// EventFilterParams is the client-held filter shape. Dates are inclusive
// YYYY-MM-DD calendar dates interpreted in the fixed display timezone.
type EventFilterParams struct {
	TopPicks  bool       `json:"top_picks"`
	FreeOnly  bool       `json:"free_only"`
	VenueID   *uuid.UUID `json:"venue_id,omitempty"`
	StartDate string     `json:"start_date,omitempty"`
	EndDate   string     `json:"end_date,omitempty"`
}

type EventsResult struct {
	Events  []Event `json:"events"`
	HasMore bool    `json:"has_more"`
}

// VenueOption is the id+name pair backing the venue filter dropdown.
type VenueOption struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// DayGroup is one calendar day's worth of events.
type DayGroup struct {
	DateKey string  `json:"date_key"`
	Events  []Event `json:"events"`
}

// GroupEventsByDate buckets events by their Tallinn calendar day and returns
// the days in chronological order, each day's events ordered by start time.
// Pure and idempotent: regrouping an already grouped-and-flattened list yields
// the same structure.
func GroupEventsByDate(events []Event) []DayGroup {
	grouped := make(map[string][]Event)
	for _, event := range events {
		key := helpers.EventDateKey(event.StartTime)
		grouped[key] = append(grouped[key], event)
	}

	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	groups := make([]DayGroup, 0, len(keys))
	for _, key := range keys {
		bucket := grouped[key]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].StartTime.Before(bucket[j].StartTime)
		})
		groups = append(groups, DayGroup{DateKey: key, Events: bucket})
	}
	return groups
}
