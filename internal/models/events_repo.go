package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/K-AMeus/kluub/internal/helpers"
	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

// eventColumns includes the venues(name) foreign-row projection so the
// denormalized venue display name comes back in one query.
const eventColumns = "id,title,description,price_tier,venue_id,city,top_pick,image_url,facebook_url,start_time,end_time,venues(name)"

var orderAscending = &postgrest.OrderOpts{Ascending: true}

// pageWindow applies the pageSize+1 fetch trick: when more rows than pageSize
// came back there is at least one more page, and the extra row is discarded.
func pageWindow(rows []EventDbRow, pageSize int) ([]EventDbRow, bool) {
	if len(rows) > pageSize {
		return rows[:pageSize], true
	}
	return rows, false
}

func decodeEventRows(data []byte) ([]Event, error) {
	var rows []EventDbRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event rows: %v", err)
	}
	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, TransformEvent(row))
	}
	return events, nil
}

// GetEventsByCity returns one page of future events for a city matching the
// filter set, ordered by start time ascending (id as tiebreak so repeated
// identical queries paginate stably), plus whether more pages exist.
func (su *SupabaseRepo) GetEventsByCity(ctx context.Context, city City, filters EventFilterParams, page, pageSize int) (EventsResult, error) {
	if page < 0 || pageSize <= 0 {
		return EventsResult{}, fmt.Errorf("invalid page or page size")
	}

	from := page * pageSize
	to := from + pageSize

	// The query builder keys filters by column, so start_time gets exactly one
	// param: either a single gte, or an and=() group carrying both bounds. The
	// effective lower bound is the later of "now" and the start date, so a past
	// start_date can never widen the window into past events.
	lower := time.Now().UTC()
	if filters.StartDate != "" {
		bound, err := helpers.DateBoundToUTC(filters.StartDate, "00:00:00")
		if err != nil {
			return EventsResult{}, fmt.Errorf("invalid start date %q: %v", filters.StartDate, err)
		}
		if bound.After(lower) {
			lower = bound
		}
	}

	query := su.supabaseClient.
		From(EventsTable).
		Select(eventColumns, "", false).
		Eq("city", string(city))

	if filters.EndDate != "" {
		upper, err := helpers.DateBoundToUTC(filters.EndDate, "23:59:59")
		if err != nil {
			return EventsResult{}, fmt.Errorf("invalid end date %q: %v", filters.EndDate, err)
		}
		query = query.And(fmt.Sprintf("start_time.gte.%s,start_time.lte.%s",
			lower.Format(time.RFC3339), upper.Format(time.RFC3339)), "")
	} else {
		query = query.Gte("start_time", lower.Format(time.RFC3339))
	}

	if filters.TopPicks {
		query = query.Eq("top_pick", "true")
	}
	if filters.FreeOnly {
		query = query.Eq("price_tier", "0")
	}
	if filters.VenueID != nil {
		query = query.Eq("venue_id", filters.VenueID.String())
	}

	data, _, err := query.
		Order("start_time", orderAscending).
		Order("id", orderAscending).
		Range(from, to, "").
		Execute()
	if err != nil {
		return EventsResult{}, fmt.Errorf("failed to fetch events: %v", err)
	}

	var rows []EventDbRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return EventsResult{}, fmt.Errorf("failed to unmarshal event rows: %v", err)
	}

	pageRows, hasMore := pageWindow(rows, pageSize)
	events := make([]Event, 0, len(pageRows))
	for _, row := range pageRows {
		events = append(events, TransformEvent(row))
	}

	return EventsResult{Events: events, HasMore: hasMore}, nil
}

// GetTopPicks returns every future editorially curated event for a city.
func (su *SupabaseRepo) GetTopPicks(ctx context.Context, city City) ([]Event, error) {
	data, _, err := su.supabaseClient.
		From(EventsTable).
		Select(eventColumns, "", false).
		Eq("city", string(city)).
		Eq("top_pick", "true").
		Gte("start_time", time.Now().UTC().Format(time.RFC3339)).
		Order("start_time", orderAscending).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top picks: %v", err)
	}

	return decodeEventRows(data)
}

func (su *SupabaseRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	data, _, err := su.supabaseClient.
		From(EventsTable).
		Select(eventColumns, "", false).
		Eq("id", id.String()).
		Single().
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event %s: %v", id, err)
	}

	var row EventDbRow
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event row: %v", err)
	}

	event := TransformEvent(row)
	return &event, nil
}

// GetVenuesByCity returns the id+name pairs for the venue filter dropdown.
func (su *SupabaseRepo) GetVenuesByCity(ctx context.Context, city City) ([]VenueOption, error) {
	data, _, err := su.supabaseClient.
		From(VenuesTable).
		Select("id,name", "", false).
		Eq("city", string(city)).
		Order("name", orderAscending).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch venues: %v", err)
	}

	var venues []VenueOption
	if err := json.Unmarshal(data, &venues); err != nil {
		return nil, fmt.Errorf("failed to unmarshal venues: %v", err)
	}
	return venues, nil
}

// ListVenuesByUser resolves the venues the user manages through the
// venue_users ownership join.
func (su *SupabaseRepo) ListVenuesByUser(ctx context.Context, userID uuid.UUID, accessToken string) ([]Venue, error) {
	client, err := su.GetAuthenticatedClient(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to build authenticated client: %v", err)
	}

	data, _, err := client.
		From(VenueUsersTable).
		Select("venue_id,venues(id,name,city,address,lat,lng,opening_times,created_by,created_at,updated_at)", "", false).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user venues: %v", err)
	}

	var rows []struct {
		VenueID uuid.UUID `json:"venue_id"`
		Venues  *Venue    `json:"venues"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user venues: %v", err)
	}

	venues := make([]Venue, 0, len(rows))
	for _, row := range rows {
		if row.Venues != nil {
			venues = append(venues, *row.Venues)
		}
	}
	return venues, nil
}

// ListEventsByVenues returns every event at the given venues, upcoming and
// past alike, for the backstage listing.
func (su *SupabaseRepo) ListEventsByVenues(ctx context.Context, venueIDs []uuid.UUID, accessToken string) ([]Event, error) {
	if len(venueIDs) == 0 {
		return []Event{}, nil
	}

	client, err := su.GetAuthenticatedClient(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to build authenticated client: %v", err)
	}

	ids := make([]string, 0, len(venueIDs))
	for _, id := range venueIDs {
		ids = append(ids, id.String())
	}

	data, _, err := client.
		From(EventsTable).
		Select(eventColumns, "", false).
		In("venue_id", ids).
		Order("start_time", orderAscending).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch venue events: %v", err)
	}

	return decodeEventRows(data)
}

func upsertPayload(event *EventUpsert) map[string]interface{} {
	return map[string]interface{}{
		"title":        event.Title,
		"description":  event.Description,
		"price_tier":   event.PriceTier,
		"venue_id":     event.VenueID,
		"city":         event.City,
		"top_pick":     event.TopPick,
		"image_url":    event.ImageURL,
		"facebook_url": event.FacebookURL,
		"start_time":   event.StartTime.UTC().Format(time.RFC3339),
		"end_time":     event.EndTime.UTC().Format(time.RFC3339),
	}
}

// CreateEvent inserts a new event under the caller's session. Ownership is
// enforced by store-level row security, not re-checked here.
func (su *SupabaseRepo) CreateEvent(ctx context.Context, event *EventUpsert, accessToken string) (*Event, error) {
	client, err := su.GetAuthenticatedClient(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to build authenticated client: %v", err)
	}

	data, _, err := client.
		From(EventsTable).
		Insert(upsertPayload(event), false, "", "representation", "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %v", err)
	}

	created, err := decodeEventRows(data)
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("store returned no row for created event")
	}
	result := created[0]
	// The insert response carries no joined venue name.
	result.Venue = ""
	return &result, nil
}

// UpdateEvent replaces the editable fields of an existing event.
func (su *SupabaseRepo) UpdateEvent(ctx context.Context, id uuid.UUID, event *EventUpsert, accessToken string) (*Event, error) {
	client, err := su.GetAuthenticatedClient(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to build authenticated client: %v", err)
	}

	data, _, err := client.
		From(EventsTable).
		Update(upsertPayload(event), "representation", "").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update event %s: %v", id, err)
	}

	updated, err := decodeEventRows(data)
	if err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, fmt.Errorf("event %s not found", id)
	}
	result := updated[0]
	result.Venue = ""
	return &result, nil
}

func (su *SupabaseRepo) DeleteEvent(ctx context.Context, id uuid.UUID, accessToken string) error {
	client, err := su.GetAuthenticatedClient(accessToken)
	if err != nil {
		return fmt.Errorf("failed to build authenticated client: %v", err)
	}

	_, _, err = client.
		From(EventsTable).
		Delete("", "").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete event %s: %v", id, err)
	}
	return nil
}
