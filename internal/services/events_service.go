package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/K-AMeus/kluub/internal/cache"
	"github.com/K-AMeus/kluub/internal/models"
	"github.com/google/uuid"
)

// EventsService wraps the events repository with the tag-invalidated query
// cache and owns mutation validation. Reads prefer the cache; any event
// mutation purges the whole "events" tag before returning.
type EventsService struct {
	eventsRepo models.EventsRepo
	viewsRepo  models.EventViewsRepo
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *slog.Logger
}

func NewEventsService(eventsRepo models.EventsRepo, viewsRepo models.EventViewsRepo, c cache.Cache, cacheTTL time.Duration, logger *slog.Logger) *EventsService {
	return &EventsService{
		eventsRepo: eventsRepo,
		viewsRepo:  viewsRepo,
		cache:      c,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// eventsCacheKey serializes every query input into a deterministic key.
// EventFilterParams marshals with a fixed field order, so identical filter
// sets always produce identical keys.
func eventsCacheKey(city models.City, filters models.EventFilterParams, page, pageSize int) (string, error) {
	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return "", fmt.Errorf("failed to serialize filters: %v", err)
	}
	return fmt.Sprintf("events:%s:%s:%d:%d", city, filtersJSON, page, pageSize), nil
}

// cachedFetch runs fetch through the cache under the given key and tag.
// Cache failures degrade to a direct store read; they never fail the request.
func cachedFetch[T any](ctx context.Context, es *EventsService, key, tag string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	if data, ok, err := es.cache.Get(ctx, key); err != nil {
		es.logger.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		es.logger.Warn("discarding undecodable cache entry", "key", key)
	}

	result, err := fetch(ctx)
	if err != nil {
		return zero, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := es.cache.Set(ctx, key, data, es.cacheTTL, tag); err != nil {
			es.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}

	return result, nil
}

// GetEventsByCity returns one cached page of future events for a city.
// A store failure is returned as an error, not conflated with an empty page.
func (es *EventsService) GetEventsByCity(ctx context.Context, city models.City, filters models.EventFilterParams, page, pageSize int) (models.EventsResult, error) {
	if page < 0 || pageSize <= 0 {
		return models.EventsResult{}, fmt.Errorf("invalid page or page size")
	}

	key, err := eventsCacheKey(city, filters, page, pageSize)
	if err != nil {
		return models.EventsResult{}, err
	}

	return cachedFetch(ctx, es, key, cache.TagEvents, func(ctx context.Context) (models.EventsResult, error) {
		return es.eventsRepo.GetEventsByCity(ctx, city, filters, page, pageSize)
	})
}

func (es *EventsService) GetTopPicks(ctx context.Context, city models.City) ([]models.Event, error) {
	key := fmt.Sprintf("top-picks:%s", city)
	return cachedFetch(ctx, es, key, cache.TagEvents, func(ctx context.Context) ([]models.Event, error) {
		return es.eventsRepo.GetTopPicks(ctx, city)
	})
}

func (es *EventsService) GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid event ID")
	}
	key := fmt.Sprintf("event-by-id:%s", id)
	return cachedFetch(ctx, es, key, cache.TagEvents, func(ctx context.Context) (*models.Event, error) {
		return es.eventsRepo.GetEventByID(ctx, id)
	})
}

func (es *EventsService) GetVenuesByCity(ctx context.Context, city models.City) ([]models.VenueOption, error) {
	key := fmt.Sprintf("venues-by-city:%s", city)
	return cachedFetch(ctx, es, key, cache.TagVenues, func(ctx context.Context) ([]models.VenueOption, error) {
		return es.eventsRepo.GetVenuesByCity(ctx, city)
	})
}

// ListVenuesByUser and ListEventsByVenues serve the backstage area; they run
// under the caller's session and are never cached.
func (es *EventsService) ListVenuesByUser(ctx context.Context, userID uuid.UUID, accessToken string) ([]models.Venue, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}
	return es.eventsRepo.ListVenuesByUser(ctx, userID, accessToken)
}

func (es *EventsService) ListEventsByVenues(ctx context.Context, venueIDs []uuid.UUID, accessToken string) ([]models.Event, error) {
	return es.eventsRepo.ListEventsByVenues(ctx, venueIDs, accessToken)
}

func isWellFormedURL(raw string) bool {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}

func validateEventUpsert(event *models.EventUpsert) error {
	if err := models.Validate.Struct(event); err != nil {
		return fmt.Errorf("invalid event data provided: %v", err)
	}
	if _, err := models.ParseCity(string(event.City)); err != nil {
		return err
	}
	if !event.EndTime.After(event.StartTime) {
		return fmt.Errorf("end time must be after start time")
	}
	if event.ImageURL != nil && *event.ImageURL != "" && !isWellFormedURL(*event.ImageURL) {
		return fmt.Errorf("image URL is not a valid URL")
	}
	if event.FacebookURL != nil && *event.FacebookURL != "" && !isWellFormedURL(*event.FacebookURL) {
		return fmt.Errorf("facebook URL is not a valid URL")
	}
	return nil
}

// invalidateEvents purges every cached events page across all cities, filter
// sets and pages. Coarse by design: the catalog is small and the next read
// recomputes.
func (es *EventsService) invalidateEvents(ctx context.Context) {
	if err := es.cache.InvalidateTag(ctx, cache.TagEvents); err != nil {
		es.logger.Error("failed to invalidate events cache", "error", err)
	}
}

func (es *EventsService) CreateEvent(ctx context.Context, event *models.EventUpsert, accessToken string) (*models.Event, error) {
	if err := validateEventUpsert(event); err != nil {
		return nil, err
	}

	created, err := es.eventsRepo.CreateEvent(ctx, event, accessToken)
	if err != nil {
		return nil, err
	}

	es.invalidateEvents(ctx)
	return created, nil
}

func (es *EventsService) UpdateEvent(ctx context.Context, id uuid.UUID, event *models.EventUpsert, accessToken string) (*models.Event, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid event ID")
	}
	if err := validateEventUpsert(event); err != nil {
		return nil, err
	}

	updated, err := es.eventsRepo.UpdateEvent(ctx, id, event, accessToken)
	if err != nil {
		return nil, err
	}

	es.invalidateEvents(ctx)
	return updated, nil
}

func (es *EventsService) DeleteEvent(ctx context.Context, id uuid.UUID, accessToken string) error {
	if id == uuid.Nil {
		return fmt.Errorf("invalid event ID")
	}

	if err := es.eventsRepo.DeleteEvent(ctx, id, accessToken); err != nil {
		return err
	}

	es.invalidateEvents(ctx)
	return nil
}

// TrackEventView records an event-detail view. Best effort: analytics being
// down must never fail the detail page.
func (es *EventsService) TrackEventView(ctx context.Context, view *models.EventView) {
	if es.viewsRepo == nil {
		return
	}
	if err := es.viewsRepo.TrackEventView(ctx, view); err != nil {
		es.logger.Warn("failed to track event view", "event_id", view.EventID, "error", err)
	}
}

func (es *EventsService) GetEventViewStats(ctx context.Context, eventID string) (*models.EventViewStats, error) {
	if es.viewsRepo == nil {
		return nil, fmt.Errorf("view tracking is not configured")
	}
	return es.viewsRepo.GetEventViewStats(ctx, eventID)
}
