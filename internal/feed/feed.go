// Package feed implements the "load more" pagination state machine used by
// the event listing. It issues one page request at a time, ignores a second
// load while one is in flight, and stamps every request with a monotonic
// sequence number so a slow response belonging to an older filter set is
// discarded instead of appended after fresher results.
package feed

import (
	"context"
	"sync"

	"github.com/K-AMeus/kluub/internal/models"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Fetcher loads one page of events; in production it is
// EventsService.GetEventsByCity.
type Fetcher func(ctx context.Context, city models.City, filters models.EventFilterParams, page, pageSize int) (models.EventsResult, error)

// Feed accumulates pages of events for one city under the current filter set.
type Feed struct {
	mu       sync.Mutex
	fetch    Fetcher
	city     models.City
	pageSize int

	filters  models.EventFilterParams
	state    State
	events   []models.Event
	nextPage int
	hasMore  bool
	seq      uint64
	err      error
}

// Snapshot is a consistent read of the feed's visible state.
type Snapshot struct {
	State   State
	Events  []models.Event
	HasMore bool
	Err     error
}

func New(fetch Fetcher, city models.City, pageSize int) *Feed {
	if pageSize <= 0 {
		pageSize = models.EventsPageSize
	}
	return &Feed{
		fetch:    fetch,
		city:     city,
		pageSize: pageSize,
		hasMore:  true,
	}
}

// LoadMore fetches the next page. It returns false without doing anything
// when a load is already in flight or the feed is exhausted. A completion
// whose sequence number is no longer the latest issued request is dropped.
func (f *Feed) LoadMore(ctx context.Context) bool {
	f.mu.Lock()
	if f.state == StateLoading || !f.hasMore {
		f.mu.Unlock()
		return false
	}
	f.seq++
	seq := f.seq
	page := f.nextPage
	city, filters, pageSize := f.city, f.filters, f.pageSize
	f.state = StateLoading
	f.mu.Unlock()

	result, err := f.fetch(ctx, city, filters, page, pageSize)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.seq {
		// Superseded by a filter change while in flight.
		return false
	}
	if err != nil {
		f.state = StateError
		f.err = err
		return true
	}
	f.events = append(f.events, result.Events...)
	f.hasMore = result.HasMore
	f.nextPage = page + 1
	f.state = StateLoaded
	f.err = nil
	return true
}

// SetFilters replaces the filter set and resets pagination to page zero. Any
// in-flight load is invalidated: its completion will see a newer sequence
// number and be discarded.
func (f *Feed) SetFilters(filters models.EventFilterParams) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = filters
	f.seq++
	f.state = StateIdle
	f.events = nil
	f.nextPage = 0
	f.hasMore = true
	f.err = nil
}

func (f *Feed) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := make([]models.Event, len(f.events))
	copy(events, f.events)
	return Snapshot{
		State:   f.state,
		Events:  events,
		HasMore: f.hasMore,
		Err:     f.err,
	}
}
