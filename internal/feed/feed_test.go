package feed

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/K-AMeus/kluub/internal/models"
	"github.com/google/uuid"
)

// pagedFetcher serves pages out of a fixed slice, mimicking the service's
// page/hasMore contract.
func pagedFetcher(events []models.Event) Fetcher {
	return func(ctx context.Context, city models.City, filters models.EventFilterParams, page, pageSize int) (models.EventsResult, error) {
		from := page * pageSize
		if from >= len(events) {
			return models.EventsResult{Events: []models.Event{}}, nil
		}
		to := from + pageSize
		hasMore := to < len(events)
		if to > len(events) {
			to = len(events)
		}
		return models.EventsResult{Events: events[from:to], HasMore: hasMore}, nil
	}
}

func makeEvents(n int) []models.Event {
	base := time.Date(2027, 5, 1, 10, 0, 0, 0, time.UTC)
	events := make([]models.Event, n)
	for i := range events {
		events[i] = models.Event{
			ID:        uuid.New(),
			Title:     fmt.Sprintf("event %d", i),
			StartTime: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return events
}

func TestLoadMoreAccumulatesPages(t *testing.T) {
	ctx := context.Background()
	events := makeEvents(12)
	f := New(pagedFetcher(events), models.CityTartu, 5)

	for i := 0; i < 3; i++ {
		if !f.LoadMore(ctx) {
			t.Fatalf("LoadMore %d returned false", i)
		}
	}

	snap := f.Snapshot()
	if snap.State != StateLoaded {
		t.Errorf("expected loaded state, got %s", snap.State)
	}
	if len(snap.Events) != 12 {
		t.Fatalf("expected all 12 events after 3 pages, got %d", len(snap.Events))
	}
	if snap.HasMore {
		t.Error("expected exhausted feed")
	}
	for i, event := range snap.Events {
		if event.ID != events[i].ID {
			t.Fatalf("event %d out of order", i)
		}
	}

	// Exhausted: further loads are no-ops.
	if f.LoadMore(ctx) {
		t.Error("expected LoadMore to refuse on an exhausted feed")
	}
}

func TestLoadMoreRefusesWhileInFlight(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	f := New(func(ctx context.Context, city models.City, filters models.EventFilterParams, page, pageSize int) (models.EventsResult, error) {
		close(started)
		<-release
		return models.EventsResult{Events: makeEvents(1), HasMore: false}, nil
	}, models.CityTartu, 10)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.LoadMore(ctx)
	}()

	<-started
	if f.LoadMore(ctx) {
		t.Error("expected concurrent LoadMore to be refused while a load is in flight")
	}
	close(release)
	wg.Wait()

	if snap := f.Snapshot(); len(snap.Events) != 1 {
		t.Errorf("expected exactly one page applied, got %d events", len(snap.Events))
	}
}

func TestFilterChangeDropsStaleResponse(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	f := New(func(ctx context.Context, city models.City, filters models.EventFilterParams, page, pageSize int) (models.EventsResult, error) {
		close(started)
		<-release
		return models.EventsResult{Events: makeEvents(3), HasMore: true}, nil
	}, models.CityTartu, 10)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if f.LoadMore(ctx) {
			t.Error("expected superseded load to report that it was dropped")
		}
	}()

	<-started
	// The user switches filters while the page request is still in flight.
	f.SetFilters(models.EventFilterParams{FreeOnly: true})
	close(release)
	wg.Wait()

	snap := f.Snapshot()
	if snap.State != StateIdle {
		t.Errorf("expected idle state after reset, got %s", snap.State)
	}
	if len(snap.Events) != 0 {
		t.Errorf("expected stale page to be discarded, got %d events", len(snap.Events))
	}
	if !snap.HasMore {
		t.Error("expected reset feed to allow loading")
	}
}

func TestSetFiltersResetsPagination(t *testing.T) {
	ctx := context.Background()
	f := New(pagedFetcher(makeEvents(7)), models.CityTartu, 5)

	f.LoadMore(ctx)
	f.LoadMore(ctx)
	if snap := f.Snapshot(); len(snap.Events) != 7 || snap.HasMore {
		t.Fatalf("setup failed: %d events, hasMore=%v", len(snap.Events), snap.HasMore)
	}

	f.SetFilters(models.EventFilterParams{TopPicks: true})
	snap := f.Snapshot()
	if snap.State != StateIdle || len(snap.Events) != 0 || !snap.HasMore {
		t.Error("expected filter change to reset state, events and pagination")
	}

	// The next load starts over from page zero.
	f.LoadMore(ctx)
	if snap := f.Snapshot(); len(snap.Events) != 5 {
		t.Errorf("expected first page after reset, got %d events", len(snap.Events))
	}
}

func TestFetchErrorEntersErrorState(t *testing.T) {
	ctx := context.Background()
	f := New(func(ctx context.Context, city models.City, filters models.EventFilterParams, page, pageSize int) (models.EventsResult, error) {
		return models.EventsResult{}, fmt.Errorf("store unavailable")
	}, models.CityTartu, 10)

	if !f.LoadMore(ctx) {
		t.Fatal("expected errored load to still complete")
	}

	snap := f.Snapshot()
	if snap.State != StateError {
		t.Errorf("expected error state, got %s", snap.State)
	}
	if snap.Err == nil {
		t.Error("expected the fetch error to be exposed")
	}
	if len(snap.Events) != 0 {
		t.Error("expected no events after a failed load")
	}
}
