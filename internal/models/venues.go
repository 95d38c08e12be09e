package models

import (
	"time"

	"github.com/google/uuid"
)

// OpeningHours is one weekday's open/close pair, HH:MM (24h).
type OpeningHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Venue is a physical location owned by one or more users. Venues are
// provisioned outside this service; we only read them to scope event
// mutations and to fill filter dropdowns. An event snapshots its venue's
// city at creation time; later venue edits do not rewrite events.
type Venue struct {
	ID           uuid.UUID               `json:"id"`
	Name         string                  `json:"name"`
	City         City                    `json:"city"`
	Address      string                  `json:"address"`
	Lat          float64                 `json:"lat"`
	Lng          float64                 `json:"lng"`
	OpeningTimes map[string]OpeningHours `json:"opening_times,omitempty"`
	CreatedBy    *uuid.UUID              `json:"created_by"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}
