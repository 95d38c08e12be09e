package models

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

var Validate = validator.New()

const (
	EventsTable     = "events"
	VenuesTable     = "venues"
	VenueUsersTable = "venue_users"
)

// EventUpsert is the editable field set for create/update. Updates are a full
// replace of these fields.
type EventUpsert struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	PriceTier   PriceTier `json:"price_tier" validate:"min=0,max=3"`
	VenueID     uuid.UUID `json:"venue_id" validate:"required"`
	City        City      `json:"city" validate:"required"`
	TopPick     bool      `json:"top_pick"`
	ImageURL    *string   `json:"image_url"`
	FacebookURL *string   `json:"facebook_url"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
}

type EventsRepo interface {
	GetEventsByCity(ctx context.Context, city City, filters EventFilterParams, page, pageSize int) (EventsResult, error)
	GetTopPicks(ctx context.Context, city City) ([]Event, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetVenuesByCity(ctx context.Context, city City) ([]VenueOption, error)
	ListVenuesByUser(ctx context.Context, userID uuid.UUID, accessToken string) ([]Venue, error)
	ListEventsByVenues(ctx context.Context, venueIDs []uuid.UUID, accessToken string) ([]Event, error)
	CreateEvent(ctx context.Context, event *EventUpsert, accessToken string) (*Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, event *EventUpsert, accessToken string) (*Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID, accessToken string) error
}

type SupabaseRepo struct {
	supabaseClient *supabase.Client
	url            string
	key            string
}

func SupabaseNewRepo(supabaseClient *supabase.Client, url, key string) *SupabaseRepo {
	return &SupabaseRepo{
		supabaseClient: supabaseClient,
		url:            url,
		key:            key,
	}
}

// GetAuthenticatedClient returns a Supabase client carrying the given access
// token, so writes run under the user's session and row-level security.
func (su *SupabaseRepo) GetAuthenticatedClient(accessToken string) (*supabase.Client, error) {
	if su.url == "" || su.key == "" || accessToken == "" {
		return su.supabaseClient, nil
	}

	options := &supabase.ClientOptions{
		Headers: map[string]string{
			"Authorization": "Bearer " + accessToken,
		},
	}

	return supabase.NewClient(su.url, su.key, options)
}

type MongodbRepo struct {
	mongodbClient *mongo.Client
}

func MongodbNewRepo(mongodbClient *mongo.Client) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
	}
}

func (mdb *MongodbRepo) GetCollection(ctx context.Context, dbName, colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	client := mdb.mongodbClient.Database(dbName).Collection(colName)
	return client, nil
}
