package container

import (
	"log/slog"
	"time"

	"github.com/K-AMeus/kluub/internal/cache"
	"github.com/K-AMeus/kluub/internal/models"
	"github.com/K-AMeus/kluub/internal/services"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger         *slog.Logger
	Cloudinary     *cloudinary.Cloudinary
	SupabaseClient *supabase.Client
	Cache          cache.Cache
	EventsService  *services.EventsService
}

// NewContainer creates a new dependency injection container. A nil Redis
// client degrades the query cache to the in-process implementation; a nil
// Mongo client disables view tracking.
func NewContainer(
	logger *slog.Logger,
	cld *cloudinary.Cloudinary,
	supabaseClient *supabase.Client,
	redisClient *redis.Client,
	mongoClient *mongo.Client,
	supaURL, supaKey string,
	cacheTTL time.Duration,
) *Container {
	var queryCache cache.Cache
	if redisClient != nil {
		queryCache = cache.NewRedisCache(redisClient, "kluub")
	} else {
		logger.Warn("Redis unavailable, falling back to in-process cache")
		queryCache = cache.NewMemoryCache()
	}

	supa := models.SupabaseNewRepo(supabaseClient, supaURL, supaKey)

	var viewsRepo models.EventViewsRepo
	if mongoClient != nil {
		viewsRepo = models.MongodbNewRepo(mongoClient)
	}

	eventsService := services.NewEventsService(supa, viewsRepo, queryCache, cacheTTL, logger)

	return &Container{
		Logger:         logger,
		Cloudinary:     cld,
		SupabaseClient: supabaseClient,
		Cache:          queryCache,
		EventsService:  eventsService,
	}
}
