package routes

import (
	"github.com/K-AMeus/kluub/internal/container"
	"github.com/K-AMeus/kluub/internal/handlers"
	"github.com/K-AMeus/kluub/internal/helpers"
	"github.com/K-AMeus/kluub/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(middleware.BackstageGate(container.Logger, helpers.ValidateToken))
	r.Use(gin.Recovery())

	// API version 1
	v1 := r.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "kluub-api",
			})
		})

		// public routes
		eventRoutes := v1.Group("/events")
		{
			eventRoutes.GET("/:city", handlers.ListEventsByCity(container.EventsService))
			eventRoutes.GET("/:city/grouped", handlers.ListEventsByCityGrouped(container.EventsService))
			eventRoutes.GET("/:city/top-picks", handlers.ListTopPicks(container.EventsService))
			eventRoutes.GET("/id/:id", handlers.GetEventByID(container.EventsService))
			eventRoutes.GET("/id/:id/views", handlers.GetEventViewStats(container.EventsService))
		}

		v1.GET("/venues/:city", handlers.ListVenuesByCity(container.EventsService))
		v1.POST("/logout", handlers.Logout())
	}

	// backstage routes require a valid session
	protected := v1.Group("/backstage")
	protected.Use(middleware.AuthMiddleware(container.SupabaseClient, container.Logger))
	{
		protected.GET("/venues", handlers.ListMyVenues(container.EventsService))
		protected.GET("/events", handlers.ListMyEvents(container.EventsService))
		protected.POST("/events", handlers.CreateEvent(container.EventsService))
		protected.PUT("/events/:id", handlers.UpdateEvent(container.EventsService))
		protected.DELETE("/events/:id", handlers.DeleteEvent(container.EventsService))
	}

	// image CDN proxy
	cloudinaryRoutes := r.Group("/api/cloudinary")
	cloudinaryRoutes.Use(middleware.AuthMiddleware(container.SupabaseClient, container.Logger))
	{
		cloudinaryRoutes.POST("/upload", handlers.UploadImage(container.Cloudinary))
		cloudinaryRoutes.POST("/delete", handlers.DeleteImage(container.Cloudinary))
	}

	return r
}
