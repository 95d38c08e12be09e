package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/K-AMeus/kluub/internal/helpers"
	"github.com/K-AMeus/kluub/internal/models"
	"github.com/K-AMeus/kluub/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func parseCityParam(c *gin.Context) (models.City, bool) {
	city, err := models.ParseCity(c.Param("city"))
	if err != nil {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid city"))
		return "", false
	}
	return city, true
}

func parseFilterParams(c *gin.Context) (models.EventFilterParams, bool) {
	filters := models.EventFilterParams{
		TopPicks: c.Query("top_picks") == "true",
		FreeOnly: c.Query("free_only") == "true",
	}

	if venueID := c.Query("venue_id"); venueID != "" {
		parsed, err := uuid.Parse(venueID)
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid venue_id parameter"))
			return filters, false
		}
		filters.VenueID = &parsed
	}

	for _, bound := range []struct {
		value  string
		target *string
	}{
		{c.Query("start_date"), &filters.StartDate},
		{c.Query("end_date"), &filters.EndDate},
	} {
		if bound.value == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", bound.value); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("dates must be in YYYY-MM-DD form"))
			return filters, false
		}
		*bound.target = bound.value
	}

	return filters, true
}

func parsePageParams(c *gin.Context) (page, pageSize int, ok bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid page parameter"))
		return 0, 0, false
	}
	pageSize, err = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(models.EventsPageSize)))
	if err != nil || pageSize <= 0 {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid page_size parameter"))
		return 0, 0, false
	}
	return page, pageSize, true
}

// ListEventsByCity serves one page of filtered future events for a city.
func ListEventsByCity(es *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		city, ok := parseCityParam(c)
		if !ok {
			return
		}
		filters, ok := parseFilterParams(c)
		if !ok {
			return
		}
		page, pageSize, ok := parsePageParams(c)
		if !ok {
			return
		}

		result, err := es.GetEventsByCity(c.Request.Context(), city, filters, page, pageSize)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusServiceUnavailable, helpers.ErrorResponse("failed to load events"))
			return
		}

		c.JSON(http.StatusOK, helpers.PaginatedResponse(result.Events, page, pageSize, result.HasMore))
	}
}

// ListEventsByCityGrouped serves the same page bucketed by Tallinn calendar day.
func ListEventsByCityGrouped(es *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		city, ok := parseCityParam(c)
		if !ok {
			return
		}
		filters, ok := parseFilterParams(c)
		if !ok {
			return
		}
		page, pageSize, ok := parsePageParams(c)
		if !ok {
			return
		}

		result, err := es.GetEventsByCity(c.Request.Context(), city, filters, page, pageSize)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusServiceUnavailable, helpers.ErrorResponse("failed to load events"))
			return
		}

		groups := models.GroupEventsByDate(result.Events)
		c.JSON(http.StatusOK, helpers.PaginatedResponse(groups, page, pageSize, result.HasMore))
	}
}

func ListTopPicks(es *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		city, ok := parseCityParam(c)
		if !ok {
			return
		}

		events, err := es.GetTopPicks(c.Request.Context(), city)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusServiceUnavailable, helpers.ErrorResponse("failed to load top picks"))
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(events, ""))
	}
}

func GetEventByID(es *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := strings.TrimSpace(c.Param("id"))
		parsedID, err := uuid.Parse(eventID)
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid event ID format"))
			return
		}

		event, err := es.GetEventByID(c.Request.Context(), parsedID)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusNotFound, helpers.ErrorResponse("event not found"))
			return
		}

		// Best-effort view tracking; never blocks the response.
		sessionID, _ := c.Cookie("session_id")
		if sessionID == "" {
			sessionID = c.GetString("request_id")
		}
		es.TrackEventView(c.Request.Context(), &models.EventView{
			EventID:   event.ID.String(),
			City:      string(event.City),
			SessionID: sessionID,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})

		c.JSON(http.StatusOK, helpers.SuccessResponse(event, ""))
	}
}

func GetEventViewStats(es *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID := strings.TrimSpace(c.Param("id"))
		if _, err := uuid.Parse(eventID); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid event ID format"))
			return
		}

		stats, err := es.GetEventViewStats(c.Request.Context(), eventID)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusServiceUnavailable, helpers.ErrorResponse("failed to load view stats"))
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(stats, ""))
	}
}

func currentClaims(c *gin.Context) (*helpers.SessionClaims, bool) {
	userClaims, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, helpers.ErrorResponse("unauthorized"))
		return nil, false
	}
	claims, ok := userClaims.(*helpers.SessionClaims)
	if !ok {
		c.JSON(http.StatusInternalServerError, helpers.ErrorResponse("invalid user claims"))
		return nil, false
	}
	return claims, true
}

// MyEventsResponse splits the caller's events by the fixed-zone clock.
type MyEventsResponse struct {
	Venues   []models.Venue `json:"venues"`
	Upcoming []models.Event `json:"upcoming"`
	Past     []models.Event `json:"past"`
}

// ListMyEvents returns every event across the venues the caller manages,
// split into upcoming and past.
func ListMyEvents(es *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentClaims(c)
		if !ok {
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid user ID in token"))
			return
		}

		accessToken, _ := c.Cookie("access_token")
		venues, err := es.ListVenuesByUser(c.Request.Context(), userID, accessToken)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusServiceUnavailable, helpers.ErrorResponse("failed to load venues"))
			return
		}

		response := MyEventsResponse{Venues: venues, Upcoming: []models.Event{}, Past: []models.Event{}}
		if len(venues) == 0 {
			c.JSON(http.StatusOK, helpers.SuccessResponse(response, ""))
			return
		}

		venueIDs := make([]uuid.UUID, 0, len(venues))
		for _, venue := range venues {
			venueIDs = append(venueIDs, venue.ID)
		}

		events, err := es.ListEventsByVenues(c.Request.Context(), venueIDs, accessToken)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusServiceUnavailable, helpers.ErrorResponse("failed to load events"))
			return
		}

		now := time.Now()
		for _, event := range events {
			if event.EndTime.Before(now) {
				response.Past = append(response.Past, event)
			} else {
				response.Upcoming = append(response.Upcoming, event)
			}
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(response, ""))
	}
}

func CreateEvent(es *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentClaims(c); !ok {
			return
		}

		var event models.EventUpsert
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		accessToken, _ := c.Cookie("access_token")
		created, err := es.CreateEvent(c.Request.Context(), &event, accessToken)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusInternalServerError, helpers.ErrorResponse("failed to create event"))
			return
		}

		c.JSON(http.StatusCreated, helpers.SuccessResponse(created, "Event created successfully"))
	}
}

func UpdateEvent(es *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentClaims(c); !ok {
			return
		}

		eventID := strings.TrimSpace(c.Param("id"))
		parsedID, err := uuid.Parse(eventID)
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid event ID format"))
			return
		}

		var event models.EventUpsert
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}

		accessToken, _ := c.Cookie("access_token")
		updated, err := es.UpdateEvent(c.Request.Context(), parsedID, &event, accessToken)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusInternalServerError, helpers.ErrorResponse("failed to update event"))
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(updated, "Event updated successfully"))
	}
}

func DeleteEvent(es *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentClaims(c); !ok {
			return
		}

		eventID := strings.TrimSpace(c.Param("id"))
		parsedID, err := uuid.Parse(eventID)
		if err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid event ID format"))
			return
		}

		accessToken, _ := c.Cookie("access_token")
		if err := es.DeleteEvent(c.Request.Context(), parsedID, accessToken); err != nil {
			c.Error(err)
			c.JSON(http.StatusInternalServerError, helpers.ErrorResponse("failed to delete event"))
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Event deleted successfully"))
	}
}
