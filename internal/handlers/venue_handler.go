package handlers

import (
	"net/http"

	"github.com/K-AMeus/kluub/internal/helpers"
	"github.com/K-AMeus/kluub/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListVenuesByCity serves the id+name pairs feeding the venue filter dropdown.
func ListVenuesByCity(es *services.EventsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		city, ok := parseCityParam(c)
		if !ok {
			return
		}

		venues, err := es.GetVenuesByCity(c.Request.Context(), city)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusServiceUnavailable, helpers.ErrorResponse("failed to load venues"))
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(venues, ""))
	}
}

// ListMyVenues returns the venues the caller manages via the ownership join.
func ListMyVenues(es *services.EventsService) gin.HandlerFunc {
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

		c.JSON(http.StatusOK, helpers.SuccessResponse(venues, ""))
	}
}
