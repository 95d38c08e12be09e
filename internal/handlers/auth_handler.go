package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// Logout clears the session cookies. The hosted auth provider owns the
// session itself; there is nothing server-side to tear down here.
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		isProduction := os.Getenv("GIN_MODE") == "production"

		c.SetCookie("access_token", "", -1, "/", "", isProduction, true)
		c.SetCookie("refresh_token", "", -1, "/", "", isProduction, true)
		c.SetCookie("session_id", "", -1, "/", "", false, true)

		c.JSON(http.StatusOK, gin.H{
			"message": "Logged out successfully",
		})
	}
}
