package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/K-AMeus/kluub/internal/helpers"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"
)

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		// Log request completion
		latency := time.Since(start)
		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", method,
			"path", path,
			"status", statusCode,
			"latency", latency,
			"client_ip", clientIP,
		)
	}
}

// ErrorHandler provides centralized error handling
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			requestID, _ := c.Get("request_id")

			logger.Error("Request error",
				"request_id", requestID,
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)

			// Handlers usually pair c.Error with their own response; only
			// answer here when nothing has been written yet.
			// Don't return error details in production
			if !c.Writer.Written() {
				c.JSON(500, gin.H{
					"error":      "Internal server error",
					"request_id": requestID,
				})
			}
		}
	}
}

// TokenValidator resolves session claims from a raw access token.
type TokenValidator func(token string) (*helpers.CustomClaims, error)

var backstagePattern = regexp.MustCompile(`^/(en|et)/backstage/.+`)

// BackstageGate guards the backstage path prefix. A request matching the
// protected pattern must carry valid session claims; absence or failure of
// any kind maps to one redirect target, the locale's backstage landing page.
// One synchronous check per request, no retry, no refresh.
func BackstageGate(logger *slog.Logger, validate TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !backstagePattern.MatchString(path) {
			c.Next()
			return
		}

		locale := "et"
		if strings.HasPrefix(path, "/en/") {
			locale = "en"
		}

		token, err := c.Cookie("access_token")
		if err == nil && token != "" {
			if _, err := validate(token); err == nil {
				c.Next()
				return
			} else {
				logger.Info("backstage gate denied request", "path", path, "error", err)
			}
		}

		c.Redirect(http.StatusTemporaryRedirect, "/"+locale+"/backstage")
		c.Abort()
	}
}

// AuthMiddleware validates the cookie-held JWT for the JSON API, refreshing
// it through the hosted auth provider when expired, and stores the session
// claims in the request context.
func AuthMiddleware(supabaseClient *supabase.Client, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get JWT token from cookie
		token, err := c.Cookie("access_token")
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized access",
				"error":   "JWT token not found in cookie",
			})
			c.Abort()
			return
		}

		// Validate token using Supabase JWKS
		claims, err := helpers.ValidateToken(token)
		if err != nil {
			// Token validation failed, try to refresh
			refreshToken, refreshErr := c.Cookie("refresh_token")
			if refreshErr != nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"message": "Unauthorized access",
					"error":   err.Error(),
				})
				c.Abort()
				return
			}

			var tokenRes *types.TokenResponse
			tokenRes, refreshErr = supabaseClient.Auth.RefreshToken(refreshToken)
			if refreshErr != nil || tokenRes.AccessToken == "" {
				logger.Error("Token refresh failed", "error", refreshErr)
				c.JSON(http.StatusUnauthorized, gin.H{
					"message": "Unauthorized access",
					"error":   "Token expired and refresh failed",
				})
				c.Abort()
				return
			}

			logger.Info("Token refreshed successfully",
				"user_id", tokenRes.User.ID,
				"expires_in", tokenRes.ExpiresIn,
			)

			isProduction := os.Getenv("GIN_MODE") == "production"
			c.SetCookie(
				"access_token",
				tokenRes.AccessToken,
				tokenRes.ExpiresIn,
				"/",
				"", // let Gin pick current domain
				isProduction,
				true,
			)
			c.SetCookie(
				"refresh_token",
				tokenRes.RefreshToken,
				3600*24*30, // 30 days
				"/",
				"",
				isProduction,
				true,
			)

			token = tokenRes.AccessToken
			claims, err = helpers.ValidateToken(token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"message": "Unauthorized access",
					"error":   "Refreshed token validation failed",
				})
				c.Abort()
				return
			}
		}

		sessionClaims := &helpers.SessionClaims{
			CustomClaims: claims,
			UserID:       claims.Subject,
			Email:        claims.Email,
		}

		c.Set("user", sessionClaims)
		c.Next()
	}
}
