package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/K-AMeus/kluub/internal/helpers"
	"github.com/gin-gonic/gin"
)

func newGateRouter(validate TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(BackstageGate(logger, validate))
	router.GET("/*path", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func acceptAll(token string) (*helpers.CustomClaims, error) {
	return &helpers.CustomClaims{}, nil
}

func rejectAll(token string) (*helpers.CustomClaims, error) {
	return nil, fmt.Errorf("invalid token")
}

func TestBackstageGateRedirectsWithoutSession(t *testing.T) {
	router := newGateRouter(rejectAll)

	req := httptest.NewRequest(http.MethodGet, "/en/backstage/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/en/backstage" {
		t.Errorf("expected redirect to /en/backstage, got %q", loc)
	}
}

func TestBackstageGateLocaleRedirect(t *testing.T) {
	router := newGateRouter(rejectAll)

	req := httptest.NewRequest(http.MethodGet, "/et/backstage/events/new", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/et/backstage" {
		t.Errorf("expected redirect to /et/backstage, got %q", loc)
	}
}

func TestBackstageGatePassesValidSession(t *testing.T) {
	router := newGateRouter(acceptAll)

	req := httptest.NewRequest(http.MethodGet, "/en/backstage/events", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "token"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestBackstageGateRejectsInvalidToken(t *testing.T) {
	router := newGateRouter(rejectAll)

	req := httptest.NewRequest(http.MethodGet, "/en/backstage/events", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "expired"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Invalid and absent sessions map to the same redirect target.
	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected 307, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/en/backstage" {
		t.Errorf("expected redirect to /en/backstage, got %q", loc)
	}
}

func TestBackstageGateIgnoresUnprotectedPaths(t *testing.T) {
	router := newGateRouter(rejectAll)

	for _, path := range []string{
		"/en/events",
		"/en/backstage", // landing page itself is open
		"/et/backstage",
		"/api/v1/events/TARTU",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected %s to pass the gate, got %d", path, w.Code)
		}
	}
}
