package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goldspin/casino-backend/internal/config"
	"github.com/goldspin/casino-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
)

func newIntakeRouter(serviceKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Jackpot.ServiceAPIKey = serviceKey

	router := gin.New()
	router.POST("/wagers", middleware.ServiceAuthMiddleware(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestServiceAuthAcceptsMatchingKey(t *testing.T) {
	router := newIntakeRouter("intake-secret")

	req := httptest.NewRequest(http.MethodPost, "/wagers", nil)
	req.Header.Set("X-Service-Key", "intake-secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServiceAuthRejectsMissingKey(t *testing.T) {
	router := newIntakeRouter("intake-secret")

	req := httptest.NewRequest(http.MethodPost, "/wagers", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServiceAuthRejectsWrongKey(t *testing.T) {
	router := newIntakeRouter("intake-secret")

	req := httptest.NewRequest(http.MethodPost, "/wagers", nil)
	req.Header.Set("X-Service-Key", "guessed-secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServiceAuthClosesIntakeWhenUnconfigured(t *testing.T) {
	router := newIntakeRouter("")

	req := httptest.NewRequest(http.MethodPost, "/wagers", nil)
	req.Header.Set("X-Service-Key", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
