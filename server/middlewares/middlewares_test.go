package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdentityRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Identity())
	router.GET("/whoami", func(c *gin.Context) {
		user := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": user.Id, "role": user.Role})
	})
	router.GET("/admin", AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func doRequest(router *gin.Engine, path string, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if userID != "" {
		req.Header.Set(userIDHeader, userID)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestIdentityDefaultsToContributor(t *testing.T) {
	router := newIdentityRouter()
	recorder := doRequest(router, "/whoami", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"id":"citizen1"`)
	assert.Contains(t, recorder.Body.String(), `"role":"contributor"`)
}

func TestIdentityResolvesKnownUser(t *testing.T) {
	router := newIdentityRouter()
	recorder := doRequest(router, "/whoami", "netrunnerX")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"role":"admin"`)
}

func TestIdentityRejectsUnknownUser(t *testing.T) {
	router := newIdentityRouter()
	recorder := doRequest(router, "/whoami", "not-a-user")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAdminOnly(t *testing.T) {
	router := newIdentityRouter()
	assert.Equal(t, http.StatusForbidden, doRequest(router, "/admin", "citizen1").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "/admin", "reliefAdmin").Code)
}

func TestRateLimitNilStoreAllows(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(nil, "api", 1, time.Minute))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, "/", "").Code)
	}
}
