// Package server exposes the REST and websocket surface of the platform:
// record CRUD over the gorm store and the signal endpoints composed by the
// orchestrator.
package server

import (
	"net/http"
	"time"

	"github.com/disasterlabs/beacon/orchestrator"
	"github.com/disasterlabs/beacon/server/middlewares"
	"github.com/disasterlabs/beacon/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

const (
	// General API budget per identity and the tighter budget for endpoints
	// that reach expensive or rate-limited external services.
	apiLimit             = 100
	apiLimitWindow       = time.Minute
	externalApiLimit     = 10
	externalApiWindowDur = time.Minute
)

type Server struct {
	db           *gorm.DB
	orchestrator *orchestrator.Orchestrator
	upgrader     websocket.Upgrader
}

func NewServer(db *gorm.DB, orch *orchestrator.Orchestrator) *Server {
	return &Server{
		db:           db,
		orchestrator: orch,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The browser UI is served from arbitrary origins in deployments;
			// identity is resolved per-message path, not per-origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes wires all endpoint families onto the router.
func (s *Server) RegisterRoutes(router *gin.Engine, limiter *utils.RedisRateLimitStore) {
	apiLimiter := middlewares.RateLimit(limiter, "api", apiLimit, apiLimitWindow)
	externalLimiter := middlewares.RateLimit(limiter, "external", externalApiLimit, externalApiWindowDur)

	router.GET("/api/health", s.health)
	router.GET("/api/mock-social-media", s.sampleSocialMedia)
	router.GET("/ws", s.handleWebsocket)

	api := router.Group("/api", apiLimiter, middlewares.Identity())
	{
		api.POST("/disasters", s.createDisaster)
		api.GET("/disasters", s.listDisasters)
		api.GET("/disasters/:id", s.getDisaster)
		api.PUT("/disasters/:id", s.updateDisaster)
		api.DELETE("/disasters/:id", s.deleteDisaster)

		api.GET("/disasters/:id/social-media", s.getSocialMedia)
		api.GET("/disasters/:id/official-updates", externalLimiter, s.getOfficialUpdates)
		api.GET("/disasters/:id/resources", s.listDisasterResources)
		api.POST("/disasters/:id/verify-image", externalLimiter, s.verifyImage)

		api.POST("/geocode", externalLimiter, s.geocode)
		api.GET("/geocode/reverse", externalLimiter, s.reverseGeocode)

		api.POST("/reports", s.createReport)
		api.GET("/reports", s.listReports)

		api.POST("/resources", s.createResource)
		api.GET("/resources", s.listResources)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
}

func (s *Server) sampleSocialMedia(c *gin.Context) {
	posts, err := s.orchestrator.SampleSocialPosts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, posts)
}
