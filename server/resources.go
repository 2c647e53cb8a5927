package server

import (
	"net/http"
	"strconv"

	"github.com/disasterlabs/beacon/live"
	"github.com/disasterlabs/beacon/model"
	Logger "github.com/disasterlabs/beacon/utils/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type resourceInput struct {
	DisasterID   string   `json:"disaster_id"`
	Name         string   `json:"name"`
	LocationName string   `json:"location_name"`
	Type         string   `json:"type"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// listDisasterResources serves the geospatial lookup when coordinates are
// provided, otherwise all of the disaster's resources newest first.
func (s *Server) listDisasterResources(c *gin.Context) {
	disasterID := c.Param("id")
	latStr, lonStr := c.Query("lat"), c.Query("lon")

	if latStr != "" && lonStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr != nil || lonErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon must be numbers"})
			return
		}
		radius, _ := strconv.ParseFloat(c.Query("radius"), 64)

		resources, err := s.orchestrator.NearbyResources(c.Request.Context(), disasterID, lat, lon, radius)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resources)
		return
	}

	var resources []model.Resource
	err := s.db.WithContext(c.Request.Context()).
		Where("disaster_id = ?", disasterID).
		Order("created_at DESC").
		Find(&resources).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resources)
}

// listResources serves the flat resource list, optionally filtered by
// disaster or type.
func (s *Server) listResources(c *gin.Context) {
	query := s.db.WithContext(c.Request.Context()).Order("created_at DESC")
	if disasterID := c.Query("disaster_id"); disasterID != "" {
		query = query.Where("disaster_id = ?", disasterID)
	}
	if resourceType := c.Query("type"); resourceType != "" {
		query = query.Where("type = ?", resourceType)
	}

	var resources []model.Resource
	if err := query.Find(&resources).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resources)
}

func (s *Server) createResource(c *gin.Context) {
	var input resourceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON in request body"})
		return
	}
	if input.DisasterID == "" || input.Name == "" || input.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "disaster_id, name, and type are required"})
		return
	}

	resource := model.Resource{
		Id:           uuid.New().String(),
		DisasterID:   input.DisasterID,
		Name:         input.Name,
		LocationName: input.LocationName,
		Type:         input.Type,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
	}
	if err := s.db.WithContext(c.Request.Context()).Create(&resource).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	Logger.Log.WithFields(logrus.Fields{"type": resource.Type, "disaster_id": resource.DisasterID}).
		Infof("resource mapped: %s at %s", resource.Name, resource.LocationName)

	s.orchestrator.Rooms().Publish(resource.DisasterID, &live.Event{
		Kind: live.EventResourcesUpdated,
		Payload: live.ResourcesUpdatedPayload{
			DisasterID: resource.DisasterID,
			Action:     "created",
			Resource:   resource,
		},
	})

	c.JSON(http.StatusCreated, resource)
}
