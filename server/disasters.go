package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/disasterlabs/beacon/live"
	"github.com/disasterlabs/beacon/model"
	"github.com/disasterlabs/beacon/server/middlewares"
	Logger "github.com/disasterlabs/beacon/utils/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type disasterInput struct {
	Title        string   `json:"title"`
	LocationName string   `json:"location_name"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

func encodeTags(tags []string) datatypes.JSON {
	if tags == nil {
		tags = []string{}
	}
	encoded, _ := json.Marshal(tags)
	return datatypes.JSON(encoded)
}

func (s *Server) createDisaster(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var input disasterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON in request body"})
		return
	}
	if input.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	disaster := model.Disaster{
		Id:           uuid.New().String(),
		Title:        input.Title,
		LocationName: input.LocationName,
		Description:  input.Description,
		Tags:         encodeTags(input.Tags),
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		OwnerID:      user.Id,
	}
	if err := disaster.AppendAudit("created", user.Id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := s.db.WithContext(c.Request.Context()).Create(&disaster).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	Logger.Log.WithFields(logrus.Fields{"id": disaster.Id, "owner": user.Id}).
		Infof("disaster created: %s", disaster.Title)

	s.orchestrator.Rooms().Broadcast(&live.Event{
		Kind:    live.EventDisasterUpdated,
		Payload: live.DisasterUpdatedPayload{Action: "created", Disaster: disaster},
	})

	c.JSON(http.StatusCreated, disaster)
}

func (s *Server) listDisasters(c *gin.Context) {
	query := s.db.WithContext(c.Request.Context()).Model(&model.Disaster{}).Order("created_at DESC")

	if tag := c.Query("tag"); tag != "" {
		query = query.Where("tags::jsonb @> ?", fmt.Sprintf(`["%s"]`, tag))
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if owner := c.Query("owner"); owner != "" {
		query = query.Where("owner_id = ?", owner)
	}

	var disasters []model.Disaster
	if err := query.Find(&disasters).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, disasters)
}

func (s *Server) getDisaster(c *gin.Context) {
	var disaster model.Disaster
	res := s.db.WithContext(c.Request.Context()).Where("id = ?", c.Param("id")).First(&disaster)
	if res.Error == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Disaster not found"})
		return
	}
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	c.JSON(http.StatusOK, disaster)
}

func (s *Server) updateDisaster(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var disaster model.Disaster
	res := s.db.WithContext(c.Request.Context()).Where("id = ?", c.Param("id")).First(&disaster)
	if res.Error == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Disaster not found"})
		return
	}
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}

	if disaster.OwnerID != user.Id && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to update this disaster"})
		return
	}

	var input disasterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON in request body"})
		return
	}

	if input.Title != "" {
		disaster.Title = input.Title
	}
	if input.LocationName != "" {
		disaster.LocationName = input.LocationName
	}
	if input.Description != "" {
		disaster.Description = input.Description
	}
	if input.Tags != nil {
		disaster.Tags = encodeTags(input.Tags)
	}
	if input.Latitude != nil && input.Longitude != nil {
		disaster.Latitude = input.Latitude
		disaster.Longitude = input.Longitude
	}
	if err := disaster.AppendAudit("updated", user.Id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := s.db.WithContext(c.Request.Context()).Save(&disaster).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	Logger.Log.WithFields(logrus.Fields{"id": disaster.Id, "user": user.Id}).
		Infof("disaster updated: %s", disaster.Title)

	s.orchestrator.Rooms().Broadcast(&live.Event{
		Kind:    live.EventDisasterUpdated,
		Payload: live.DisasterUpdatedPayload{Action: "updated", Disaster: disaster},
	})

	c.JSON(http.StatusOK, disaster)
}

func (s *Server) deleteDisaster(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var disaster model.Disaster
	res := s.db.WithContext(c.Request.Context()).Where("id = ?", c.Param("id")).First(&disaster)
	if res.Error == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Disaster not found"})
		return
	}
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}

	if disaster.OwnerID != user.Id && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this disaster"})
		return
	}

	if err := s.db.WithContext(c.Request.Context()).Delete(&disaster).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	Logger.Log.WithFields(logrus.Fields{"id": disaster.Id, "user": user.Id}).
		Infof("disaster deleted: %s", disaster.Title)

	s.orchestrator.Rooms().Broadcast(&live.Event{
		Kind:    live.EventDisasterUpdated,
		Payload: live.DisasterUpdatedPayload{Action: "deleted", DisasterID: disaster.Id},
	})

	c.JSON(http.StatusOK, gin.H{"message": "Disaster deleted successfully"})
}
