package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/disasterlabs/beacon/orchestrator"
	"github.com/gin-gonic/gin"
)

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

func (s *Server) getSocialMedia(c *gin.Context) {
	feed, err := s.orchestrator.SocialMedia(c.Request.Context(), c.Param("id"), splitTags(c.Query("tags")))
	if err == orchestrator.ErrMissingDisasterID {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (s *Server) getOfficialUpdates(c *gin.Context) {
	updates, err := s.orchestrator.OfficialUpdates(c.Request.Context(), c.Param("id"))
	if err == orchestrator.ErrMissingDisasterID {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updates)
}

type geocodeInput struct {
	Description  string `json:"description"`
	LocationName string `json:"location_name"`
}

func (s *Server) geocode(c *gin.Context) {
	var input geocodeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON in request body"})
		return
	}

	locations, err := s.orchestrator.GeocodeDescription(c.Request.Context(), input.Description, input.LocationName)
	if err == orchestrator.ErrMissingGeocodeInput {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(locations) == 0 {
		c.JSON(http.StatusOK, gin.H{"locations": locations, "message": "No locations found in description"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

func (s *Server) reverseGeocode(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon are required numbers"})
		return
	}

	result := s.orchestrator.ReverseGeocode(c.Request.Context(), lat, lon)
	c.JSON(http.StatusOK, gin.H{"address": result})
}

type verifyImageInput struct {
	ReportID string `json:"report_id"`
	ImageURL string `json:"image_url"`
}

func (s *Server) verifyImage(c *gin.Context) {
	var input verifyImageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON in request body"})
		return
	}

	verification, err := s.orchestrator.VerifyImage(c.Request.Context(), c.Param("id"), input.ReportID, input.ImageURL)
	if err == orchestrator.ErrMissingImageURL {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, verification)
}
