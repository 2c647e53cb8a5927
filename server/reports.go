package server

import (
	"net/http"

	"github.com/disasterlabs/beacon/model"
	"github.com/disasterlabs/beacon/server/middlewares"
	Logger "github.com/disasterlabs/beacon/utils/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type reportInput struct {
	DisasterID string `json:"disaster_id"`
	Content    string `json:"content"`
	ImageURL   string `json:"image_url"`
}

func (s *Server) createReport(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var input reportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON in request body"})
		return
	}
	if input.DisasterID == "" || input.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "disaster_id and content are required"})
		return
	}

	// Confirm the disaster exists before accepting the report.
	var disaster model.Disaster
	res := s.db.WithContext(c.Request.Context()).Select("id").Where("id = ?", input.DisasterID).First(&disaster)
	if res.Error == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Disaster not found"})
		return
	}
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}

	report := model.Report{
		Id:                 uuid.New().String(),
		DisasterID:         input.DisasterID,
		UserID:             user.Id,
		Content:            input.Content,
		ImageURL:           input.ImageURL,
		VerificationStatus: model.VerificationPending,
	}
	if err := s.db.WithContext(c.Request.Context()).Create(&report).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	Logger.Log.WithFields(logrus.Fields{"report_id": report.Id, "user": user.Id}).
		Infof("report submitted for disaster %s", input.DisasterID)
	c.JSON(http.StatusCreated, report)
}

func (s *Server) listReports(c *gin.Context) {
	query := s.db.WithContext(c.Request.Context()).Model(&model.Report{}).Order("created_at DESC")
	if disasterID := c.Query("disaster_id"); disasterID != "" {
		query = query.Where("disaster_id = ?", disasterID)
	}

	var reports []model.Report
	if err := query.Find(&reports).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reports)
}
