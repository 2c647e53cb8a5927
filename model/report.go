package model

import (
	"time"

	"gorm.io/gorm"
)

// Verification statuses a report moves through. Every report starts as
// pending; the image verifier writes one of the other three back.
const (
	VerificationPending      = "pending"
	VerificationVerified     = "verified"
	VerificationFake         = "fake"
	VerificationUnverifiable = "unverifiable"
)

// Report is a field report submitted by a contributor against a disaster.
type Report struct {
	Id                 string         `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time      `json:"created_at"`
	DeletedAt          gorm.DeletedAt `json:"-"`
	DisasterID         string         `gorm:"index" json:"disaster_id"`
	UserID             string         `json:"user_id"`
	Content            string         `json:"content"`
	ImageURL           string         `json:"image_url"`
	VerificationStatus string         `json:"verification_status"`
}
