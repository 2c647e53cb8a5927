package model

import (
	"time"

	"gorm.io/gorm"
)

// Resource is a mapped relief resource (shelter, food distribution point,
// medical station, ...) tied to a disaster.
type Resource struct {
	Id           string         `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `json:"-"`
	DisasterID   string         `gorm:"index" json:"disaster_id"`
	Name         string         `json:"name"`
	LocationName string         `json:"location_name"`
	Type         string         `json:"type"`
	Latitude     *float64       `json:"latitude"`
	Longitude    *float64       `json:"longitude"`

	// DistanceMeters is only populated by geospatial queries, never stored.
	DistanceMeters float64 `gorm:"-" json:"distance_meters,omitempty"`
}
