package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*

Disaster is the primary record the platform coordinates around.

Id: primary key, uuid assigned on creation
Title: short human readable name, required
LocationName: free text place name, geocoded lazily
Description: long form description, used for AI location extraction
Tags: JSON array of free-form tags ("flood", "urgent", ...)
Latitude/Longitude: resolved coordinates, nullable until geocoded
OwnerID: the identity that created the record, checked on mutation
AuditTrail: append-only JSON list of AuditEntry, never rewritten

*/

type Disaster struct {
	Id           string         `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-"`
	Title        string         `json:"title"`
	LocationName string         `json:"location_name"`
	Description  string         `json:"description"`
	Tags         datatypes.JSON `json:"tags"`
	Latitude     *float64       `json:"latitude"`
	Longitude    *float64       `json:"longitude"`
	OwnerID      string         `json:"owner_id"`
	AuditTrail   datatypes.JSON `json:"audit_trail"`
}

// AuditEntry is one immutable action record in a disaster's audit trail.
type AuditEntry struct {
	Action    string    `json:"action"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// AppendAudit decodes the current trail, appends one entry and re-encodes.
// The trail is append-only: existing entries are never modified or dropped.
func (d *Disaster) AppendAudit(action string, userID string) error {
	var trail []AuditEntry
	if len(d.AuditTrail) > 0 {
		if err := json.Unmarshal(d.AuditTrail, &trail); err != nil {
			return err
		}
	}
	trail = append(trail, AuditEntry{Action: action, UserID: userID, Timestamp: time.Now()})
	encoded, err := json.Marshal(trail)
	if err != nil {
		return err
	}
	d.AuditTrail = datatypes.JSON(encoded)
	return nil
}

// TagList decodes the JSON tags column into a string slice, empty on null.
func (d *Disaster) TagList() []string {
	var tags []string
	if len(d.Tags) > 0 {
		json.Unmarshal(d.Tags, &tags)
	}
	return tags
}
