package model

import (
	"time"

	"gorm.io/datatypes"
)

// CacheEntry is one row of the shared cache table. The table is the only
// cache layer in the system: no in-process copy exists, so entries survive
// restarts and are shared across horizontally scaled instances.
type CacheEntry struct {
	Key       string         `gorm:"primaryKey;size:512" json:"key"`
	Value     datatypes.JSON `json:"value"`
	ExpiresAt time.Time      `gorm:"index" json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
