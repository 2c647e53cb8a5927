package model

import "time"

// Priority tiers for social posts. Critical and high are computed by the
// classifier; medium and low only ever arrive pre-tagged from sources that
// bypass classification (official accounts, volunteer hubs).
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityNormal   = "normal"
	PriorityLow      = "low"
)

// SocialPost is one social media post associated with a disaster.
//
// ComputedPriority is a pure function of Content at classification time. It
// is recomputed on every fetch rather than persisted, so it can never go
// stale relative to the content that produced it.
type SocialPost struct {
	Id               string    `json:"id"`
	Platform         string    `json:"platform"`
	User             string    `json:"user"`
	Handle           string    `json:"handle"`
	Content          string    `json:"content"`
	Hashtags         []string  `json:"hashtags"`
	Timestamp        time.Time `json:"timestamp"`
	Urgency          string    `json:"urgency"`
	DisasterID       string    `json:"disaster_id"`
	ComputedPriority string    `json:"computed_priority"`
}

// SocialFeed is the composed social media response returned to callers and
// written through the cache.
type SocialFeed struct {
	Posts          []SocialPost `json:"posts"`
	PriorityAlerts []SocialPost `json:"priority_alerts"`
	Total          int          `json:"total"`
	AlertCount     int          `json:"alert_count"`
}
