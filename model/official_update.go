package model

import "time"

// OfficialUpdate is one item extracted from an official agency source
// (press release page or relief feed).
type OfficialUpdate struct {
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	DisasterID  string    `json:"disaster_id"`
	Type        string    `json:"type,omitempty"`
}
