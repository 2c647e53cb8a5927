package live

// Event kinds published to subscribers.
const (
	EventDisasterUpdated    = "disaster_updated"
	EventSocialMediaUpdated = "social_media_updated"
	EventResourcesUpdated   = "resources_updated"
)

// Event is one change notification. Delivery is fire-and-forget: no
// acknowledgment, no retry, no backlog for members who join after publish.
type Event struct {
	Kind    string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// SocialMediaUpdatedPayload announces a refreshed social signal batch.
type SocialMediaUpdatedPayload struct {
	DisasterID string `json:"disaster_id"`
	NewPosts   int    `json:"new_posts"`
	Alerts     int    `json:"alerts"`
}

// DisasterUpdatedPayload announces a disaster record change. Disaster is
// set on create/update; only DisasterID is carried on delete.
type DisasterUpdatedPayload struct {
	Action     string      `json:"action"`
	DisasterID string      `json:"disaster_id,omitempty"`
	Disaster   interface{} `json:"disaster,omitempty"`
}

// ResourcesUpdatedPayload announces a changed or queried resource set.
type ResourcesUpdatedPayload struct {
	DisasterID string      `json:"disaster_id"`
	Action     string      `json:"action,omitempty"`
	Resource   interface{} `json:"resource,omitempty"`
	Resources  interface{} `json:"resources,omitempty"`
	Query      interface{} `json:"query,omitempty"`
}
