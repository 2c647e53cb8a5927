// Package orchestrator composes the cache coordinator, the signal fetchers,
// the classifier and the notification fanout into the per-request pipelines
// exposed to the transport layer. Each pipeline is cache-or-fetch: derive a
// deterministic key, try the shared cache, fetch on miss, write back with
// the signal-specific TTL, then publish to the disaster's room when the
// operation carries live updates.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disasterlabs/beacon/alerts"
	"github.com/disasterlabs/beacon/cache"
	"github.com/disasterlabs/beacon/collector"
	"github.com/disasterlabs/beacon/live"
	"github.com/disasterlabs/beacon/model"
	"github.com/disasterlabs/beacon/utils"
	Logger "github.com/disasterlabs/beacon/utils/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	socialMediaTTL     = 5 * time.Minute
	officialUpdatesTTL = time.Hour
	verifyImageTTL     = time.Hour

	// Extraction keys hash a bounded prefix of the source text so long
	// descriptions still produce stable, bounded keys.
	extractKeyPrefixLen = 100

	defaultResourceRadiusMeters = 10000
)

// Malformed input is the one failure class rejected before any external
// call is attempted.
var (
	ErrMissingGeocodeInput = errors.New("provide either description or location_name")
	ErrMissingImageURL     = errors.New("image_url is required")
	ErrMissingDisasterID   = errors.New("disaster id is required")
)

// SocialFetcher produces ranked social posts for a disaster.
type SocialFetcher interface {
	Fetch(ctx context.Context, disasterID string, tags []string) ([]model.SocialPost, error)
}

// OfficialFetcher aggregates official agency updates; it is total and
// always returns a non-empty list.
type OfficialFetcher interface {
	Fetch(ctx context.Context, disasterID string) []model.OfficialUpdate
}

// GeocodeFetcher resolves place names, nil on no match.
type GeocodeFetcher interface {
	Geocode(ctx context.Context, locationName string) *model.GeocodeResult
	ReverseGeocode(ctx context.Context, lat float64, lng float64) *model.ReverseGeocodeResult
}

// Analyzer is the AI adapter for location extraction and image
// verification.
type Analyzer interface {
	ExtractLocations(ctx context.Context, description string) []string
	VerifyImage(ctx context.Context, imageURL string, contextText string) model.VerificationResult
}

// RecordStore is the read/update surface the orchestrator needs from the
// primary entity store.
type RecordStore interface {
	GetDisaster(ctx context.Context, id string) (*model.Disaster, error)
	UpdateReportVerification(ctx context.Context, reportID string, status string) error
	NearbyResources(ctx context.Context, disasterID string, lat float64, lng float64, radiusMeters float64) ([]model.Resource, error)
}

// Orchestrator owns the subscriber registry and fetcher wiring for the
// lifetime of the process; construct it once at startup.
type Orchestrator struct {
	cache    *cache.Coordinator
	social   SocialFetcher
	official OfficialFetcher
	geocoder GeocodeFetcher
	analyzer Analyzer
	records  RecordStore
	rooms    *live.RoomChannels
	notifier alerts.Notifier
}

func New(
	cacheCoordinator *cache.Coordinator,
	social SocialFetcher,
	official OfficialFetcher,
	geocoder GeocodeFetcher,
	analyzer Analyzer,
	records RecordStore,
	rooms *live.RoomChannels,
) *Orchestrator {
	return &Orchestrator{
		cache:    cacheCoordinator,
		social:   social,
		official: official,
		geocoder: geocoder,
		analyzer: analyzer,
		records:  records,
		rooms:    rooms,
	}
}

// WithNotifier attaches an optional priority alert notifier.
func (o *Orchestrator) WithNotifier(notifier alerts.Notifier) *Orchestrator {
	o.notifier = notifier
	return o
}

// Rooms exposes the subscriber registry to the realtime transport.
func (o *Orchestrator) Rooms() *live.RoomChannels {
	return o.rooms
}

func socialMediaCacheKey(disasterID string, tags []string) string {
	normalized := []string{}
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	tagsKey := "all"
	if len(normalized) > 0 {
		tagsKey = strings.Join(normalized, ",")
	}
	return fmt.Sprintf("social_media:%s:%s", disasterID, tagsKey)
}

// SocialMedia returns the ranked social feed for a disaster, serving from
// cache within the 5 minute TTL. A social_media_updated event is published
// on every call regardless of cache state, so subscribers track read
// activity as well as refreshes.
func (o *Orchestrator) SocialMedia(ctx context.Context, disasterID string, tags []string) (*model.SocialFeed, error) {
	if disasterID == "" {
		return nil, ErrMissingDisasterID
	}

	key := socialMediaCacheKey(disasterID, tags)

	var feed model.SocialFeed
	if !o.cache.Get(ctx, key, &feed) {
		posts, err := o.social.Fetch(ctx, disasterID, tags)
		if err != nil {
			return nil, errors.Wrap(err, "fetch social media")
		}
		alertPosts := collector.PriorityAlerts(posts)
		feed = model.SocialFeed{
			Posts:          posts,
			PriorityAlerts: alertPosts,
			Total:          len(posts),
			AlertCount:     len(alertPosts),
		}
		// Write-back uses a detached context: a caller that disconnects
		// mid-fetch still benefits future callers.
		o.cache.Set(context.Background(), key, &feed, socialMediaTTL)

		if o.notifier != nil {
			go o.notifier.NotifyPriorityPosts(disasterID, alertPosts)
		}
	}

	o.rooms.Publish(disasterID, &live.Event{
		Kind: live.EventSocialMediaUpdated,
		Payload: live.SocialMediaUpdatedPayload{
			DisasterID: disasterID,
			NewPosts:   feed.Total,
			Alerts:     feed.AlertCount,
		},
	})

	Logger.Log.WithFields(logrus.Fields{"disaster_id": disasterID, "posts": feed.Total, "alerts": feed.AlertCount}).
		Info("social media feed served")
	return &feed, nil
}

// OfficialUpdates returns aggregated agency updates, cached for an hour.
// This is an idempotent read: no fanout.
func (o *Orchestrator) OfficialUpdates(ctx context.Context, disasterID string) ([]model.OfficialUpdate, error) {
	if disasterID == "" {
		return nil, ErrMissingDisasterID
	}

	key := fmt.Sprintf("official_updates:%s", disasterID)

	var updates []model.OfficialUpdate
	if o.cache.Get(ctx, key, &updates) {
		Logger.Log.WithFields(logrus.Fields{"disaster_id": disasterID}).
			Info("official updates served from cache")
		return updates, nil
	}

	updates = o.official.Fetch(ctx, disasterID)
	o.cache.Set(context.Background(), key, updates, officialUpdatesTTL)
	return updates, nil
}

func extractCacheKey(description string) string {
	prefix := description
	if len(prefix) > extractKeyPrefixLen {
		prefix = prefix[:extractKeyPrefixLen]
	}
	// Hashing keeps the key printable even when the byte cap lands inside
	// a multibyte rune.
	hashed, err := utils.TextToMd5Hash(prefix)
	if err != nil {
		hashed = prefix
	}
	return fmt.Sprintf("gemini_extract:%s", hashed)
}

// GeocodeDescription resolves coordinates for a request carrying either a
// direct location name or a free text description to run extraction on.
// Extraction results and per-name geocodes are cached independently, and
// only cached when non-empty so transient upstream failures are retried.
func (o *Orchestrator) GeocodeDescription(ctx context.Context, description string, locationName string) ([]model.LocatedPlace, error) {
	if description == "" && locationName == "" {
		return nil, ErrMissingGeocodeInput
	}

	var locations []string
	if locationName != "" {
		locations = []string{locationName}
	} else {
		key := extractCacheKey(description)
		if !o.cache.Get(ctx, key, &locations) {
			locations = o.analyzer.ExtractLocations(ctx, description)
			if len(locations) > 0 {
				o.cache.Set(context.Background(), key, locations, cache.DefaultTTL)
			}
		}
	}

	results := []model.LocatedPlace{}
	for _, loc := range locations {
		geoKey := fmt.Sprintf("geocode:%s", loc)
		var geoResult *model.GeocodeResult
		if !o.cache.Get(ctx, geoKey, &geoResult) || geoResult == nil {
			geoResult = o.geocoder.Geocode(ctx, loc)
			if geoResult != nil {
				o.cache.Set(context.Background(), geoKey, geoResult, cache.DefaultTTL)
			}
		}
		results = append(results, model.LocatedPlace{LocationName: loc, Coordinates: geoResult})
	}

	Logger.Log.Infof("geocoding completed for %d locations", len(results))
	return results, nil
}

// VerifyImage runs AI verification for a report image, cached by image URL
// for an hour. The result is always a complete record; when the
// verification is freshly computed and a report id was supplied, the
// report's verification status is updated through the record store.
func (o *Orchestrator) VerifyImage(ctx context.Context, disasterID string, reportID string, imageURL string) (*model.VerificationResult, error) {
	if imageURL == "" {
		return nil, ErrMissingImageURL
	}

	key := fmt.Sprintf("verify_image:%s", imageURL)

	var verification model.VerificationResult
	if o.cache.Get(ctx, key, &verification) {
		return &verification, nil
	}

	contextText := ""
	if disaster, err := o.records.GetDisaster(ctx, disasterID); err == nil && disaster != nil {
		contextText = fmt.Sprintf("Disaster: %s. %s", disaster.Title, disaster.Description)
	}

	verification = o.analyzer.VerifyImage(ctx, imageURL, contextText)

	if reportID != "" {
		if err := o.records.UpdateReportVerification(ctx, reportID, verification.VerificationStatus); err != nil {
			Logger.Log.Errorf("failed to update report %s verification status: %v", reportID, err)
		} else {
			Logger.Log.WithFields(logrus.Fields{"report_id": reportID, "status": verification.VerificationStatus}).
				Info("report verification updated")
		}
	}

	o.cache.Set(context.Background(), key, &verification, verifyImageTTL)
	return &verification, nil
}

// NearbyResources runs the geospatial resource lookup and re-publishes a
// resources_updated event on every call so map views stay current.
func (o *Orchestrator) NearbyResources(ctx context.Context, disasterID string, lat float64, lng float64, radiusMeters float64) ([]model.Resource, error) {
	if disasterID == "" {
		return nil, ErrMissingDisasterID
	}
	if radiusMeters <= 0 {
		radiusMeters = defaultResourceRadiusMeters
	}

	resources, err := o.records.NearbyResources(ctx, disasterID, lat, lng, radiusMeters)
	if err != nil {
		return nil, errors.Wrap(err, "nearby resources lookup")
	}

	o.rooms.Publish(disasterID, &live.Event{
		Kind: live.EventResourcesUpdated,
		Payload: live.ResourcesUpdatedPayload{
			DisasterID: disasterID,
			Resources:  resources,
			Query:      map[string]float64{"lat": lat, "lon": lng, "radius": radiusMeters},
		},
	})

	Logger.Log.WithFields(logrus.Fields{"disaster_id": disasterID}).
		Infof("found %d resources near (%f, %f)", len(resources), lat, lng)
	return resources, nil
}

// SampleSocialPosts serves the uncached, unfiltered simulated feed used by
// the public sample endpoint.
func (o *Orchestrator) SampleSocialPosts(ctx context.Context) ([]model.SocialPost, error) {
	return o.social.Fetch(ctx, "mock", nil)
}

// ReverseGeocode proxies the companion reverse lookup, nil on failure.
func (o *Orchestrator) ReverseGeocode(ctx context.Context, lat float64, lng float64) *model.ReverseGeocodeResult {
	return o.geocoder.ReverseGeocode(ctx, lat, lng)
}
