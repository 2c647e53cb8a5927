package orchestrator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/disasterlabs/beacon/cache"
	"github.com/disasterlabs/beacon/live"
	"github.com/disasterlabs/beacon/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

type memStore struct {
	entries map[string]memEntry
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]memEntry{}}
}

func (s *memStore) Select(ctx context.Context, key string) ([]byte, time.Time, error) {
	entry, ok := s.entries[key]
	if !ok {
		return nil, time.Time{}, cache.ErrNotFound
	}
	return entry.value, entry.expiresAt, nil
}

func (s *memStore) Upsert(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	s.entries[key] = memEntry{value: value, expiresAt: expiresAt}
	return nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
	delete(s.entries, key)
	return nil
}

type fakeSocial struct {
	calls int
	posts []model.SocialPost
}

func (f *fakeSocial) Fetch(ctx context.Context, disasterID string, tags []string) ([]model.SocialPost, error) {
	f.calls++
	return f.posts, nil
}

type fakeOfficial struct {
	calls   int
	updates []model.OfficialUpdate
}

func (f *fakeOfficial) Fetch(ctx context.Context, disasterID string) []model.OfficialUpdate {
	f.calls++
	return f.updates
}

type fakeGeocoder struct {
	calls   int
	results map[string]*model.GeocodeResult
}

func (f *fakeGeocoder) Geocode(ctx context.Context, locationName string) *model.GeocodeResult {
	f.calls++
	return f.results[locationName]
}

func (f *fakeGeocoder) ReverseGeocode(ctx context.Context, lat float64, lng float64) *model.ReverseGeocodeResult {
	return nil
}

type fakeAnalyzer struct {
	extractCalls int
	verifyCalls  int
	locations    []string
	verification model.VerificationResult
}

func (f *fakeAnalyzer) ExtractLocations(ctx context.Context, description string) []string {
	f.extractCalls++
	return f.locations
}

func (f *fakeAnalyzer) VerifyImage(ctx context.Context, imageURL string, contextText string) model.VerificationResult {
	f.verifyCalls++
	return f.verification
}

type fakeRecords struct {
	disaster      *model.Disaster
	resources     []model.Resource
	reportUpdates map[string]string
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{reportUpdates: map[string]string{}}
}

func (f *fakeRecords) GetDisaster(ctx context.Context, id string) (*model.Disaster, error) {
	return f.disaster, nil
}

func (f *fakeRecords) UpdateReportVerification(ctx context.Context, reportID string, status string) error {
	f.reportUpdates[reportID] = status
	return nil
}

func (f *fakeRecords) NearbyResources(ctx context.Context, disasterID string, lat float64, lng float64, radiusMeters float64) ([]model.Resource, error) {
	return f.resources, nil
}

type fixture struct {
	orchestrator *Orchestrator
	social       *fakeSocial
	official     *fakeOfficial
	geocoder     *fakeGeocoder
	analyzer     *fakeAnalyzer
	records      *fakeRecords
	rooms        *live.RoomChannels
}

func newFixture() *fixture {
	social := &fakeSocial{posts: []model.SocialPost{
		{Id: "p1", Content: "SOS trapped", ComputedPriority: model.PriorityCritical},
		{Id: "p2", Content: "shelter open", ComputedPriority: model.PriorityNormal},
	}}
	official := &fakeOfficial{updates: []model.OfficialUpdate{{Source: "FEMA", Title: "t"}}}
	geocoder := &fakeGeocoder{results: map[string]*model.GeocodeResult{
		"Manhattan": {Lat: 40.7, Lng: -74.0, DisplayName: "Manhattan"},
	}}
	analyzer := &fakeAnalyzer{
		locations:    []string{"Manhattan"},
		verification: model.VerificationResult{Confidence: "high", VerificationStatus: model.VerificationVerified},
	}
	records := newFakeRecords()
	rooms := live.NewRoomChannels()

	return &fixture{
		orchestrator: New(cache.NewCoordinator(newMemStore()), social, official, geocoder, analyzer, records, rooms),
		social:       social,
		official:     official,
		geocoder:     geocoder,
		analyzer:     analyzer,
		records:      records,
		rooms:        rooms,
	}
}

func TestSocialMediaCachesButAlwaysPublishes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ch, _ := f.rooms.Join(ctx, "d1")

	first, err := f.orchestrator.SocialMedia(ctx, "d1", nil)
	require.Nil(t, err)
	assert.Equal(t, 2, first.Total)
	assert.Equal(t, 1, first.AlertCount)
	assert.Equal(t, 1, f.social.calls)

	second, err := f.orchestrator.SocialMedia(ctx, "d1", nil)
	require.Nil(t, err)
	assert.Equal(t, first.Total, second.Total)
	// Cache hit: the fetcher is not re-invoked.
	assert.Equal(t, 1, f.social.calls)

	// But the event is re-published on every call.
	assert.Len(t, ch, 2)
	event := <-ch
	assert.Equal(t, live.EventSocialMediaUpdated, event.Kind)
}

func TestSocialMediaKeyVariesWithTags(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.orchestrator.SocialMedia(ctx, "d1", nil)
	require.Nil(t, err)
	_, err = f.orchestrator.SocialMedia(ctx, "d1", []string{"flood"})
	require.Nil(t, err)
	// Different tag sets are cached under different keys.
	assert.Equal(t, 2, f.social.calls)

	assert.Equal(t, "social_media:d1:all", socialMediaCacheKey("d1", nil))
	assert.Equal(t, "social_media:d1:flood,shelter", socialMediaCacheKey("d1", []string{" flood", "shelter "}))
}

func TestSocialMediaRequiresDisasterID(t *testing.T) {
	f := newFixture()
	_, err := f.orchestrator.SocialMedia(context.Background(), "", nil)
	assert.Equal(t, ErrMissingDisasterID, err)
	assert.Equal(t, 0, f.social.calls)
}

func TestOfficialUpdatesCachedAndSilent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ch, _ := f.rooms.Join(ctx, "d1")

	_, err := f.orchestrator.OfficialUpdates(ctx, "d1")
	require.Nil(t, err)
	_, err = f.orchestrator.OfficialUpdates(ctx, "d1")
	require.Nil(t, err)

	assert.Equal(t, 1, f.official.calls)
	// Idempotent read: no fanout.
	assert.Len(t, ch, 0)
}

func TestGeocodeRequiresInput(t *testing.T) {
	f := newFixture()
	_, err := f.orchestrator.GeocodeDescription(context.Background(), "", "")
	assert.Equal(t, ErrMissingGeocodeInput, err)
}

func TestGeocodeDirectNameSkipsExtraction(t *testing.T) {
	f := newFixture()

	results, err := f.orchestrator.GeocodeDescription(context.Background(), "", "Manhattan")
	require.Nil(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Manhattan", results[0].LocationName)
	require.NotNil(t, results[0].Coordinates)
	assert.Equal(t, 40.7, results[0].Coordinates.Lat)
	assert.Equal(t, 0, f.analyzer.extractCalls)
}

func TestGeocodeDescriptionCachesExtractionAndLookups(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.orchestrator.GeocodeDescription(ctx, "flooding in Manhattan", "")
	require.Nil(t, err)
	_, err = f.orchestrator.GeocodeDescription(ctx, "flooding in Manhattan", "")
	require.Nil(t, err)

	assert.Equal(t, 1, f.analyzer.extractCalls)
	assert.Equal(t, 1, f.geocoder.calls)
}

func TestExtractCacheKeyHashesBoundedPrefix(t *testing.T) {
	long := strings.Repeat("a", extractKeyPrefixLen)
	// Text beyond the prefix cap does not change the key.
	assert.Equal(t, extractCacheKey(long), extractCacheKey(long+"tail"))
	assert.NotEqual(t, extractCacheKey("uptown"), extractCacheKey("downtown"))

	// A multibyte rune straddling the byte cap still yields a clean hex key.
	straddling := strings.Repeat("a", extractKeyPrefixLen-1) + "é flooding"
	assert.Regexp(t, `^gemini_extract:[0-9a-f]{32}$`, extractCacheKey(straddling))
}

func TestGeocodeNoMatchIsNullNotError(t *testing.T) {
	f := newFixture()
	f.analyzer.locations = []string{"Atlantis"}

	results, err := f.orchestrator.GeocodeDescription(context.Background(), "lost city of Atlantis", "")
	require.Nil(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Coordinates)

	// Failed lookups are not cached; the next call retries.
	_, err = f.orchestrator.GeocodeDescription(context.Background(), "lost city of Atlantis", "")
	require.Nil(t, err)
	assert.Equal(t, 2, f.geocoder.calls)
}

func TestGeocodeEmptyExtractionNotCached(t *testing.T) {
	f := newFixture()
	f.analyzer.locations = []string{}

	results, err := f.orchestrator.GeocodeDescription(context.Background(), "no places here", "")
	require.Nil(t, err)
	assert.Empty(t, results)

	_, err = f.orchestrator.GeocodeDescription(context.Background(), "no places here", "")
	require.Nil(t, err)
	assert.Equal(t, 2, f.analyzer.extractCalls)
}

func TestVerifyImageRequiresURL(t *testing.T) {
	f := newFixture()
	_, err := f.orchestrator.VerifyImage(context.Background(), "d1", "", "")
	assert.Equal(t, ErrMissingImageURL, err)
}

func TestVerifyImageUpdatesReportAndCaches(t *testing.T) {
	f := newFixture()
	f.records.disaster = &model.Disaster{Id: "d1", Title: "NYC Flood", Description: "severe flooding"}
	ctx := context.Background()

	result, err := f.orchestrator.VerifyImage(ctx, "d1", "r1", "https://img.example/a.jpg")
	require.Nil(t, err)
	assert.Equal(t, model.VerificationVerified, result.VerificationStatus)
	assert.Equal(t, model.VerificationVerified, f.records.reportUpdates["r1"])
	assert.Equal(t, 1, f.analyzer.verifyCalls)

	// Cached by image URL: no second model call, no second report write.
	delete(f.records.reportUpdates, "r1")
	result, err = f.orchestrator.VerifyImage(ctx, "d1", "r1", "https://img.example/a.jpg")
	require.Nil(t, err)
	assert.Equal(t, model.VerificationVerified, result.VerificationStatus)
	assert.Equal(t, 1, f.analyzer.verifyCalls)
	assert.Empty(t, f.records.reportUpdates)
}

func TestNearbyResourcesPublishesEveryCall(t *testing.T) {
	f := newFixture()
	f.records.resources = []model.Resource{{Id: "res1", Name: "Shelter"}}
	ctx := context.Background()
	ch, _ := f.rooms.Join(ctx, "d1")

	_, err := f.orchestrator.NearbyResources(ctx, "d1", 40.7, -74.0, 0)
	require.Nil(t, err)
	_, err = f.orchestrator.NearbyResources(ctx, "d1", 40.7, -74.0, 5000)
	require.Nil(t, err)

	require.Len(t, ch, 2)
	event := <-ch
	assert.Equal(t, live.EventResourcesUpdated, event.Kind)
}

func TestHaversineMeters(t *testing.T) {
	// Identical points are zero distance.
	assert.InDelta(t, 0, haversineMeters(40.7, -74.0, 40.7, -74.0), 0.001)
	// One degree of latitude is roughly 111km.
	assert.InDelta(t, 111000, haversineMeters(40.0, -74.0, 41.0, -74.0), 1500)
}
