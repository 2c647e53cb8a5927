// Package collector implements the signal fetchers: adapters that pull
// volatile external data (social posts, official updates, geocoding, AI
// extraction and verification) and normalize failures into typed fallback
// values at the fetcher boundary.
package collector

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/disasterlabs/beacon/classifier"
	"github.com/disasterlabs/beacon/model"
	"github.com/disasterlabs/beacon/utils"
	Logger "github.com/disasterlabs/beacon/utils/log"
	"github.com/jinzhu/copier"
	"github.com/sirupsen/logrus"
)

// samplePosts simulates a Twitter/Bluesky firehose. There is no live social
// upstream in this design; the fetcher is a process-local generator that
// other fetchers' contracts are measured against.
var samplePosts = []model.SocialPost{
	{Id: "tw-001", Platform: "twitter", User: "citizen1", Handle: "@citizen1", Content: "#floodrelief Need food and water in Lower East Side, NYC. Road blocked!", Hashtags: []string{"#floodrelief", "#NYC"}, Urgency: "high"},
	{Id: "tw-002", Platform: "twitter", User: "rescueTeam5", Handle: "@rescueTeam5", Content: "Deploying rescue boats near Manhattan Bridge. #NYCFlood #rescue", Hashtags: []string{"#NYCFlood", "#rescue"}, Urgency: "medium"},
	{Id: "tw-003", Platform: "twitter", User: "weatherAlert", Handle: "@weatherAlert", Content: "URGENT: Flash flood warning for Manhattan area. Seek higher ground immediately! #SOS #flood", Hashtags: []string{"#SOS", "#flood"}, Urgency: "critical"},
	{Id: "tw-004", Platform: "bluesky", User: "volunteer_hub", Handle: "@volunteer_hub.bsky.social", Content: "Volunteer assembly point set up at PS 64, East Village. Come help! #volunteerNYC", Hashtags: []string{"#volunteerNYC"}, Urgency: "low"},
	{Id: "tw-005", Platform: "twitter", User: "NYCemergency", Handle: "@NYCemergency", Content: "Shelters open at: Brooklyn Tech HS, Javits Center, Barclays. #NYCFlood #shelter", Hashtags: []string{"#NYCFlood", "#shelter"}, Urgency: "high"},
	{Id: "tw-006", Platform: "twitter", User: "citizen_jane", Handle: "@citizen_jane", Content: "SOS! Trapped on 2nd floor, water rising fast. 123 Canal St, Manhattan. #floodhelp #urgent", Hashtags: []string{"#floodhelp", "#urgent"}, Urgency: "critical"},
	{Id: "tw-007", Platform: "bluesky", User: "redcross_nyc", Handle: "@redcross.bsky.social", Content: "Red Cross distributing blankets and food at Javits Center. Open 24/7. #disasterrelief", Hashtags: []string{"#disasterrelief"}, Urgency: "medium"},
	{Id: "tw-008", Platform: "twitter", User: "traffic_update", Handle: "@traffic_update", Content: "FDR Drive closed due to flooding from 23rd St to Canal St. Use alternate routes. #traffic #NYCFlood", Hashtags: []string{"#traffic", "#NYCFlood"}, Urgency: "medium"},
}

// SocialMediaFetcher produces ranked social posts for a disaster.
type SocialMediaFetcher struct{}

func NewSocialMediaFetcher() *SocialMediaFetcher {
	return &SocialMediaFetcher{}
}

// Fetch stamps the sample corpus with the disaster id, randomizes origin
// timestamps within the last hour, filters by tags (case-insensitive
// substring match against content) and returns the posts classified and
// stably sorted by priority.
func (f *SocialMediaFetcher) Fetch(ctx context.Context, disasterID string, tags []string) ([]model.SocialPost, error) {
	posts := []model.SocialPost{}
	if err := copier.Copy(&posts, &samplePosts); err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range posts {
		posts[i].DisasterID = disasterID
		posts[i].ComputedPriority = classifier.Classify(posts[i].Content)
		posts[i].Timestamp = now.Add(-time.Duration(rand.Int63n(int64(time.Hour))))
	}

	if len(tags) > 0 {
		filtered := []model.SocialPost{}
		for _, post := range posts {
			if matchesAnyTag(post.Content, tags) {
				filtered = append(filtered, post)
			}
		}
		posts = filtered
	}

	classifier.SortByPriority(posts)

	Logger.Log.WithFields(logrus.Fields{"disaster_id": disasterID}).
		Infof("social media fetched: %d posts", len(posts))
	return posts, nil
}

// alertPriorities are the tiers surfaced as actionable alerts.
var alertPriorities = []string{model.PriorityCritical, model.PriorityHigh}

// PriorityAlerts returns the critical and high tier subset of posts.
func PriorityAlerts(posts []model.SocialPost) []model.SocialPost {
	alerts := []model.SocialPost{}
	for _, post := range posts {
		if utils.ContainsString(alertPriorities, post.ComputedPriority) {
			alerts = append(alerts, post)
		}
	}
	return alerts
}

func matchesAnyTag(content string, tags []string) bool {
	lower := strings.ToLower(content)
	for _, tag := range tags {
		if strings.Contains(lower, strings.ToLower(tag)) {
			return true
		}
	}
	return false
}
