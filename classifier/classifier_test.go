package classifier

import (
	"testing"

	"github.com/disasterlabs/beacon/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	// "sos", "trapped" and "rescue" all match.
	assert.Equal(t, model.PriorityCritical, Classify("SOS trapped, need rescue now"))
	// No keyword matches at all.
	assert.Equal(t, model.PriorityNormal, Classify("Volunteers needed at shelter"))
	// Exactly one match: "urgent".
	assert.Equal(t, model.PriorityHigh, Classify("Urgent: water rising"))
	// Matching is case-insensitive.
	assert.Equal(t, model.PriorityHigh, Classify("EMERGENCY declared downtown"))
	assert.Equal(t, model.PriorityNormal, Classify(""))
}

func TestRank(t *testing.T) {
	assert.Equal(t, 0, Rank(model.PriorityCritical))
	assert.Equal(t, 1, Rank(model.PriorityHigh))
	assert.Equal(t, 2, Rank(model.PriorityMedium))
	assert.Equal(t, 3, Rank(model.PriorityNormal))
	assert.Equal(t, 4, Rank(model.PriorityLow))
	// Unknown tiers rank as normal.
	assert.Equal(t, 3, Rank("whatever"))
}

func TestSortByPriorityIsStable(t *testing.T) {
	posts := []model.SocialPost{
		{Id: "a", ComputedPriority: model.PriorityNormal},
		{Id: "b", ComputedPriority: model.PriorityCritical},
		{Id: "c", ComputedPriority: model.PriorityHigh},
		{Id: "d", ComputedPriority: model.PriorityCritical},
	}

	SortByPriority(posts)

	ids := []string{}
	for _, p := range posts {
		ids = append(ids, p.Id)
	}
	// The two criticals keep their relative input order.
	assert.Empty(t, cmp.Diff([]string{"b", "d", "c", "a"}, ids))
}
