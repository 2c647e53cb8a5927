// Package classifier scores social post content by urgency. Classification
// is a pure function of the content text so it can be recomputed on every
// fetch without any stored state.
package classifier

import (
	"sort"
	"strings"

	"github.com/disasterlabs/beacon/model"
)

// priorityKeywords denote urgency. Matching is case-insensitive substring
// containment; each keyword counts at most once.
var priorityKeywords = []string{
	"urgent", "sos", "emergency", "trapped", "help", "critical", "rescue", "dying", "stranded",
}

// rankOrder is the fixed total order used for display. Medium and low only
// arrive from pre-tagged sources that bypass classification; unknown tiers
// rank alongside normal.
var rankOrder = map[string]int{
	model.PriorityCritical: 0,
	model.PriorityHigh:     1,
	model.PriorityMedium:   2,
	model.PriorityNormal:   3,
	model.PriorityLow:      4,
}

// Classify maps content text to a priority tier by counting distinct
// urgency keywords: two or more means critical, exactly one means high.
func Classify(content string) string {
	lower := strings.ToLower(content)
	matched := 0
	for _, kw := range priorityKeywords {
		if strings.Contains(lower, kw) {
			matched++
		}
	}
	if matched >= 2 {
		return model.PriorityCritical
	}
	if matched == 1 {
		return model.PriorityHigh
	}
	return model.PriorityNormal
}

// Rank returns the sort rank of a priority tier.
func Rank(priority string) int {
	if r, ok := rankOrder[priority]; ok {
		return r
	}
	return rankOrder[model.PriorityNormal]
}

// SortByPriority orders posts by rank, most urgent first. The sort is
// stable: equal-priority posts retain their arrival order.
func SortByPriority(posts []model.SocialPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		return Rank(posts[i].ComputedPriority) < Rank(posts[j].ComputedPriority)
	})
}
