// Package source holds the discovery strategies that find candidate videos
// for one collection run. Strategies are independent of each other: any of
// them may fail without aborting its siblings, and only quota exhaustion is
// allowed to escape to the orchestrator.
package source

import (
	"context"
	"strings"

	"trendflow/models"
)

// Strategy discovers raw videos and tags them with its own name.
type Strategy interface {
	Name() string
	Collect(ctx context.Context) ([]models.RawVideo, error)
}

// DefaultKeywords drive the keyword-discovery searches.
var DefaultKeywords = []string{
	"Korean Skincare", "Glass Skin", "K-Beauty Routine",
	"Korean Beauty", "Korean Makeup", "Korean Cosmetics",
	"Tirtir", "Biodance", "Anua", "COSRX", "Some By Mi",
	"Beauty of Joseon", "Torriden", "Round Lab",
}

// DefaultRelevanceTerms decide whether a discovered video belongs in the
// dataset at all.
var DefaultRelevanceTerms = []string{
	"makeup", "skincare", "beauty", "routine", "review",
	"tutorial", "haul", "unboxing", "korean", "k-beauty",
	"serum", "toner", "moisturizer", "cleanser", "sunscreen",
}

// DefaultWatchChannels are the monitored creator channels.
var DefaultWatchChannels = []string{
	"UCdKuE7a2QZeHPhDntXVZ91w", // James Welsh
	"UCQhwBjjWuLrcE0tJOjq4rKw", // Gothamista
	"UC2sYit3cZ2B04MGgy0It6dQ", // Liah Yoo
	"UCsyn_0Fx8w8eZlASIUkamBg", // Hyram
	"UCBJycsmduvYEL83R_U4JriQ", // Mixed Makeup
}

// Relevant reports whether any vocabulary term occurs as a case-insensitive
// substring of the video's title, description or tags.
func Relevant(video models.Video, vocabulary []string) bool {
	var b strings.Builder
	b.WriteString(video.Snippet.Title)
	b.WriteByte(' ')
	b.WriteString(video.Snippet.Description)
	for _, tag := range video.Snippet.Tags {
		b.WriteByte(' ')
		b.WriteString(tag)
	}
	haystack := strings.ToLower(b.String())

	for _, term := range vocabulary {
		if term == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
