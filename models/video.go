package models

import "time"

// Source tags identify which discovery strategy produced a video.
const (
	SourceMacroTrend         = "macro_trend"
	SourceKeywordDiscovery   = "keyword_discovery"
	SourceChannelPerformance = "channel_performance"
)

// Snippet holds the descriptive part of a video resource.
type Snippet struct {
	PublishedAt  time.Time `json:"publishedAt"`
	ChannelID    string    `json:"channelId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ChannelTitle string    `json:"channelTitle"`
	Tags         []string  `json:"tags"`
}

// Statistics holds the public counters of a video resource. The Data API
// serializes counts as quoted digit strings and omits fields the channel
// has hidden, so absence is distinguishable from zero.
type Statistics struct {
	ViewCount    string `json:"viewCount"`
	LikeCount    string `json:"likeCount"`
	CommentCount string `json:"commentCount"`
}

// ContentDetails carries the ISO-8601 duration token (e.g. "PT4M13S").
type ContentDetails struct {
	Duration string `json:"duration"`
}

// Video is a hydrated video resource as returned by videos.list.
type Video struct {
	ID             string         `json:"id"`
	Snippet        Snippet        `json:"snippet"`
	Statistics     Statistics     `json:"statistics"`
	ContentDetails ContentDetails `json:"contentDetails"`
}

// RawVideo is a hydrated video plus collection provenance. It lives only
// for the duration of one run.
type RawVideo struct {
	Video
	Source string
	// Keyword is the search term that surfaced the video. Provenance only:
	// the dataset's keyword column is extracted from the description, not
	// from here.
	Keyword string
}

// ChannelInfo is the subset of a channel resource the pipeline needs.
type ChannelInfo struct {
	SubscriberCount   int64
	UploadsPlaylistID string
}
