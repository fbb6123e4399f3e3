// Package processor turns raw hydrated videos into training records:
// normalization, feature math, best-effort enrichment and deduplication.
package processor

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"trendflow/logger"
	"trendflow/models"
	"trendflow/youtube"
)

// RecordProcessor converts one RawVideo into one TrainingRecord. Enrichment
// lookups (subscriber count, top comments) are best-effort: their failure
// degrades the record, never the batch.
type RecordProcessor struct {
	api         youtube.API
	trending    map[string]struct{}
	vocabulary  []string
	maxComments int
	now         func() time.Time
	log         *logger.Log
}

// NewRecordProcessor builds a processor. trending is the label oracle's
// identifier set, written once before processing starts and read-only here.
// vocabulary is the union of relevance terms and search keywords used for
// keyword extraction.
func NewRecordProcessor(api youtube.API, trending map[string]struct{}, vocabulary []string, maxComments int) *RecordProcessor {
	return &RecordProcessor{
		api:         api,
		trending:    trending,
		vocabulary:  vocabulary,
		maxComments: maxComments,
		now:         time.Now,
		log:         logger.GetLogger(),
	}
}

// Process builds the training record for one raw video. The second return
// is false when the item must be skipped; a skip never aborts the batch.
func (p *RecordProcessor) Process(ctx context.Context, raw models.RawVideo, runDate string) (models.TrainingRecord, bool) {
	log := p.log.WithComponent("record_processor").WithFields(logger.Fields{"video_id": raw.ID})

	if raw.ID == "" {
		log.Debug("skipping item without identifier")
		return models.TrainingRecord{}, false
	}

	viewCount := parseCount(raw.Statistics.ViewCount, 0)
	likeCount := parseCount(raw.Statistics.LikeCount, models.CountUnknown)
	commentCount := parseCount(raw.Statistics.CommentCount, models.CountUnknown)

	subscriberCount := p.subscriberCount(ctx, raw.Snippet.ChannelID)

	uploadDate := ""
	if !raw.Snippet.PublishedAt.IsZero() {
		uploadDate = raw.Snippet.PublishedAt.UTC().Format(time.RFC3339)
	}

	record := models.TrainingRecord{
		CollectionDate:  runDate,
		VideoID:         raw.ID,
		Title:           Sanitize(raw.Snippet.Title),
		ChannelName:     Sanitize(raw.Snippet.ChannelTitle),
		UploadDate:      uploadDate,
		DurationSec:     ParseDuration(raw.ContentDetails.Duration),
		SubscriberCount: subscriberCount,
		ViewCount:       viewCount,
		LikeCount:       likeCount,
		CommentCount:    commentCount,
		ViewVelocity:    ViewVelocity(viewCount, raw.Snippet.PublishedAt, p.now()),
		VPVRatio:        PopularityRatio(viewCount, subscriberCount),
		EngagementRate:  EngagementRate(viewCount, likeCount, commentCount),
		TopCommentsText: p.topComments(ctx, raw.ID),
		Keywords:        ExtractKeywords(raw.Snippet.Description, p.vocabulary),
		SourceType:      raw.Source,
	}
	if _, ok := p.trending[raw.ID]; ok {
		record.IsTrending = 1
	}
	return record, true
}

// subscriberCount resolves the channel's subscriber count; any failure
// yields zero.
func (p *RecordProcessor) subscriberCount(ctx context.Context, channelID string) int64 {
	if channelID == "" {
		return 0
	}
	info, err := p.api.ChannelInfo(ctx, channelID)
	if err != nil {
		p.log.WithComponent("record_processor").WithFields(logger.Fields{
			"channel_id": channelID,
		}).WithError(err).Debug("subscriber lookup failed")
		return 0
	}
	return info.SubscriberCount
}

// topComments fetches and sanitizes the top-ranked comments, pipe-joined;
// any failure yields the empty string.
func (p *RecordProcessor) topComments(ctx context.Context, videoID string) string {
	raw, err := p.api.TopComments(ctx, videoID, p.maxComments)
	if err != nil {
		p.log.WithComponent("record_processor").WithFields(logger.Fields{
			"video_id": videoID,
		}).WithError(err).Debug("comment lookup failed")
		return ""
	}
	cleaned := make([]string, 0, len(raw))
	for _, comment := range raw {
		if c := Sanitize(comment); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return strings.Join(cleaned, "|")
}

// ExtractKeywords returns the vocabulary terms occurring in the description
// as a comma-joined, deduplicated, sorted list. Matching is case-insensitive
// substring search.
func ExtractKeywords(description string, vocabulary []string) string {
	if description == "" {
		return ""
	}
	lower := strings.ToLower(description)
	found := make(map[string]struct{})
	for _, term := range vocabulary {
		if term == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(term)) {
			found[term] = struct{}{}
		}
	}
	if len(found) == 0 {
		return ""
	}
	keywords := make([]string, 0, len(found))
	for term := range found {
		keywords = append(keywords, term)
	}
	sort.Strings(keywords)
	return strings.Join(keywords, ", ")
}

// parseCount interprets a Data API counter string. Absent counters map to
// the provided default so hidden counts stay distinguishable from zero.
func parseCount(raw string, absent int64) int64 {
	if raw == "" {
		return absent
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return absent
	}
	return n
}
