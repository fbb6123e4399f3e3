// Package youtube is the single place the pipeline touches the Data API v3.
// Every request authenticates with the key currently selected by the quota
// ledger and charges its cost after the response is observed.
package youtube

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"trendflow/config"
	"trendflow/logger"
	"trendflow/models"
	"trendflow/quota"
)

// Cost units per call type, as billed by the Data API.
const (
	CostList   = 1
	CostSearch = 100
)

// API is the surface the strategies and the record processor consume. Tests
// substitute fakes for it.
type API interface {
	MostPopular(ctx context.Context) ([]models.Video, error)
	MostPopularIDs(ctx context.Context) ([]string, error)
	Search(ctx context.Context, query string, publishedAfter time.Time, maxResults int) ([]string, error)
	VideosByID(ctx context.Context, ids []string) ([]models.Video, error)
	ChannelInfo(ctx context.Context, channelID string) (models.ChannelInfo, error)
	PlaylistItems(ctx context.Context, playlistID string, maxResults int) ([]string, error)
	TopComments(ctx context.Context, videoID string, maxResults int) ([]string, error)
}

// Client implements API against the real endpoint.
type Client struct {
	http    *resty.Client
	ledger  *quota.Ledger
	limiter *rate.Limiter
	region  string
	// category restricts mostPopular pages; region-wide when empty.
	category   string
	maxResults int
	log        *logger.Log
}

var _ API = (*Client)(nil)

// NewClient builds a client from the youtube section of the configuration.
func NewClient(cfg *config.Config, ledger *quota.Ledger) *Client {
	http := resty.New().
		SetBaseURL(cfg.YouTube.BaseURL).
		SetTimeout(cfg.YouTube.Timeout.Std()).
		SetHeader("User-Agent", fmt.Sprintf("%s/%s", cfg.Trendflow.Name, cfg.Trendflow.Version))

	return &Client{
		http:       http,
		ledger:     ledger,
		limiter:    rate.NewLimiter(rate.Limit(cfg.YouTube.RequestsPerSecond), 1),
		region:     cfg.YouTube.Region,
		category:   cfg.YouTube.CategoryID,
		maxResults: cfg.YouTube.MaxResults,
		log:        logger.GetLogger(),
	}
}

// get performs one authenticated call, charges its cost and decodes the
// payload into out. Transport failures and non-2xx statuses come back as
// plain errors; quota exhaustion comes back wrapping quota.ErrExhausted.
func (c *Client) get(ctx context.Context, path string, cost int, params map[string]string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	key, err := c.ledger.CurrentKey()
	if err != nil {
		return fmt.Errorf("selecting api key: %w", err)
	}

	log := c.log.WithComponent("youtube_client").WithFields(logger.Fields{"endpoint": path})

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("key", key).
		SetResult(out).
		Get(path)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", path, err)
	}

	logger.LogPerformanceEntry(log, "youtube_client", "api_request", time.Since(start), nil)
	logger.IncrementAPICall(cost)

	// The API bills rejected requests too, so charge before the status check.
	if chargeErr := c.ledger.Charge(cost); chargeErr != nil {
		return fmt.Errorf("charging %d units for %s: %w", cost, path, chargeErr)
	}

	if resp.IsError() {
		return fmt.Errorf("%s returned %s", path, resp.Status())
	}
	return nil
}

// MostPopular returns one full page of the mostPopular chart for the
// configured region and category.
func (c *Client) MostPopular(ctx context.Context) ([]models.Video, error) {
	var out videoListResponse
	err := c.get(ctx, "/videos", CostList, map[string]string{
		"part":            "snippet,statistics,contentDetails",
		"chart":           "mostPopular",
		"regionCode":      c.region,
		"videoCategoryId": c.category,
		"maxResults":      strconv.Itoa(c.maxResults),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

// MostPopularIDs returns only the identifiers of the mostPopular chart. Used
// by the label oracle; same cost class, leaner payload.
func (c *Client) MostPopularIDs(ctx context.Context) ([]string, error) {
	var out videoIDListResponse
	err := c.get(ctx, "/videos", CostList, map[string]string{
		"part":            "id",
		"chart":           "mostPopular",
		"regionCode":      c.region,
		"videoCategoryId": c.category,
		"maxResults":      strconv.Itoa(c.maxResults),
	}, &out)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

// Search runs a video search ordered by view count, window-limited to
// publishedAfter. This is the expensive call class.
func (c *Client) Search(ctx context.Context, query string, publishedAfter time.Time, maxResults int) ([]string, error) {
	var out searchListResponse
	err := c.get(ctx, "/search", CostSearch, map[string]string{
		"part":           "snippet",
		"q":              query,
		"type":           "video",
		"order":          "viewCount",
		"publishedAfter": publishedAfter.UTC().Format(time.RFC3339),
		"maxResults":     strconv.Itoa(maxResults),
	}, &out)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return ids, nil
}

// VideosByID hydrates identifiers with batched videos.list calls. The
// endpoint caps one call at 50 ids, so longer inputs cost one unit per
// chunk.
func (c *Client) VideosByID(ctx context.Context, ids []string) ([]models.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const chunkSize = 50

	var videos []models.Video
	for start := 0; start < len(ids); start += chunkSize {
		end := start + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		var out videoListResponse
		err := c.get(ctx, "/videos", CostList, map[string]string{
			"part": "snippet,statistics,contentDetails",
			"id":   strings.Join(ids[start:end], ","),
		}, &out)
		if err != nil {
			return videos, err
		}
		videos = append(videos, out.Items...)
	}
	return videos, nil
}

// ChannelInfo returns the subscriber count and uploads playlist of a
// channel.
func (c *Client) ChannelInfo(ctx context.Context, channelID string) (models.ChannelInfo, error) {
	var out channelListResponse
	err := c.get(ctx, "/channels", CostList, map[string]string{
		"part": "statistics,contentDetails",
		"id":   channelID,
	}, &out)
	if err != nil {
		return models.ChannelInfo{}, err
	}
	if len(out.Items) == 0 {
		return models.ChannelInfo{}, fmt.Errorf("channel %s not found", channelID)
	}

	item := out.Items[0]
	subs, _ := strconv.ParseInt(item.Statistics.SubscriberCount, 10, 64)
	return models.ChannelInfo{
		SubscriberCount:   subs,
		UploadsPlaylistID: item.ContentDetails.RelatedPlaylists.Uploads,
	}, nil
}

// PlaylistItems returns the newest video identifiers of a playlist.
func (c *Client) PlaylistItems(ctx context.Context, playlistID string, maxResults int) ([]string, error) {
	var out playlistItemListResponse
	err := c.get(ctx, "/playlistItems", CostList, map[string]string{
		"part":       "snippet",
		"playlistId": playlistID,
		"maxResults": strconv.Itoa(maxResults),
	}, &out)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		if id := item.Snippet.ResourceID.VideoID; id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// TopComments returns the display text of the top-ranked comment threads.
func (c *Client) TopComments(ctx context.Context, videoID string, maxResults int) ([]string, error) {
	var out commentThreadListResponse
	err := c.get(ctx, "/commentThreads", CostList, map[string]string{
		"part":       "snippet",
		"videoId":    videoID,
		"order":      "relevance",
		"maxResults": strconv.Itoa(maxResults),
	}, &out)
	if err != nil {
		return nil, err
	}
	comments := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		if text := item.Snippet.TopLevelComment.Snippet.TextDisplay; text != "" {
			comments = append(comments, text)
		}
	}
	return comments, nil
}
