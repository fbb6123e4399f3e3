package models

import "strconv"

// CountUnknown is written verbatim for like/comment counts the channel has
// hidden. Feature math clamps it to zero; the dataset keeps the sentinel.
const CountUnknown int64 = -1

// TrainingRecord is one row of the output dataset. Field order matches the
// CSV column order exactly.
type TrainingRecord struct {
	CollectionDate  string
	VideoID         string
	Title           string
	ChannelName     string
	UploadDate      string
	DurationSec     int
	SubscriberCount int64
	ViewCount       int64
	LikeCount       int64
	CommentCount    int64
	ViewVelocity    float64
	VPVRatio        float64
	EngagementRate  float64
	TopCommentsText string
	Keywords        string
	IsTrending      int
	SourceType      string
}

// Columns returns the dataset header in schema order. The order is part of
// the v1 file format and must not change without a version bump.
func Columns() []string {
	return []string{
		"collection_date", "video_id", "title", "channel_name", "upload_date",
		"duration_sec", "subscriber_count", "view_count", "like_count",
		"comment_count", "view_velocity", "vpv_ratio", "engagement_rate",
		"top_comments_text", "description_keywords", "is_trending_category",
		"source_type",
	}
}

// Row serializes the record in column order.
func (r TrainingRecord) Row() []string {
	return []string{
		r.CollectionDate,
		r.VideoID,
		r.Title,
		r.ChannelName,
		r.UploadDate,
		strconv.Itoa(r.DurationSec),
		strconv.FormatInt(r.SubscriberCount, 10),
		strconv.FormatInt(r.ViewCount, 10),
		strconv.FormatInt(r.LikeCount, 10),
		strconv.FormatInt(r.CommentCount, 10),
		strconv.FormatFloat(r.ViewVelocity, 'f', -1, 64),
		strconv.FormatFloat(r.VPVRatio, 'f', -1, 64),
		strconv.FormatFloat(r.EngagementRate, 'f', -1, 64),
		r.TopCommentsText,
		r.Keywords,
		strconv.Itoa(r.IsTrending),
		r.SourceType,
	}
}
