package processor

import "time"

// Derived-feature formulas. All three are total: they return finite
// non-negative values for every input, including sentinel counts.

// ViewVelocity is views per hour since publication. Zero when the upload
// time is unknown, in the future or equal to now (clock skew must not
// produce infinities).
func ViewVelocity(viewCount int64, publishedAt, now time.Time) float64 {
	if publishedAt.IsZero() {
		return 0.0
	}
	hours := now.Sub(publishedAt).Hours()
	if hours <= 0 {
		return 0.0
	}
	return float64(viewCount) / hours
}

// PopularityRatio (VPV) is views per subscriber; zero for channels with no
// reported subscribers.
func PopularityRatio(viewCount, subscriberCount int64) float64 {
	if subscriberCount <= 0 {
		return 0.0
	}
	return float64(viewCount) / float64(subscriberCount)
}

// EngagementRate is (likes + comments) per view. Sentinel counts (-1,
// meaning "not reported") contribute zero; videos without views score zero.
func EngagementRate(viewCount, likeCount, commentCount int64) float64 {
	if viewCount <= 0 {
		return 0.0
	}
	likes := likeCount
	if likes < 0 {
		likes = 0
	}
	comments := commentCount
	if comments < 0 {
		comments = 0
	}
	return float64(likes+comments) / float64(viewCount)
}
