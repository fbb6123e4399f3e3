package source

import (
	"context"

	"trendflow/logger"
	"trendflow/youtube"
)

// TrendingIDs fetches the current most-popular chart as a bare ID set. The
// set is the label oracle for the run: membership marks a record trending.
// This must succeed before discovery starts, otherwise every label in the
// run would silently come out negative.
func TrendingIDs(ctx context.Context, api youtube.API) (map[string]struct{}, error) {
	ids, err := api.MostPopularIDs(ctx)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	logger.GetLogger().WithComponent("source.trending").
		WithFields(logger.Fields{"trending_ids": len(set)}).
		Info("trending label set collected")
	return set, nil
}
