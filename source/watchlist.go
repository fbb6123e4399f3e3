package source

import (
	"context"
	"errors"

	"trendflow/logger"
	"trendflow/models"
	"trendflow/quota"
	"trendflow/youtube"
)

// ChannelPerformance walks the monitored channels, resolves each channel's
// uploads playlist, and hydrates its most recent uploads. Unreachable
// channels are logged and skipped.
type ChannelPerformance struct {
	api           youtube.API
	channels      []string
	vocabulary    []string
	recentUploads int
	log           *logger.Entry
}

func NewChannelPerformance(api youtube.API, channels, vocabulary []string, recentUploads int) *ChannelPerformance {
	if len(channels) == 0 {
		channels = DefaultWatchChannels
	}
	if len(vocabulary) == 0 {
		vocabulary = DefaultRelevanceTerms
	}
	return &ChannelPerformance{
		api:           api,
		channels:      channels,
		vocabulary:    vocabulary,
		recentUploads: recentUploads,
		log:           logger.GetLogger().WithComponent("source.watchlist"),
	}
}

func (s *ChannelPerformance) Name() string { return models.SourceChannelPerformance }

func (s *ChannelPerformance) Collect(ctx context.Context) ([]models.RawVideo, error) {
	var raws []models.RawVideo
	for _, channelID := range s.channels {
		if err := ctx.Err(); err != nil {
			return raws, err
		}

		videos, err := s.collectChannel(ctx, channelID)
		if err != nil {
			if errors.Is(err, quota.ErrExhausted) {
				return raws, err
			}
			s.log.WithError(err).WithFields(logger.Fields{"channel_id": channelID}).Warn("channel collection failed, skipping")
			continue
		}

		for _, v := range videos {
			if !Relevant(v, s.vocabulary) {
				continue
			}
			raws = append(raws, models.RawVideo{Video: v, Source: s.Name()})
		}
	}

	s.log.WithFields(logger.Fields{"channels": len(s.channels), "videos": len(raws)}).Info("channel performance collection complete")
	logger.IncrementVideosCollected(len(raws))
	return raws, nil
}

func (s *ChannelPerformance) collectChannel(ctx context.Context, channelID string) ([]models.Video, error) {
	info, err := s.api.ChannelInfo(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if info.UploadsPlaylistID == "" {
		s.log.WithFields(logger.Fields{"channel_id": channelID}).Warn("channel has no uploads playlist")
		return nil, nil
	}

	ids, err := s.api.PlaylistItems(ctx, info.UploadsPlaylistID, s.recentUploads)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.api.VideosByID(ctx, ids)
}
