package source

import (
	"context"

	"trendflow/logger"
	"trendflow/models"
	"trendflow/youtube"
)

// MacroTrend pulls the region-wide most-popular chart for the configured
// category and keeps the videos matching the relevance vocabulary.
type MacroTrend struct {
	api        youtube.API
	vocabulary []string
	log        *logger.Entry
}

func NewMacroTrend(api youtube.API, vocabulary []string) *MacroTrend {
	if len(vocabulary) == 0 {
		vocabulary = DefaultRelevanceTerms
	}
	return &MacroTrend{
		api:        api,
		vocabulary: vocabulary,
		log:        logger.GetLogger().WithComponent("source.macro"),
	}
}

func (s *MacroTrend) Name() string { return models.SourceMacroTrend }

func (s *MacroTrend) Collect(ctx context.Context) ([]models.RawVideo, error) {
	videos, err := s.api.MostPopular(ctx)
	if err != nil {
		return nil, err
	}

	raws := make([]models.RawVideo, 0, len(videos))
	for _, v := range videos {
		if !Relevant(v, s.vocabulary) {
			continue
		}
		raws = append(raws, models.RawVideo{Video: v, Source: s.Name()})
	}

	s.log.WithFields(logger.Fields{
		"chart": len(videos),
		"kept":  len(raws),
	}).Info("macro trend collection complete")
	logger.IncrementVideosCollected(len(raws))
	return raws, nil
}
