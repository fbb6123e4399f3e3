package source

import (
	"context"
	"errors"
	"time"

	"trendflow/logger"
	"trendflow/models"
	"trendflow/quota"
	"trendflow/youtube"
)

// KeywordDiscovery runs one search per configured keyword over a recent
// publication window, hydrates the hits, and keeps the relevant ones. A
// failed keyword is logged and skipped; quota exhaustion aborts the whole
// strategy since every remaining search would fail the same way.
type KeywordDiscovery struct {
	api        youtube.API
	keywords   []string
	vocabulary []string
	windowDays int
	maxResults int
	now        func() time.Time
	log        *logger.Entry
}

func NewKeywordDiscovery(api youtube.API, keywords, vocabulary []string, windowDays, maxResults int) *KeywordDiscovery {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	if len(vocabulary) == 0 {
		vocabulary = DefaultRelevanceTerms
	}
	return &KeywordDiscovery{
		api:        api,
		keywords:   keywords,
		vocabulary: vocabulary,
		windowDays: windowDays,
		maxResults: maxResults,
		now:        time.Now,
		log:        logger.GetLogger().WithComponent("source.keyword"),
	}
}

func (s *KeywordDiscovery) Name() string { return models.SourceKeywordDiscovery }

func (s *KeywordDiscovery) Collect(ctx context.Context) ([]models.RawVideo, error) {
	publishedAfter := s.now().UTC().AddDate(0, 0, -s.windowDays)

	var raws []models.RawVideo
	for _, keyword := range s.keywords {
		if err := ctx.Err(); err != nil {
			return raws, err
		}

		ids, err := s.api.Search(ctx, keyword, publishedAfter, s.maxResults)
		if err != nil {
			if errors.Is(err, quota.ErrExhausted) {
				return raws, err
			}
			s.log.WithError(err).WithFields(logger.Fields{"keyword": keyword}).Warn("keyword search failed, skipping")
			continue
		}
		if len(ids) == 0 {
			continue
		}

		videos, err := s.api.VideosByID(ctx, ids)
		if err != nil {
			if errors.Is(err, quota.ErrExhausted) {
				return raws, err
			}
			s.log.WithError(err).WithFields(logger.Fields{"keyword": keyword}).Warn("keyword hydration failed, skipping")
			continue
		}

		kept := 0
		for _, v := range videos {
			if !Relevant(v, s.vocabulary) {
				continue
			}
			raws = append(raws, models.RawVideo{Video: v, Source: s.Name(), Keyword: keyword})
			kept++
		}
		s.log.WithFields(logger.Fields{"keyword": keyword, "hits": len(ids), "kept": kept}).Debug("keyword searched")
	}

	s.log.WithFields(logger.Fields{"keywords": len(s.keywords), "videos": len(raws)}).Info("keyword discovery complete")
	logger.IncrementVideosCollected(len(raws))
	return raws, nil
}
