// Package collector orchestrates one collection run end to end: label
// collection, concurrent discovery, record processing, deduplication and
// the final dataset write.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	appconfig "trendflow/config"
	"trendflow/logger"
	"trendflow/models"
	"trendflow/processor"
	"trendflow/quota"
	"trendflow/source"
	"trendflow/writer"
	"trendflow/youtube"
)

type state string

const (
	stateIdle       state = "idle"
	stateLabels     state = "label_collection"
	stateDiscovery  state = "concurrent_discovery"
	stateProcessing state = "processing"
	stateDedup      state = "dedup"
	stateWrite      state = "write"
	stateDone       state = "done"
	stateFailed     state = "failed"
)

// Collector runs the daily pipeline. A single Collector can execute many
// runs, one at a time.
type Collector struct {
	config     *appconfig.Config
	api        youtube.API
	ledger     *quota.Ledger
	strategies []source.Strategy
	writer     *writer.DatasetWriter
	archiver   *writer.Archiver

	mu    sync.RWMutex
	state state
	log   *logger.Entry
}

// NewCollector wires the three discovery strategies in their fixed
// concatenation order: macro trend, keyword discovery, channel performance.
func NewCollector(cfg *appconfig.Config, api youtube.API, ledger *quota.Ledger) *Collector {
	return &Collector{
		config: cfg,
		api:    api,
		ledger: ledger,
		strategies: []source.Strategy{
			source.NewMacroTrend(api, cfg.Source.RelevanceTerms),
			source.NewKeywordDiscovery(api, cfg.Source.Keywords, cfg.Source.RelevanceTerms,
				cfg.Source.SearchWindowDays, cfg.Source.SearchResults),
			source.NewChannelPerformance(api, cfg.Source.WatchChannels, cfg.Source.RelevanceTerms,
				cfg.Source.RecentUploads),
		},
		writer: writer.NewDatasetWriter(cfg),
		state:  stateIdle,
		log:    logger.GetLogger().WithComponent("collector"),
	}
}

// SetArchiver attaches an S3 archiver for finished datasets.
func (c *Collector) SetArchiver(a *writer.Archiver) { c.archiver = a }

// State reports the current pipeline phase.
func (c *Collector) State() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return string(c.state)
}

func (c *Collector) setState(s state) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.log.WithFields(logger.Fields{"state": string(s)}).Debug("pipeline state changed")
}

// Run executes one full collection for the given target date. It returns
// stats even on failure so callers can report partial progress. Only quota
// exhaustion and dataset write errors abort a run; everything else degrades.
func (c *Collector) Run(ctx context.Context, runDate time.Time) (*models.CollectionStats, error) {
	stats := &models.CollectionStats{
		RunID:      uuid.New().String(),
		TargetDate: runDate.Format("2006-01-02"),
		StartTime:  time.Now(),
	}
	log := c.log.WithFields(logger.Fields{
		"run_id":      stats.RunID,
		"target_date": stats.TargetDate,
	})
	log.Info("collection run starting")

	err := c.run(ctx, runDate, stats, log)

	stats.EndTime = time.Now()
	stats.QuotaUsed = c.ledger.Used()
	if err != nil {
		c.setState(stateFailed)
		log.WithError(err).WithFields(logger.Fields{
			"quota_used": stats.QuotaUsed,
			"errors":     stats.ErrorCount,
		}).Error("collection run failed")
		return stats, err
	}

	c.setState(stateDone)
	c.logSummary(stats, log)
	return stats, nil
}

func (c *Collector) run(ctx context.Context, runDate time.Time, stats *models.CollectionStats, log *logger.Entry) error {
	// Label collection. Without the trending set every label comes out
	// negative, so exhaustion here is fatal; other failures degrade to an
	// unlabeled run.
	c.setState(stateLabels)
	trending, err := source.TrendingIDs(ctx, c.api)
	if err != nil {
		if errors.Is(err, quota.ErrExhausted) || ctx.Err() != nil {
			return fmt.Errorf("label collection: %w", err)
		}
		log.WithError(err).Warn("label collection failed, labels degrade to negative")
		stats.ErrorCount++
		trending = map[string]struct{}{}
	}

	c.setState(stateDiscovery)
	raws, err := c.discover(ctx, stats, log)
	if err != nil {
		return err
	}
	stats.RawCollected = len(raws)

	c.setState(stateProcessing)
	vocabulary := append(append([]string{}, c.relevanceTerms()...), c.keywords()...)
	proc := processor.NewRecordProcessor(c.api, trending, vocabulary, c.config.Collector.MaxComments)

	records := make([]models.TrainingRecord, 0, len(raws))
	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			return err
		}
		record, ok := proc.Process(ctx, raw, stats.TargetDate)
		if !ok {
			stats.ErrorCount++
			continue
		}
		records = append(records, record)
	}

	c.setState(stateDedup)
	records = processor.Dedupe(records)
	if c.config.Collector.EnableValidation {
		records = c.validate(records, stats, log)
	}
	stats.Processed = len(records)

	var views, engagement float64
	for _, rec := range records {
		if rec.IsTrending == 1 {
			stats.TrendingCount++
		}
		views += float64(rec.ViewCount)
		engagement += rec.EngagementRate
	}
	if n := len(records); n > 0 {
		log.WithFields(logger.Fields{
			"records":        n,
			"trending":       stats.TrendingCount,
			"trending_share": float64(stats.TrendingCount) / float64(n),
			"avg_views":      views / float64(n),
			"avg_engagement": engagement / float64(n),
		}).Info("dataset summary")
	}

	c.setState(stateWrite)
	if len(records) == 0 {
		log.Warn("no records collected, skipping dataset write")
		return nil
	}

	path, size, err := c.writer.WriteCSV(records, runDate)
	if err != nil {
		return fmt.Errorf("dataset write: %w", err)
	}
	stats.CSVFilePath = path
	stats.FileSizeBytes = size

	if c.config.Writer.Parquet.Enabled {
		if _, err := c.writer.WriteParquet(records, runDate); err != nil {
			log.WithError(err).Warn("parquet mirror failed")
			stats.ErrorCount++
		}
	}
	if c.archiver != nil {
		if err := c.archiver.Archive(ctx, path, runDate); err != nil {
			log.WithError(err).Warn("s3 archive failed")
			stats.ErrorCount++
		}
	}
	return nil
}

// discover fans the strategies out as goroutines and concatenates their
// results in the fixed strategy order. A failed strategy contributes
// whatever it gathered before failing; quota exhaustion aborts the run.
func (c *Collector) discover(ctx context.Context, stats *models.CollectionStats, log *logger.Entry) ([]models.RawVideo, error) {
	results := make([][]models.RawVideo, len(c.strategies))
	errs := make([]error, len(c.strategies))

	var wg sync.WaitGroup
	for i, strategy := range c.strategies {
		wg.Add(1)
		go func(i int, s source.Strategy) {
			defer wg.Done()
			results[i], errs[i] = s.Collect(ctx)
		}(i, strategy)
	}
	wg.Wait()

	var raws []models.RawVideo
	for i, strategy := range c.strategies {
		raws = append(raws, results[i]...)
		if errs[i] == nil {
			continue
		}
		if errors.Is(errs[i], quota.ErrExhausted) {
			return nil, fmt.Errorf("discovery %s: %w", strategy.Name(), errs[i])
		}
		log.WithError(errs[i]).WithFields(logger.Fields{"strategy": strategy.Name()}).Warn("discovery strategy failed")
		stats.ErrorCount++
	}
	return raws, nil
}

// validate drops records that would poison the dataset: no identifier or a
// negative view count.
func (c *Collector) validate(records []models.TrainingRecord, stats *models.CollectionStats, log *logger.Entry) []models.TrainingRecord {
	valid := records[:0]
	for _, rec := range records {
		if rec.VideoID == "" || rec.ViewCount < 0 {
			stats.ErrorCount++
			continue
		}
		valid = append(valid, rec)
	}
	if dropped := len(records) - len(valid); dropped > 0 {
		log.WithFields(logger.Fields{"dropped": dropped}).Warn("validation dropped records")
	}
	return valid
}

func (c *Collector) logSummary(stats *models.CollectionStats, log *logger.Entry) {
	log.WithFields(logger.Fields{
		"raw_collected":    stats.RawCollected,
		"records_written":  stats.Processed,
		"trending_records": stats.TrendingCount,
		"quota_used":       stats.QuotaUsed,
		"quota_remaining":  c.ledger.Remaining(),
		"errors":           stats.ErrorCount,
		"csv_path":         stats.CSVFilePath,
		"file_size":        stats.FileSizeBytes,
		"duration":         stats.EndTime.Sub(stats.StartTime).String(),
	}).Info("collection run complete")
}

func (c *Collector) relevanceTerms() []string {
	if len(c.config.Source.RelevanceTerms) > 0 {
		return c.config.Source.RelevanceTerms
	}
	return source.DefaultRelevanceTerms
}

func (c *Collector) keywords() []string {
	if len(c.config.Source.Keywords) > 0 {
		return c.config.Source.Keywords
	}
	return source.DefaultKeywords
}
