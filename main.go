package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trendflow/collector"
	"trendflow/config"
	"trendflow/logger"
	"trendflow/quota"
	"trendflow/writer"
	"trendflow/youtube"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	dateFlag := flag.String("date", "", "Collect for a single date (YYYY-MM-DD, default today)")
	startFlag := flag.String("start-date", "", "Batch mode: first date of the range (YYYY-MM-DD)")
	endFlag := flag.String("end-date", "", "Batch mode: last date of the range (YYYY-MM-DD)")

	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Trendflow.Name,
		"version": cfg.Trendflow.Version,
	}).Info("starting trendflow")

	log.WithComponent("main").WithFields(logger.Fields{
		"output_dir":     cfg.Collector.OutputDir,
		"batch_size":     cfg.Collector.BatchSize,
		"min_view_count": cfg.Collector.MinViewCount,
		"validation":     cfg.Collector.EnableValidation,
		"api_keys":       len(cfg.APIKeys),
		"daily_budget":   cfg.Quota.DailyBudget,
	}).Info("collection settings")

	dates, err := runDates(*dateFlag, *startFlag, *endFlag)
	if err != nil {
		log.WithError(err).Error("invalid date arguments")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.WithFields(logger.Fields{"signal": sig.String()}).Info("shutdown signal received")
		cancel()
	}()

	if strings.ToLower(cfg.Logging.Level) == "report" {
		logger.StartReport(ctx, log, 30*time.Second)
	}
	if cfg.Logging.CloudWatchNamespace != "" {
		logger.InitCloudWatch(cfg.Storage.S3.Region, cfg.Logging.CloudWatchNamespace)
	}

	ledger := quota.NewLedger(cfg.APIKeys, cfg.Quota.DailyBudget)
	client := youtube.NewClient(cfg, ledger)
	c := collector.NewCollector(cfg, client, ledger)

	if cfg.Storage.S3.Enabled {
		archiver, err := writer.NewArchiver(ctx, cfg)
		if err != nil {
			log.WithError(err).Error("failed to create S3 archiver")
			os.Exit(1)
		}
		c.SetArchiver(archiver)
	}

	failed := 0
	for i, runDate := range dates {
		if i > 0 {
			log.WithFields(logger.Fields{"pause": cfg.Collector.BatchPause.Std().String()}).Info("pausing between batch runs")
			select {
			case <-ctx.Done():
			case <-time.After(cfg.Collector.BatchPause.Std()):
			}
		}
		if ctx.Err() != nil {
			log.Info("shutdown requested, stopping batch")
			break
		}

		if _, err := c.Run(ctx, runDate); err != nil {
			failed++
		}
	}

	log.WithFields(logger.Fields{
		"runs":   len(dates),
		"failed": failed,
	}).Info("trendflow finished")
	if failed > 0 {
		os.Exit(1)
	}
}

// runDates resolves the CLI date flags into the list of target dates. With
// no flags it is today's single run; -date pins one day; -start-date and
// -end-date walk an inclusive range.
func runDates(date, start, end string) ([]time.Time, error) {
	const layout = "2006-01-02"

	if date != "" {
		if start != "" || end != "" {
			return nil, fmt.Errorf("-date cannot be combined with -start-date/-end-date")
		}
		d, err := time.Parse(layout, date)
		if err != nil {
			return nil, fmt.Errorf("invalid -date %q: %w", date, err)
		}
		return []time.Time{d}, nil
	}

	if start == "" && end == "" {
		return []time.Time{time.Now().UTC().Truncate(24 * time.Hour)}, nil
	}
	if start == "" || end == "" {
		return nil, fmt.Errorf("-start-date and -end-date must be given together")
	}

	from, err := time.Parse(layout, start)
	if err != nil {
		return nil, fmt.Errorf("invalid -start-date %q: %w", start, err)
	}
	to, err := time.Parse(layout, end)
	if err != nil {
		return nil, fmt.Errorf("invalid -end-date %q: %w", end, err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("-end-date is before -start-date")
	}

	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates, nil
}
