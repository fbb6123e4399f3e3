// Package writer persists one collection run's training records as a dated
// CSV dataset file, with an optional parquet mirror and S3 archive.
package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	appconfig "trendflow/config"
	"trendflow/logger"
	"trendflow/models"
)

// utf8BOM makes spreadsheet tools pick UTF-8 when opening the file.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DatasetWriter writes training records to disk and, when configured,
// mirrors the dataset to parquet and archives it to S3.
type DatasetWriter struct {
	config *appconfig.Config
	log    *logger.Entry
}

func NewDatasetWriter(cfg *appconfig.Config) *DatasetWriter {
	return &DatasetWriter{
		config: cfg,
		log:    logger.GetLogger().WithComponent("dataset_writer"),
	}
}

// Filename returns the dataset filename for a run date, e.g.
// youtube_viral_dataset_v1_20260829.csv.
func (w *DatasetWriter) Filename(runDate time.Time) string {
	return fmt.Sprintf("%s_v1_%s.csv", w.config.Writer.Prefix, runDate.Format("20060102"))
}

// WriteCSV writes all records into the dated dataset file, replacing any
// previous file for the same date. The file appears atomically: rows go to
// a temp file first which is renamed into place only after a clean flush.
func (w *DatasetWriter) WriteCSV(records []models.TrainingRecord, runDate time.Time) (string, int64, error) {
	if err := os.MkdirAll(w.config.Collector.OutputDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(w.config.Collector.OutputDir, w.Filename(runDate))

	tmp, err := os.CreateTemp(w.config.Collector.OutputDir, ".dataset-*.csv")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := w.writeRows(tmp, records); err != nil {
		tmp.Close()
		return "", 0, err
	}
	if err := tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", 0, fmt.Errorf("failed to move dataset into place: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to stat dataset file: %w", err)
	}

	w.log.WithFields(logger.Fields{
		"path":      path,
		"records":   len(records),
		"file_size": info.Size(),
	}).Info("dataset file written")
	logger.IncrementRecordsWritten(len(records))

	return path, info.Size(), nil
}

func (w *DatasetWriter) writeRows(f *os.File, records []models.TrainingRecord) error {
	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(models.Columns()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(rec.Row()); err != nil {
			return fmt.Errorf("failed to write record %s: %w", rec.VideoID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
