package writer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	pqwriter "github.com/xitongsys/parquet-go/writer"

	"trendflow/logger"
	"trendflow/models"
)

// ParquetRecord mirrors the CSV layout for analytical consumers.
type ParquetRecord struct {
	CollectionDate  string  `parquet:"name=collection_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	VideoID         string  `parquet:"name=video_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Title           string  `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8"`
	ChannelName     string  `parquet:"name=channel_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	UploadDate      string  `parquet:"name=upload_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	DurationSec     int32   `parquet:"name=duration_sec, type=INT32"`
	SubscriberCount int64   `parquet:"name=subscriber_count, type=INT64"`
	ViewCount       int64   `parquet:"name=view_count, type=INT64"`
	LikeCount       int64   `parquet:"name=like_count, type=INT64"`
	CommentCount    int64   `parquet:"name=comment_count, type=INT64"`
	ViewVelocity    float64 `parquet:"name=view_velocity, type=DOUBLE"`
	VPVRatio        float64 `parquet:"name=vpv_ratio, type=DOUBLE"`
	EngagementRate  float64 `parquet:"name=engagement_rate, type=DOUBLE"`
	TopCommentsText string  `parquet:"name=top_comments_text, type=BYTE_ARRAY, convertedtype=UTF8"`
	Keywords        string  `parquet:"name=description_keywords, type=BYTE_ARRAY, convertedtype=UTF8"`
	IsTrending      int32   `parquet:"name=is_trending_category, type=INT32"`
	SourceType      string  `parquet:"name=source_type, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// memoryFileWriter implements the ParquetFile interface for in-memory writing.
type memoryFileWriter struct {
	buffer *bytes.Buffer
}

func newMemoryFileWriter() *memoryFileWriter {
	return &memoryFileWriter{buffer: &bytes.Buffer{}}
}

func (mfw *memoryFileWriter) Create(name string) (source.ParquetFile, error) { return mfw, nil }
func (mfw *memoryFileWriter) Open(name string) (source.ParquetFile, error)   { return mfw, nil }

func (mfw *memoryFileWriter) Seek(offset int64, whence int) (int64, error) {
	return int64(mfw.buffer.Len()), nil
}

func (mfw *memoryFileWriter) Read(b []byte) (int, error)  { return mfw.buffer.Read(b) }
func (mfw *memoryFileWriter) Write(b []byte) (int, error) { return mfw.buffer.Write(b) }
func (mfw *memoryFileWriter) Close() error                { return nil }
func (mfw *memoryFileWriter) Bytes() []byte               { return mfw.buffer.Bytes() }

// WriteParquet mirrors the dataset to a parquet file next to the CSV.
// Used only when the parquet format is enabled in config.
func (w *DatasetWriter) WriteParquet(records []models.TrainingRecord, runDate time.Time) (string, error) {
	data, err := w.createParquetFile(records)
	if err != nil {
		return "", err
	}

	name := strings.TrimSuffix(w.Filename(runDate), ".csv") + ".parquet"
	path := filepath.Join(w.config.Collector.OutputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write parquet file: %w", err)
	}

	w.log.WithFields(logger.Fields{
		"path":      path,
		"records":   len(records),
		"file_size": len(data),
	}).Info("parquet mirror written")
	return path, nil
}

func (w *DatasetWriter) createParquetFile(records []models.TrainingRecord) ([]byte, error) {
	fw := newMemoryFileWriter()

	pw, err := pqwriter.NewParquetWriter(fw, new(ParquetRecord), 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}

	switch w.config.Writer.Parquet.Compression {
	case "snappy":
		pw.CompressionType = parquet.CompressionCodec_SNAPPY
	case "gzip":
		pw.CompressionType = parquet.CompressionCodec_GZIP
	default:
		pw.CompressionType = parquet.CompressionCodec_UNCOMPRESSED
	}

	for _, rec := range records {
		pr := ParquetRecord{
			CollectionDate:  rec.CollectionDate,
			VideoID:         rec.VideoID,
			Title:           rec.Title,
			ChannelName:     rec.ChannelName,
			UploadDate:      rec.UploadDate,
			DurationSec:     int32(rec.DurationSec),
			SubscriberCount: rec.SubscriberCount,
			ViewCount:       rec.ViewCount,
			LikeCount:       rec.LikeCount,
			CommentCount:    rec.CommentCount,
			ViewVelocity:    rec.ViewVelocity,
			VPVRatio:        rec.VPVRatio,
			EngagementRate:  rec.EngagementRate,
			TopCommentsText: rec.TopCommentsText,
			Keywords:        rec.Keywords,
			IsTrending:      int32(rec.IsTrending),
			SourceType:      rec.SourceType,
		}
		if err := pw.Write(pr); err != nil {
			pw.WriteStop()
			return nil, fmt.Errorf("failed to write parquet record: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("failed to finalize parquet writing: %w", err)
	}
	return fw.Bytes(), nil
}
