package models

import "time"

// CollectionStats summarizes one run. It is created by the collector at run
// start, mutated only by the collector goroutine, and finalized at run end.
type CollectionStats struct {
	RunID         string
	TargetDate    string
	StartTime     time.Time
	EndTime       time.Time
	RawCollected  int
	Processed     int
	TrendingCount int
	CSVFilePath   string
	FileSizeBytes int64
	QuotaUsed     int
	ErrorCount    int
}
