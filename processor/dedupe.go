package processor

import "trendflow/models"

// Dedupe collapses records sharing a video ID, keeping the first occurrence
// and preserving input order otherwise.
func Dedupe(records []models.TrainingRecord) []models.TrainingRecord {
	seen := make(map[string]struct{}, len(records))
	unique := make([]models.TrainingRecord, 0, len(records))
	for _, record := range records {
		if _, ok := seen[record.VideoID]; ok {
			continue
		}
		seen[record.VideoID] = struct{}{}
		unique = append(unique, record)
	}
	return unique
}
