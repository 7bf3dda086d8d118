package models

import "time"

// SkippedProduct names one batch record that failed validation or
// persistence, and why.
type SkippedProduct struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

// IngestResult summarizes one committed ingestion batch.
type IngestResult struct {
	CollectedAt time.Time        `json:"collected_at"`
	Persisted   int              `json:"persisted"`
	Skipped     []SkippedProduct `json:"skipped,omitempty"`
	RankChanges int              `json:"rank_changes"`
	PriceMoves  int              `json:"price_moves"`
	BrandStats  int              `json:"brand_stats"`
}
