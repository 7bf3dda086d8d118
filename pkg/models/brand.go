package models

import "time"

// BrandPlaceholder marks records where no brand could be extracted.
// Placeholder brands are excluded from aggregation.
const BrandPlaceholder = "N/A"

// Brand is one row of the brand registry.
type Brand struct {
	ID          int64     `json:"id"`
	BrandName   string    `json:"brand_name"`
	FirstSeen   time.Time `json:"first_seen"`
	LastUpdated time.Time `json:"last_updated"`
}

// BrandStat is a per-brand, per-batch summary computed strictly from the
// observations carrying one collection timestamp.
type BrandStat struct {
	ID              int64     `json:"id"`
	BrandName       string    `json:"brand_name"`
	ProductCount    int       `json:"product_count"`
	AvgRanking      float64   `json:"avg_ranking"`
	AvgPrice        float64   `json:"avg_price"`
	MinPrice        int64     `json:"min_price"`
	MaxPrice        int64     `json:"max_price"`
	AvgDiscountRate *float64  `json:"avg_discount_rate"`
	CollectedAt     time.Time `json:"collected_at"`
}
