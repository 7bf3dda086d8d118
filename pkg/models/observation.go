package models

import "time"

// Observation is one immutable ranking_history row: a per-product, per-batch
// measurement. Rows are append-only and never updated after insert.
type Observation struct {
	ID            int64     `json:"id"`
	ProductID     string    `json:"product_id"`
	Ranking       int       `json:"ranking"`
	OriginalPrice *int64    `json:"original_price"`
	SalePrice     *int64    `json:"sale_price"`
	DiscountRate  *float64  `json:"discount_rate"`
	CollectedAt   time.Time `json:"collected_at"`
}
