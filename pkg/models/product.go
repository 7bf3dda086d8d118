package models

import "time"

// Product is a tracked catalog item. The product_id is the stable join key
// for all history; display fields always reflect the latest observation.
type Product struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	BrandName   string    `json:"brand_name"`
	Category    string    `json:"category"`
	CategoryKey string    `json:"category_key"`
	ImageURL    string    `json:"image_url"`
	ProductURL  string    `json:"product_url"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RankedProduct is a current-state row: the most recent observation joined
// with product metadata, ordered by ranking.
type RankedProduct struct {
	Ranking       int       `json:"ranking"`
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name"`
	BrandName     string    `json:"brand_name"`
	Category      string    `json:"category"`
	OriginalPrice *int64    `json:"original_price"`
	SalePrice     *int64    `json:"sale_price"`
	DiscountRate  *float64  `json:"discount_rate"`
	ImageURL      string    `json:"image_url"`
	ProductURL    string    `json:"product_url"`
	CollectedAt   time.Time `json:"collected_at"`
}
