package models

import "time"

// Rank change direction. "up" means the product moved to a numerically
// better (lower) rank.
const (
	RankChangeUp   = "up"
	RankChangeDown = "down"
)

// RankChange records a detected rank movement between two consecutive
// observations of the same product. ChangeAmount is previous - current,
// so a positive amount always means "risen".
type RankChange struct {
	ID              int64     `json:"id"`
	ProductID       string    `json:"product_id"`
	PreviousRanking int       `json:"previous_ranking"`
	CurrentRanking  int       `json:"current_ranking"`
	ChangeAmount    int       `json:"change_amount"`
	ChangeType      string    `json:"change_type"`
	ChangedAt       time.Time `json:"changed_at"`

	// Joined metadata, populated on reads only.
	ProductName string `json:"product_name,omitempty"`
	BrandName   string `json:"brand_name,omitempty"`
}

// PriceChange records a detected sale-price movement between two consecutive
// observations. ChangeAmount is current - previous.
type PriceChange struct {
	ID               int64     `json:"id"`
	ProductID        string    `json:"product_id"`
	PreviousPrice    int64     `json:"previous_sale_price"`
	CurrentPrice     int64     `json:"current_sale_price"`
	ChangeAmount     int64     `json:"price_change_amount"`
	ChangePercentage float64   `json:"price_change_percentage"`
	PreviousDiscount *float64  `json:"previous_discount_rate"`
	CurrentDiscount  *float64  `json:"current_discount_rate"`
	ChangedAt        time.Time `json:"changed_at"`

	// Joined metadata, populated on reads only.
	ProductName string `json:"product_name,omitempty"`
	BrandName   string `json:"brand_name,omitempty"`
}
