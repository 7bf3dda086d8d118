package models

import (
	"fmt"
	"strings"
)

// ObservedProduct is one record of a scraped batch, as delivered by the
// scraping collaborator. It has not been persisted or validated yet.
type ObservedProduct struct {
	ProductID     string   `json:"product_id"`
	ProductName   string   `json:"product_name"`
	BrandName     string   `json:"brand_name"`
	Category      string   `json:"category"`
	CategoryKey   string   `json:"category_key"`
	ImageURL      string   `json:"image_url"`
	ProductURL    string   `json:"product_url"`
	Rank          int      `json:"rank"`
	OriginalPrice *int64   `json:"original_price"`
	SalePrice     *int64   `json:"sale_price"`
	DiscountRate  *float64 `json:"discount_rate"`
}

// Validate reports the first reason this record cannot be persisted.
// A failing record is skipped entity-wise; it never aborts the batch.
func (p *ObservedProduct) Validate() error {
	if strings.TrimSpace(p.ProductID) == "" {
		return fmt.Errorf("missing product_id")
	}
	if strings.TrimSpace(p.ProductName) == "" {
		return fmt.Errorf("missing product_name")
	}
	if p.Rank < 1 {
		return fmt.Errorf("rank must be positive, got %d", p.Rank)
	}
	if p.OriginalPrice != nil && *p.OriginalPrice < 0 {
		return fmt.Errorf("negative original_price %d", *p.OriginalPrice)
	}
	if p.SalePrice != nil && *p.SalePrice < 0 {
		return fmt.Errorf("negative sale_price %d", *p.SalePrice)
	}
	if p.DiscountRate != nil && (*p.DiscountRate < 0 || *p.DiscountRate > 100) {
		return fmt.Errorf("discount_rate out of range: %v", *p.DiscountRate)
	}
	return nil
}
