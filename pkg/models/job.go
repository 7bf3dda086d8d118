package models

import (
	"time"

	"github.com/google/uuid"
)

// Scrape job outcome.
const (
	JobStatusSuccess = "success"
	JobStatusFailed  = "failed"
	// JobStatusUnknown is recorded when the ledger write itself could not
	// determine the outcome (best-effort synthetic entry).
	JobStatusUnknown = "unknown"
)

// ScrapeJob is one row of the job ledger: exactly one per crawl invocation,
// regardless of per-product outcomes.
type ScrapeJob struct {
	ID                uuid.UUID  `json:"id"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at"`
	Status            string     `json:"status"`
	ProductsCollected int        `json:"products_collected"`
	ErrorMessage      *string    `json:"error_message"`
	DurationSeconds   *int       `json:"duration_seconds"`
	CreatedAt         time.Time  `json:"created_at"`
}
