package apperrors

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrNoConnection   = errors.New("no database connection in context")
	ErrEmptyBatch     = errors.New("batch contains no products")
	ErrRunInProgress  = errors.New("a crawl run is already in progress")
	ErrInvalidProduct = errors.New("invalid product")
)
