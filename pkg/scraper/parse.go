package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

var numberPattern = regexp.MustCompile(`[\d,]+`)

// parsePrice extracts the first number from Korean price text such as
// "129,000원". Returns nil when no digits are present.
func parsePrice(text string) *int64 {
	match := numberPattern.FindString(text)
	if match == "" {
		return nil
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(match, ",", ""), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

var discountPattern = regexp.MustCompile(`\d+`)

// parseDiscount extracts a percentage from text such as "35%".
func parseDiscount(text string) *float64 {
	match := discountPattern.FindString(text)
	if match == "" {
		return nil
	}
	n, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &n
}

// cleanText collapses whitespace and trims the extracted DOM text.
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
