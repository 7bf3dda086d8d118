package handlers

import (
	"net/http"
	"strconv"
	"time"
)

// intParam reads a positive integer query parameter, falling back to def.
func intParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// sinceHours turns an "hours" query parameter into a window start time.
func sinceHours(r *http.Request, def int) time.Time {
	hours := intParam(r, "hours", def)
	return time.Now().Add(-time.Duration(hours) * time.Hour)
}

// sinceDays turns a "days" query parameter into a window start time.
func sinceDays(r *http.Request, def int) time.Time {
	days := intParam(r, "days", def)
	return time.Now().AddDate(0, 0, -days)
}
