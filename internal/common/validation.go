package common

import (
	"fmt"
	"slices"
	"time"

	"github.com/timjtrainor/Apply4Jobs/internal/store"
	"github.com/timjtrainor/Apply4Jobs/internal/workflow"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// GetSupportedFormats returns the list of supported formats
func GetSupportedFormats(supportedFormats []string) []string {
	return supportedFormats
}

// ParseStatus accepts a stored status value. Empty means all statuses.
func ParseStatus(s string) (workflow.Status, error) {
	status := workflow.Status(s)
	if s == "" || status.Valid() {
		return status, nil
	}
	valid := make([]string, 0, len(workflow.Ordered)+1)
	for _, st := range workflow.Ordered {
		valid = append(valid, string(st))
	}
	valid = append(valid, string(workflow.StatusBadFit))
	return "", fmt.Errorf("unknown status %q. Valid statuses: %q", s, valid)
}

// ParseDate parses a calendar date, defaulting to today when s is empty.
func ParseDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	t, err := time.ParseInLocation(store.DateLayout, s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}
