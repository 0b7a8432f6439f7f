package reconcile

import (
	"fmt"
	"strings"
)

// maxNamesShown caps how many row labels appear in user-facing summaries
// before the remainder is collapsed into "and N more".
const maxNamesShown = 5

// GuestSummary is the outcome of one guest import run.
type GuestSummary struct {
	Added        int      `json:"added"`
	Updated      int      `json:"updated"`
	Skipped      int      `json:"skipped"`
	TotalRows    int      `json:"total_rows"`
	SkippedNames []string `json:"skipped_names,omitempty"`
}

// SkippedDisplay returns the capped, user-facing list of unnamed row labels.
func (s *GuestSummary) SkippedDisplay() string {
	return capNames(s.SkippedNames)
}

// AttendeeSummary is the outcome of one attendee import run.
type AttendeeSummary struct {
	Added         int      `json:"added"`
	Existing      int      `json:"existing"`
	NotFound      int      `json:"not_found"`
	TotalRows     int      `json:"total_rows"`
	NotFoundNames []string `json:"not_found_names,omitempty"`
}

// NotFoundDisplay returns the capped, user-facing list of unmatched names.
func (s *AttendeeSummary) NotFoundDisplay() string {
	return capNames(s.NotFoundNames)
}

// capNames joins up to maxNamesShown names and summarizes the rest.
func capNames(names []string) string {
	if len(names) == 0 {
		return ""
	}
	if len(names) <= maxNamesShown {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s and %d more",
		strings.Join(names[:maxNamesShown], ", "), len(names)-maxNamesShown)
}
