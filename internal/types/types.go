// Package types holds the output shapes rendered by the formatters.
package types

// ApplicationRow is one line of the application listing.
type ApplicationRow struct {
	ID               int64    `json:"id"`
	Company          string   `json:"company"`
	Title            string   `json:"title"`
	Status           string   `json:"status"`
	OriginalFitScore *float64 `json:"originalFitScore,omitempty"`
	FinalFitScore    *float64 `json:"finalFitScore,omitempty"`
	DateApplied      string   `json:"dateApplied,omitempty"`
	DateCreated      string   `json:"dateCreated"`
}

// ApplicationList is the result of the list command.
type ApplicationList struct {
	Filter       string           `json:"filter,omitempty"`
	Applications []ApplicationRow `json:"applications"`
}

// RecordResult is what happened to one record during a stage run.
type RecordResult struct {
	ID      int64  `json:"id"`
	Company string `json:"company"`
	Title   string `json:"title"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

// StageReport summarizes one stage run.
type StageReport struct {
	RunID    string         `json:"runId"`
	Stage    string         `json:"stage"`
	Duration string         `json:"duration"`
	Counts   map[string]int `json:"counts"`
	Records  []RecordResult `json:"records"`
	Error    string         `json:"error,omitempty"`
}
