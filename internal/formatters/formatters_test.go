package formatters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timjtrainor/Apply4Jobs/internal/types"
)

func fptr(v float64) *float64 { return &v }

func sampleList() types.ApplicationList {
	return types.ApplicationList{
		Filter: "Step 3 - Apply",
		Applications: []types.ApplicationRow{
			{ID: 1, Company: "Acme | Co", Title: "Engineer", Status: "Step 3 - Apply", OriginalFitScore: fptr(82.5), DateCreated: "2026-10-01"},
			{ID: 2, Company: "Beta", Title: "Staff Engineer", Status: "Step 3 - Apply", DateApplied: "2026-10-17", DateCreated: "2026-10-02"},
		},
	}
}

func sampleReport() types.StageReport {
	return types.StageReport{
		RunID:    "4b7a",
		Stage:    "review",
		Duration: "2s",
		Counts:   map[string]int{"advanced": 1, "skipped": 1},
		Records: []types.RecordResult{
			{ID: 1, Company: "Acme", Title: "Engineer", Outcome: "advanced"},
			{ID: 2, Company: "Beta", Title: "Engineer", Outcome: "skipped", Detail: "blocked"},
		},
	}
}

func TestRegistryDispatch(t *testing.T) {
	r := NewFormatterRegistry()
	assert.Equal(t, []string{"json", "markdown", "text"}, r.GetSupportedFormats())

	_, err := r.Format(sampleList(), "xml")
	assert.Error(t, err)

	// unknown types fall back to json
	out, err := r.Format(map[string]int{"a": 1}, "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, out)

	_, err = r.Format(map[string]int{"a": 1}, "text")
	assert.Error(t, err)
}

func TestListFormats(t *testing.T) {
	text, err := GlobalRegistry.Format(sampleList(), "text")
	require.NoError(t, err)
	assert.Contains(t, text, "=== APPLICATIONS (Step 3 - Apply) ===")
	assert.Contains(t, text, "82.50")
	assert.Contains(t, text, "2026-10-17")
	assert.Contains(t, text, "2 application(s)")

	md, err := GlobalRegistry.Format(sampleList(), "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, `| 1 | Acme \| Co | Engineer |`)

	raw, err := GlobalRegistry.Format(sampleList(), "json")
	require.NoError(t, err)
	var back types.ApplicationList
	require.NoError(t, json.Unmarshal([]byte(raw), &back))
	assert.Len(t, back.Applications, 2)

	empty, err := GlobalRegistry.Format(types.ApplicationList{}, "text")
	require.NoError(t, err)
	assert.Contains(t, empty, "No applications found.")
}

func TestReportFormats(t *testing.T) {
	text, err := GlobalRegistry.Format(sampleReport(), "text")
	require.NoError(t, err)
	assert.Contains(t, text, "=== STAGE REVIEW ===")
	assert.Contains(t, text, "Outcomes: advanced=1 skipped=1")
	assert.Contains(t, text, "[skipped] #2 Beta - Engineer: blocked")
	assert.NotContains(t, text, "Stopped")

	stopped := sampleReport()
	stopped.Error = "input closed"
	md, err := GlobalRegistry.Format(stopped, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "# Stage `review`")
	assert.Contains(t, md, "**Stopped:** input closed")
}
