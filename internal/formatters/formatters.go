package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/timjtrainor/Apply4Jobs/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// GlobalRegistry holds the default formatters
var GlobalRegistry = NewFormatterRegistry()

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "ApplicationList", &ListTextFormatter{})
	registry.RegisterFormatter("markdown", "ApplicationList", &ListMarkdownFormatter{})
	registry.RegisterFormatter("text", "StageReport", &ReportTextFormatter{})
	registry.RegisterFormatter("markdown", "StageReport", &ReportMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ApplicationList:
		return "ApplicationList"
	case types.StageReport:
		return "StageReport"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

func score(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// outcomeOrder fixes the order counts are printed in
var outcomeOrder = []string{"advanced", "skipped", "terminal", "fatal"}

// ListTextFormatter renders the application listing as aligned text
type ListTextFormatter struct{}

func (ltf *ListTextFormatter) Format(data any) (string, error) {
	list, ok := data.(types.ApplicationList)
	if !ok {
		return "", fmt.Errorf("expected ApplicationList, got %T", data)
	}

	var output strings.Builder
	if list.Filter != "" {
		fmt.Fprintf(&output, "=== APPLICATIONS (%s) ===\n", list.Filter)
	} else {
		output.WriteString("=== APPLICATIONS ===\n")
	}
	if len(list.Applications) == 0 {
		output.WriteString("No applications found.\n")
		return output.String(), nil
	}

	fmt.Fprintf(&output, "%-5s %-20s %-28s %-20s %8s %8s %-10s\n",
		"ID", "COMPANY", "TITLE", "STATUS", "FIT", "FINAL", "APPLIED")
	for _, a := range list.Applications {
		fmt.Fprintf(&output, "%-5d %-20s %-28s %-20s %8s %8s %-10s\n",
			a.ID, truncate(a.Company, 20), truncate(a.Title, 28), a.Status,
			score(a.OriginalFitScore), score(a.FinalFitScore), orDash(a.DateApplied))
	}
	fmt.Fprintf(&output, "\n%d application(s)\n", len(list.Applications))
	return output.String(), nil
}

func (ltf *ListTextFormatter) SupportedType() string {
	return "ApplicationList"
}

// ListMarkdownFormatter renders the application listing as a table
type ListMarkdownFormatter struct{}

func (lmf *ListMarkdownFormatter) Format(data any) (string, error) {
	list, ok := data.(types.ApplicationList)
	if !ok {
		return "", fmt.Errorf("expected ApplicationList, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Applications\n\n")
	if list.Filter != "" {
		fmt.Fprintf(&output, "Status: **%s**\n\n", list.Filter)
	}
	output.WriteString("| ID | Company | Title | Status | Fit | Final | Applied |\n")
	output.WriteString("|---:|---|---|---|---:|---:|---|\n")
	for _, a := range list.Applications {
		fmt.Fprintf(&output, "| %d | %s | %s | %s | %s | %s | %s |\n",
			a.ID, cell(a.Company), cell(a.Title), a.Status,
			score(a.OriginalFitScore), score(a.FinalFitScore), orDash(a.DateApplied))
	}
	return output.String(), nil
}

func (lmf *ListMarkdownFormatter) SupportedType() string {
	return "ApplicationList"
}

// ReportTextFormatter renders a stage run summary
type ReportTextFormatter struct{}

func (rtf *ReportTextFormatter) Format(data any) (string, error) {
	report, ok := data.(types.StageReport)
	if !ok {
		return "", fmt.Errorf("expected StageReport, got %T", data)
	}

	var output strings.Builder
	fmt.Fprintf(&output, "=== STAGE %s ===\n", strings.ToUpper(report.Stage))
	fmt.Fprintf(&output, "Run: %s (%s)\n", report.RunID, report.Duration)

	counts := make([]string, 0, len(outcomeOrder))
	for _, o := range outcomeOrder {
		if n := report.Counts[o]; n > 0 {
			counts = append(counts, fmt.Sprintf("%s=%d", o, n))
		}
	}
	if len(counts) == 0 {
		output.WriteString("No records to process.\n")
	} else {
		fmt.Fprintf(&output, "Outcomes: %s\n", strings.Join(counts, " "))
	}

	for _, r := range report.Records {
		fmt.Fprintf(&output, "  [%s] #%d %s - %s", r.Outcome, r.ID, r.Company, r.Title)
		if r.Detail != "" {
			fmt.Fprintf(&output, ": %s", r.Detail)
		}
		output.WriteString("\n")
	}
	if report.Error != "" {
		fmt.Fprintf(&output, "Stopped: %s\n", report.Error)
	}
	return output.String(), nil
}

func (rtf *ReportTextFormatter) SupportedType() string {
	return "StageReport"
}

// ReportMarkdownFormatter renders a stage run summary as markdown
type ReportMarkdownFormatter struct{}

func (rmf *ReportMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(types.StageReport)
	if !ok {
		return "", fmt.Errorf("expected StageReport, got %T", data)
	}

	var output strings.Builder
	fmt.Fprintf(&output, "# Stage `%s`\n\n", report.Stage)
	fmt.Fprintf(&output, "- Run: `%s`\n- Duration: %s\n", report.RunID, report.Duration)
	for _, o := range outcomeOrder {
		if n := report.Counts[o]; n > 0 {
			fmt.Fprintf(&output, "- %s: %d\n", o, n)
		}
	}
	if len(report.Records) > 0 {
		output.WriteString("\n| ID | Company | Title | Outcome | Detail |\n")
		output.WriteString("|---:|---|---|---|---|\n")
		for _, r := range report.Records {
			fmt.Fprintf(&output, "| %d | %s | %s | %s | %s |\n",
				r.ID, cell(r.Company), cell(r.Title), r.Outcome, cell(r.Detail))
		}
	}
	if report.Error != "" {
		fmt.Fprintf(&output, "\n**Stopped:** %s\n", report.Error)
	}
	return output.String(), nil
}

func (rmf *ReportMarkdownFormatter) SupportedType() string {
	return "StageReport"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// cell escapes pipes so table rows stay intact
func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
