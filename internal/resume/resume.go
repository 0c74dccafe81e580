// Package resume reads the parsed-resume JSON export the resume stage
// tailors from.
package resume

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"
)

// Dates of one position as reported by the parser.
type Dates struct {
	MonthsInPosition *int   `json:"months_in_position"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
}

// Role is one work-experience entry. JobDescription holds the raw
// achievement text for the position.
type Role struct {
	Organization   string `json:"organization"`
	JobTitle       string `json:"job_title"`
	Dates          Dates  `json:"dates"`
	JobDescription string `json:"job_description"`
}

// Heading is the one-line label used in generated resume text.
func (r Role) Heading() string {
	var b strings.Builder
	b.WriteString(r.Organization)
	if r.JobTitle != "" {
		b.WriteString(" - ")
		b.WriteString(r.JobTitle)
	}
	if r.Dates.StartDate != "" || r.Dates.EndDate != "" {
		end := r.Dates.EndDate
		if end == "" {
			end = "Present"
		}
		fmt.Fprintf(&b, " (%s to %s)", r.Dates.StartDate, end)
	}
	return b.String()
}

// Resume is the subset of the export the pipeline reads.
type Resume struct {
	RawText        string
	WorkExperience []Role
}

type export struct {
	Data struct {
		RawText        string `json:"raw_text"`
		WorkExperience []Role `json:"work_experience"`
	} `json:"data"`
}

// Load reads the export at path. A missing file or an export without raw
// text is a configuration error.
func Load(path string) (*Resume, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeMissingConfig,
			fmt.Sprintf("resume export not readable: %s", path), err)
	}

	var doc export
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeInvalidFormat,
			fmt.Sprintf("resume export is not valid JSON: %s", path), err)
	}
	if strings.TrimSpace(doc.Data.RawText) == "" {
		return nil, apperrors.NewConfigError(apperrors.ErrCodeMissingConfig,
			fmt.Sprintf("resume export has no data.raw_text: %s", path), nil)
	}

	return &Resume{
		RawText:        doc.Data.RawText,
		WorkExperience: doc.Data.WorkExperience,
	}, nil
}
