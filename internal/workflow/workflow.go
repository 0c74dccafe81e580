package workflow

import (
	"fmt"
	"slices"

	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"
)

// Status is the canonical workflow value stored in job_applications.status.
type Status string

// Stable values (store these exact strings in DB).
const (
	StatusJDReview Status = "Step 1 - JD Review"
	StatusResume   Status = "Step 2 - Resume"
	StatusApply    Status = "Step 3 - Apply"
	StatusDM       Status = "Step 4 - DM"
	StatusEmail    Status = "Step 5 - Email"
	StatusFollowUp Status = "Step 6 - Follow-Up"
	StatusBadFit   Status = "Bad Fit" // terminal sink, reachable from JD review only
)

// Ordered lists the forward sequence.
var Ordered = []Status{
	StatusJDReview,
	StatusResume,
	StatusApply,
	StatusDM,
	StatusEmail,
	StatusFollowUp,
}

// Stage names a processing stage.
type Stage string

const (
	StageReview Stage = "review"
	StageResume Stage = "resume"
	StageApply  Stage = "apply"
	StageDM     Stage = "dm"
	StageEmail  Stage = "email"
)

// Column names written by stages.
const (
	ColStatus               = "status"
	ColAIRequirements       = "ai_requirements"
	ColOriginalFitScore     = "original_fit_score"
	ColKeywords             = "keywords"
	ColGuidance             = "guidance"
	ColDateJDReview         = "date_jd_review"
	ColResumeSummary        = "resume_summary"
	ColResumeSummaryBullets = "resume_summary_bullets"
	ColResume               = "resume"
	ColFinalFitScore        = "final_fit_score"
	ColDateResumeCreated    = "date_resume_created"
	ColLinkedInPostURL      = "linkedin_post_url"
	ColLinkedInComment      = "linkedin_comment"
	ColEmail                = "email"
	ColDateEmailed          = "date_emailed"
	ColDateEmailFollowup    = "date_email_followup"
)

// Transition describes one row of the static transition table.
type Transition struct {
	Stage Stage
	From  Status
	To    Status
	Sink  Status   // empty when the stage has no side exit
	Owns  []string // columns this stage may write besides status
}

var table = []Transition{
	{
		Stage: StageReview,
		From:  StatusJDReview,
		To:    StatusResume,
		Sink:  StatusBadFit,
		Owns:  []string{ColAIRequirements, ColOriginalFitScore, ColKeywords, ColGuidance, ColDateJDReview},
	},
	{
		Stage: StageResume,
		From:  StatusResume,
		To:    StatusApply,
		Owns:  []string{ColResumeSummary, ColResumeSummaryBullets, ColResume, ColFinalFitScore, ColDateResumeCreated},
	},
	{
		Stage: StageApply,
		From:  StatusApply,
		To:    StatusDM,
	},
	{
		Stage: StageDM,
		From:  StatusDM,
		To:    StatusEmail,
		Owns:  []string{ColLinkedInPostURL, ColLinkedInComment},
	},
	{
		Stage: StageEmail,
		From:  StatusEmail,
		To:    StatusFollowUp,
		Owns:  []string{ColEmail, ColDateEmailed, ColDateEmailFollowup},
	},
}

// Stages returns the stages in pipeline order.
func Stages() []Stage {
	out := make([]Stage, len(table))
	for i, t := range table {
		out[i] = t.Stage
	}
	return out
}

// Lookup returns the transition row for a stage.
func Lookup(stage Stage) (Transition, bool) {
	for _, t := range table {
		if t.Stage == stage {
			return t, true
		}
	}
	return Transition{}, false
}

// ParseStage validates a stage name.
func ParseStage(name string) (Stage, error) {
	if _, ok := Lookup(Stage(name)); ok {
		return Stage(name), nil
	}
	return "", fmt.Errorf("unknown stage %q (valid: %v)", name, Stages())
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusBadFit || slices.Contains(Ordered, s)
}

// Terminal reports whether no stage reads s.
func (s Status) Terminal() bool {
	return s == StatusFollowUp || s == StatusBadFit
}

// Next returns the forward successor of s.
func Next(s Status) (Status, bool) {
	for _, t := range table {
		if t.From == s {
			return t.To, true
		}
	}
	return "", false
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to Status) bool {
	for _, t := range table {
		if t.From != from {
			continue
		}
		return to == t.To || (t.Sink != "" && to == t.Sink)
	}
	return false
}

// CheckWrite asserts that stage may write fields to a record currently at
// current. A status entry in fields must be the stage's next status or sink.
func CheckWrite(stage Stage, current Status, fields map[string]any) error {
	t, ok := Lookup(stage)
	if !ok {
		return apperrors.NewInternalError(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown stage %q", stage), nil)
	}
	if current != t.From {
		return apperrors.NewValidationError(apperrors.ErrCodeStatusMismatch,
			fmt.Sprintf("stage %s expects status %q, record is %q", stage, t.From, current), nil).
			WithContext("stage", string(stage))
	}
	for col, val := range fields {
		if col == ColStatus {
			to, err := statusValue(val)
			if err != nil {
				return err
			}
			if !CanTransition(current, to) {
				return apperrors.NewValidationError(apperrors.ErrCodeStatusMismatch,
					fmt.Sprintf("illegal transition %q -> %q", current, to), nil).
					WithContext("stage", string(stage))
			}
			continue
		}
		if !slices.Contains(t.Owns, col) {
			return apperrors.NewValidationError(apperrors.ErrCodeFieldNotOwned,
				fmt.Sprintf("stage %s does not own column %q", stage, col), nil).
				WithContext("stage", string(stage))
		}
	}
	return nil
}

func statusValue(v any) (Status, error) {
	switch s := v.(type) {
	case Status:
		return s, nil
	case string:
		return Status(s), nil
	default:
		return "", apperrors.NewValidationError(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("status value has type %T", v), nil)
	}
}
