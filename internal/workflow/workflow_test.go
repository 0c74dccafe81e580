package workflow

import (
	"testing"

	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextFollowsOrder(t *testing.T) {
	for i := 0; i < len(Ordered)-1; i++ {
		next, ok := Next(Ordered[i])
		require.True(t, ok, "status %q should have a successor", Ordered[i])
		assert.Equal(t, Ordered[i+1], next)
	}

	_, ok := Next(StatusFollowUp)
	assert.False(t, ok)
	_, ok = Next(StatusBadFit)
	assert.False(t, ok)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"review to resume", StatusJDReview, StatusResume, true},
		{"review to bad fit", StatusJDReview, StatusBadFit, true},
		{"resume to bad fit", StatusResume, StatusBadFit, false},
		{"skip ahead", StatusJDReview, StatusApply, false},
		{"backwards", StatusDM, StatusApply, false},
		{"same status", StatusEmail, StatusEmail, false},
		{"from terminal", StatusFollowUp, StatusJDReview, false},
		{"from sink", StatusBadFit, StatusResume, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCheckWrite(t *testing.T) {
	tests := []struct {
		name     string
		stage    Stage
		current  Status
		fields   map[string]any
		wantCode string
	}{
		{
			name:    "owned fields",
			stage:   StageReview,
			current: StatusJDReview,
			fields:  map[string]any{ColKeywords: "go, sql"},
		},
		{
			name:    "advance with date",
			stage:   StageEmail,
			current: StatusEmail,
			fields:  map[string]any{ColStatus: StatusFollowUp, ColDateEmailed: "2024-03-01"},
		},
		{
			name:    "sink from review",
			stage:   StageReview,
			current: StatusJDReview,
			fields:  map[string]any{ColStatus: string(StatusBadFit)},
		},
		{
			name:     "wrong current status",
			stage:    StageResume,
			current:  StatusJDReview,
			fields:   map[string]any{ColResume: "x"},
			wantCode: apperrors.ErrCodeStatusMismatch,
		},
		{
			name:     "field owned by another stage",
			stage:    StageDM,
			current:  StatusDM,
			fields:   map[string]any{ColKeywords: "x"},
			wantCode: apperrors.ErrCodeFieldNotOwned,
		},
		{
			name:     "sink not allowed outside review",
			stage:    StageDM,
			current:  StatusDM,
			fields:   map[string]any{ColStatus: StatusBadFit},
			wantCode: apperrors.ErrCodeStatusMismatch,
		},
		{
			name:     "apply owns nothing",
			stage:    StageApply,
			current:  StatusApply,
			fields:   map[string]any{ColEmail: "x"},
			wantCode: apperrors.ErrCodeFieldNotOwned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckWrite(tt.stage, tt.current, tt.fields)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestParseStage(t *testing.T) {
	for _, s := range Stages() {
		got, err := ParseStage(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseStage("interview")
	assert.Error(t, err)
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusBadFit.Valid())
	assert.True(t, StatusDM.Valid())
	assert.False(t, Status("Step 7").Valid())

	assert.True(t, StatusFollowUp.Terminal())
	assert.True(t, StatusBadFit.Terminal())
	assert.False(t, StatusJDReview.Terminal())
}
