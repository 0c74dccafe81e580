package ai

import (
	"context"
	"math"
	"regexp"
	"strconv"

	"github.com/timjtrainor/Apply4Jobs/internal/prompts"
)

var nonNumeric = regexp.MustCompile(`[^\d\-+.]`)

// ExtractScore strips everything but digits, signs and dots:
// "Score: 93.50%" becomes "93.50".
func ExtractScore(text string) string {
	return nonNumeric.ReplaceAllString(text, "")
}

// ParseScore converts extracted text to a percentage clamped to [0,100] and
// rounded to two decimals. ok is false when nothing parseable remains.
func ParseScore(text string) (score float64, ok bool) {
	v, err := strconv.ParseFloat(ExtractScore(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	v = math.Max(0, math.Min(100, v))
	return math.Round(v*100) / 100, true
}

// Score is a parsed fit score with the raw model output kept for logging.
type Score struct {
	Raw   string
	Value *float64 // nil when the output held no number
}

// FitScore asks gen to rate resumeText against requirements.
func FitScore(ctx context.Context, gen Generator, builder *prompts.Builder, requirements, resumeText string) (Score, error) {
	fields := prompts.Fields{"Requirements": requirements, "Resume": resumeText}

	var (
		prompt prompts.Prompt
		err    error
	)
	if builder != nil {
		prompt, err = builder.Build(prompts.FitScore, fields)
	} else {
		prompt, err = prompts.Build(prompts.FitScore, fields)
	}
	if err != nil {
		return Score{}, err
	}

	raw, err := gen.Generate(ctx, prompt)
	if err != nil {
		return Score{}, err
	}

	score := Score{Raw: raw}
	if v, ok := ParseScore(raw); ok {
		score.Value = &v
	}
	return score, nil
}
