// Package prompts renders the generation prompts used by the pipeline stages.
package prompts

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// TemplateID names one prompt template.
type TemplateID string

const (
	Requirements        TemplateID = "requirements"
	FitScore            TemplateID = "fit_score"
	Keywords            TemplateID = "keywords"
	Guidance            TemplateID = "guidance"
	BulletFilter        TemplateID = "bullet_filter"
	BulletEnhance       TemplateID = "bullet_enhance"
	Summary             TemplateID = "summary"
	SummaryAchievements TemplateID = "summary_achievements"
	Skills              TemplateID = "skills"
	LinkedInComment     TemplateID = "linkedin_comment"
	CoverLetter         TemplateID = "cover_letter"
)

// IDs lists every template in a stable order.
func IDs() []TemplateID {
	return []TemplateID{
		Requirements, FitScore, Keywords, Guidance,
		BulletFilter, BulletEnhance, Summary, SummaryAchievements, Skills,
		LinkedInComment, CoverLetter,
	}
}

// Fields are the values a template may reference. A template that
// references a missing key fails to render.
type Fields map[string]any

// Prompt is an ordered list of text segments sent as one request.
type Prompt struct {
	ID       TemplateID
	Segments []string
}

// Text joins the segments back into a single string.
func (p Prompt) Text() string {
	return strings.Join(p.Segments, "\n\n")
}

// Overrides supplies replacement template text by id.
type Overrides interface {
	PromptOverride(id string) (text, source string, ok bool)
}

// Builder renders templates. It is safe for concurrent use once built.
type Builder struct {
	templates map[TemplateID]*template.Template
	sources   map[TemplateID]string
	texts     map[TemplateID]string
}

// NewBuilder parses every template, applying overrides when o is non-nil.
// A malformed override fails here rather than mid-run.
func NewBuilder(o Overrides) (*Builder, error) {
	b := &Builder{
		templates: make(map[TemplateID]*template.Template, len(defaultTemplates)),
		sources:   make(map[TemplateID]string, len(defaultTemplates)),
		texts:     make(map[TemplateID]string, len(defaultTemplates)),
	}

	for _, id := range IDs() {
		text, source := defaultTemplates[id], "default"
		if o != nil {
			if override, src, ok := o.PromptOverride(string(id)); ok {
				text, source = override, src
			}
		}

		tmpl, err := template.New(string(id)).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s prompt template (%s): %w", id, source, err)
		}
		b.templates[id] = tmpl
		b.sources[id] = source
		b.texts[id] = text
	}

	return b, nil
}

var defaultBuilder = mustDefaultBuilder()

func mustDefaultBuilder() *Builder {
	b, err := NewBuilder(nil)
	if err != nil {
		panic(err)
	}
	return b
}

// Build renders a built-in template.
func Build(id TemplateID, fields Fields) (Prompt, error) {
	return defaultBuilder.Build(id, fields)
}

// Build renders the template for id with fields.
func (b *Builder) Build(id TemplateID, fields Fields) (Prompt, error) {
	tmpl, ok := b.templates[id]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt template %q", id)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(fields)); err != nil {
		return Prompt{}, fmt.Errorf("failed to render %s prompt: %w", id, err)
	}

	return Prompt{ID: id, Segments: splitSegments(buf.String())}, nil
}

// Source reports where the template for id came from: "file", "inline" or "default".
func (b *Builder) Source(id TemplateID) string {
	return b.sources[id]
}

// Template returns the unrendered template text in use for id.
func (b *Builder) Template(id TemplateID) string {
	return b.texts[id]
}

func splitSegments(text string) []string {
	var segments []string
	for _, part := range strings.Split(text, "\n\n") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	return segments
}
