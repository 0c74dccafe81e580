package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticOverrides map[string]string

func (s staticOverrides) PromptOverride(id string) (string, string, bool) {
	text, ok := s[id]
	return text, "inline", ok
}

func TestBuildFitScore(t *testing.T) {
	p, err := Build(FitScore, Fields{
		"Requirements": "Go, SQL",
		"Resume":       "Built services in Go.",
	})
	require.NoError(t, err)

	assert.Equal(t, FitScore, p.ID)
	require.NotEmpty(t, p.Segments)
	assert.Equal(t, "Requirement: Go, SQL", p.Segments[0])
	assert.Equal(t, "Resume: Built services in Go.", p.Segments[1])
	assert.Contains(t, p.Text(), "overall fit score")
}

func TestBuildIsPure(t *testing.T) {
	fields := Fields{"JobDescription": "Lead platform team"}
	first, err := Build(Keywords, fields)
	require.NoError(t, err)
	second, err := Build(Keywords, fields)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildMissingField(t *testing.T) {
	_, err := Build(BulletFilter, Fields{"Achievements": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bullet_filter")
}

func TestBuildUnknownTemplate(t *testing.T) {
	_, err := Build(TemplateID("interview"), Fields{})
	assert.Error(t, err)
}

func TestEveryTemplateRenders(t *testing.T) {
	fields := Fields{
		"JobDescription": "jd", "Requirements": "req", "Resume": "resume",
		"Guidance": "guide", "Keywords": "kw", "Achievements": "ach",
		"Count": 3, "Bullet": "b", "Bullets": "bs", "Company": "Acme",
		"JobTitle": "Engineer", "Mission": "m", "Values": "v",
		"RecentNews": "news", "Summary": "s", "SummaryBullets": "sb",
	}
	for _, id := range IDs() {
		t.Run(string(id), func(t *testing.T) {
			p, err := Build(id, fields)
			require.NoError(t, err)
			assert.NotEmpty(t, p.Segments)
		})
	}
}

func TestBuilderOverrides(t *testing.T) {
	b, err := NewBuilder(staticOverrides{"skills": "Skills for {{.Company}}\n\nNo soft skills."})
	require.NoError(t, err)

	p, err := b.Build(Skills, Fields{"Company": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Skills for Acme", "No soft skills."}, p.Segments)
	assert.Equal(t, "inline", b.Source(Skills))
	assert.Equal(t, "default", b.Source(Summary))
	assert.Equal(t, "Skills for {{.Company}}\n\nNo soft skills.", b.Template(Skills))
	assert.Contains(t, b.Template(Summary), "{{.Count}}")
}

func TestBuilderRejectsBadOverride(t *testing.T) {
	_, err := NewBuilder(staticOverrides{"summary": "{{.Broken"})
	assert.Error(t, err)
}
