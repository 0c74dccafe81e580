package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := loadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "gemini", config.AI.Provider)
	assert.Equal(t, 3, config.AI.MaxRetries)
	assert.Equal(t, 5*time.Second, config.AI.RetryDelay)
	assert.Equal(t, "fixed", config.AI.Backoff)
	assert.Equal(t, []int{5, 2, 4, 4, 2, 2}, config.Resume.BulletsPerRole)
	assert.Equal(t, 2, config.Resume.DefaultBullets)
	assert.Equal(t, 7, config.Email.FollowupDays)
	assert.False(t, config.Apply.RequireArtifacts)
	assert.False(t, config.Observability.Enabled)
	assert.NotEmpty(t, config.Observability.ServiceInstance)
	assert.Equal(t, "BLOCK_MEDIUM_AND_ABOVE", config.AI.SafetySettings()["HARM_CATEGORY_HARASSMENT"])
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
ai:
  model: gemini-1.5-pro
  backoff: exponential
  stages:
    review:
      temperature: 0.2
      maxRetries: 5
email:
  followupDays: 10
resume:
  bulletsPerRole: [3, 3]
prompts:
  inline:
    skills: "List skills for {{.JobDescription}}"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600))
	t.Setenv("APPLY4JOBS_STORE_PATH", filepath.Join(dir, "jobs.db"))

	config, err := loadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "gemini-1.5-pro", config.AI.Model)
	assert.Equal(t, "exponential", config.AI.Backoff)
	assert.Equal(t, 10, config.Email.FollowupDays)
	assert.Equal(t, filepath.Join(dir, "jobs.db"), config.Store.Path)
	assert.Equal(t, 3, config.Resume.BulletsFor(1))
	assert.Equal(t, 2, config.Resume.BulletsFor(4))

	review := config.GetStageAIConfig("review")
	assert.Equal(t, float32(0.2), review.Temperature)
	assert.Equal(t, 5, review.MaxRetries)
	assert.Equal(t, "gemini-1.5-pro", review.Model)

	resume := config.GetStageAIConfig("resume")
	assert.Equal(t, 90*time.Second, resume.Timeout)
	assert.Equal(t, 3, resume.MaxRetries)

	text, source, ok := config.PromptOverride("skills")
	assert.True(t, ok)
	assert.Equal(t, "inline", source)
	assert.Contains(t, text, "{{.JobDescription}}")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		config, err := loadConfig(t.TempDir())
		require.NoError(t, err)
		return config
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"provider", func(c *Config) { c.AI.Provider = "openai" }, "unsupported AI provider"},
		{"retries", func(c *Config) { c.AI.MaxRetries = 0 }, "maxRetries"},
		{"backoff", func(c *Config) { c.AI.Backoff = "linear" }, "invalid AI backoff"},
		{"negative bullets", func(c *Config) { c.Resume.BulletsPerRole = []int{2, -1} }, "bulletsPerRole[1]"},
		{"followup", func(c *Config) { c.Email.FollowupDays = -1 }, "followupDays"},
		{"log level", func(c *Config) { c.App.LogLevel = "trace" }, "invalid log level"},
		{"format", func(c *Config) { c.App.DefaultFormat = "xml" }, "invalid default format"},
		{"store", func(c *Config) { c.Store.Path = "" }, "store path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestPathsResolve(t *testing.T) {
	p := PathsConfig{
		Root:            "/work",
		ResumeTemplate:  "data/src/resume_template/ResumeTemplate.docx",
		ResumeExportDir: "data/target",
		TempDir:         "temp",
		AppliedDir:      "/archive",
	}

	assert.Equal(t, "/work/data/src/resume_template/ResumeTemplate.docx", p.TemplatePath())
	assert.Equal(t, "/work/data/target/jane.json", p.ResumeExportPath("jane"))
	assert.Equal(t, "/work/temp/resumes/docx", p.DocxDir())
	assert.Equal(t, "/work/temp/resumes/pdf", p.PDFDir())
	assert.Equal(t, "/work/temp/email", p.EmailDir())
	assert.Equal(t, "/archive/2024-03-05", p.AppliedDirFor(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
}
