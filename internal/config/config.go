package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
// Gemini API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (APPLY4JOBS_AI_APIKEY, also read from .env)
// 4. The google_token row of the config table - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Store         StoreConfig         `mapstructure:"store"`
	Paths         PathsConfig         `mapstructure:"paths"`
	Resume        ResumeConfig        `mapstructure:"resume"`
	DM            DMConfig            `mapstructure:"dm"`
	Email         EmailConfig         `mapstructure:"email"`
	Apply         ApplyConfig         `mapstructure:"apply"`
	Ingest        IngestConfig        `mapstructure:"ingest"`
	Prompts       PromptConfig        `mapstructure:"prompts"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds generation service configuration
type AIConfig struct {
	Provider          string               `mapstructure:"provider"`
	Model             string               `mapstructure:"model"`
	Timeout           time.Duration        `mapstructure:"timeout"`
	APIKey            string               `mapstructure:"apiKey"`
	MaxRetries        int                  `mapstructure:"maxRetries"`
	RetryDelay        time.Duration        `mapstructure:"retryDelay"`
	Backoff           string               `mapstructure:"backoff"` // "fixed" or "exponential"
	Temperature       float32              `mapstructure:"temperature"`
	TopP              float32              `mapstructure:"topP"`
	TopK              float32              `mapstructure:"topK"`
	MaxOutputTokens   int32                `mapstructure:"maxOutputTokens"`
	Safety            map[string]string    `mapstructure:"safety"` // harm category -> block threshold
	RequestsPerMinute int                  `mapstructure:"requestsPerMinute"`
	CircuitBreaker    CircuitBreakerConfig `mapstructure:"circuitBreaker"`

	// Per-stage overrides keyed by stage name (review, resume, apply, dm, email)
	Stages map[string]StageAIConfig `mapstructure:"stages"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// StageAIConfig overrides generation settings for a single stage
type StageAIConfig struct {
	Model       string         `mapstructure:"model"`
	Timeout     *time.Duration `mapstructure:"timeout"`
	MaxRetries  *int           `mapstructure:"maxRetries"`
	RetryDelay  *time.Duration `mapstructure:"retryDelay"`
	Temperature *float32       `mapstructure:"temperature"`
}

// StoreConfig holds the embedded database location
type StoreConfig struct {
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busyTimeout"`
}

// PathsConfig holds the working file layout. Relative entries resolve against Root.
type PathsConfig struct {
	Root            string `mapstructure:"root"`
	ResumeTemplate  string `mapstructure:"resumeTemplate"`
	ResumeExportDir string `mapstructure:"resumeExportDir"`
	TempDir         string `mapstructure:"tempDir"`
	AppliedDir      string `mapstructure:"appliedDir"`
}

// ResumeConfig controls the resume build stage
type ResumeConfig struct {
	Name             string `mapstructure:"name"` // overrides full_resume_file_name
	BulletsPerRole   []int  `mapstructure:"bulletsPerRole"`
	DefaultBullets   int    `mapstructure:"defaultBullets"`
	BulletVersions   int    `mapstructure:"bulletVersions"`
	SummaryOptions   int    `mapstructure:"summaryOptions"`
	AchievementPool  int    `mapstructure:"achievementPool"`
	AchievementPicks int    `mapstructure:"achievementPicks"`
	ExtraSections    string `mapstructure:"extraSections"`
}

// DMConfig controls the outreach stage
type DMConfig struct {
	CommentOptions int `mapstructure:"commentOptions"`
}

// EmailConfig controls the follow-up email stage
type EmailConfig struct {
	FollowupDays int `mapstructure:"followupDays"`
}

// ApplyConfig controls the apply stage
type ApplyConfig struct {
	// When true a failed artifact move leaves the record at its status.
	RequireArtifacts bool `mapstructure:"requireArtifacts"`
}

// IngestConfig controls posting ingestion
type IngestConfig struct {
	Dir      string        `mapstructure:"dir"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// PromptConfig holds prompt template overrides
type PromptConfig struct {
	Files  map[string]string `mapstructure:"files"`  // template id -> file path
	Inline map[string]string `mapstructure:"inline"` // template id -> template text

	// Loaded holds file contents read at startup, keyed by template id
	Loaded map[string]string `mapstructure:"-"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool             `mapstructure:"enabled"`
	ServiceName     string           `mapstructure:"serviceName"`
	ServiceVersion  string           `mapstructure:"serviceVersion"`
	ServiceInstance string           `mapstructure:"serviceInstance"`
	ConsoleOutput   bool             `mapstructure:"consoleOutput"`
	SampleRate      float64          `mapstructure:"sampleRate"`
	Metrics         MetricsConfig    `mapstructure:"metrics"`
	Console         ConsoleConfig    `mapstructure:"console"`
	Prometheus      PrometheusConfig `mapstructure:"prometheus"`
	OTLP            OTLPConfig       `mapstructure:"otlp"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

var defaultSearchPaths = []string{"/etc/apply4jobs/", "$HOME/.apply4jobs", "."}

// LoadConfig loads configuration from .env, environment variables and a config file
func LoadConfig() (*Config, error) {
	return loadConfig(defaultSearchPaths...)
}

func loadConfig(searchPaths ...string) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env file: %w", err)
		}
	} else {
		log.Println("[CONFIG] Loaded environment overrides from .env")
	}

	v := viper.New()

	setDefaults(v)
	log.Println("[CONFIG] Applied default configuration values")

	v.SetEnvPrefix("APPLY4JOBS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Println("[CONFIG] Configured environment variable handling with prefix 'APPLY4JOBS'")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}
	log.Printf("[CONFIG] Configured config file search paths: %s", strings.Join(searchPaths, ", "))

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed)

	if err := config.loadPromptsFromFiles(); err != nil {
		return nil, fmt.Errorf("failed to load custom prompts from files: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid. The API key is checked
// later, by the commands that call the generation service.
func (c *Config) Validate() error {
	if c.AI.Provider != "gemini" {
		return fmt.Errorf("unsupported AI provider: %s", c.AI.Provider)
	}
	if c.AI.Model == "" {
		return fmt.Errorf("AI model is required")
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}
	if c.AI.MaxRetries < 1 {
		return fmt.Errorf("AI maxRetries must be at least 1")
	}
	if c.AI.RetryDelay < 0 {
		return fmt.Errorf("AI retryDelay cannot be negative")
	}
	switch c.AI.Backoff {
	case "fixed", "exponential":
	default:
		return fmt.Errorf("invalid AI backoff %q (must be 'fixed' or 'exponential')", c.AI.Backoff)
	}
	if c.AI.RequestsPerMinute < 0 {
		return fmt.Errorf("AI requestsPerMinute cannot be negative")
	}

	if c.Store.Path == "" {
		return fmt.Errorf("store path is required")
	}

	for i, n := range c.Resume.BulletsPerRole {
		if n < 0 {
			return fmt.Errorf("resume.bulletsPerRole[%d] cannot be negative", i)
		}
	}
	if c.Resume.DefaultBullets < 0 {
		return fmt.Errorf("resume.defaultBullets cannot be negative")
	}
	if c.Resume.AchievementPicks < 1 || c.Resume.SummaryOptions < 1 || c.Resume.BulletVersions < 1 {
		return fmt.Errorf("resume option counts must be positive")
	}
	if c.Email.FollowupDays < 0 {
		return fmt.Errorf("email.followupDays cannot be negative")
	}

	switch c.App.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.App.LogLevel)
	}
	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	return nil
}

// Resolve returns p joined to the configured root unless p is absolute.
func (p PathsConfig) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || p.Root == "" {
		return path
	}
	return filepath.Join(p.Root, path)
}

// TemplatePath returns the resume template location.
func (p PathsConfig) TemplatePath() string { return p.Resolve(p.ResumeTemplate) }

// ResumeExportPath returns the JSON export path for a resume name.
func (p PathsConfig) ResumeExportPath(name string) string {
	return filepath.Join(p.Resolve(p.ResumeExportDir), name+".json")
}

// DocxDir is where generated resumes are written.
func (p PathsConfig) DocxDir() string { return filepath.Join(p.Resolve(p.TempDir), "resumes", "docx") }

// PDFDir is where exported resume PDFs are expected.
func (p PathsConfig) PDFDir() string { return filepath.Join(p.Resolve(p.TempDir), "resumes", "pdf") }

// EmailDir is where cover letters are written.
func (p PathsConfig) EmailDir() string { return filepath.Join(p.Resolve(p.TempDir), "email") }

// AppliedDirFor returns the dated archive directory.
func (p PathsConfig) AppliedDirFor(day time.Time) string {
	return filepath.Join(p.Resolve(p.AppliedDir), day.Format("2006-01-02"))
}

// WorkingDirs lists every directory the pipeline writes into.
func (p PathsConfig) WorkingDirs() []string {
	return []string{
		p.EmailDir(),
		p.DocxDir(),
		p.PDFDir(),
		p.Resolve(p.ResumeExportDir),
		p.Resolve(p.AppliedDir),
		filepath.Dir(p.TemplatePath()),
	}
}

// BulletsFor returns how many bullets to keep for the role at index i.
func (r ResumeConfig) BulletsFor(i int) int {
	if i < len(r.BulletsPerRole) {
		return r.BulletsPerRole[i]
	}
	return r.DefaultBullets
}
