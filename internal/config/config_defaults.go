package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.retryDelay", 5*time.Second)
	v.SetDefault("ai.backoff", "fixed")
	v.SetDefault("ai.temperature", 0.9)
	v.SetDefault("ai.topP", 1.0)
	v.SetDefault("ai.topK", 1)
	v.SetDefault("ai.maxOutputTokens", 2048)
	v.SetDefault("ai.requestsPerMinute", 0) // unlimited
	v.SetDefault("ai.safety", map[string]string{
		"HARM_CATEGORY_HARASSMENT":        "BLOCK_MEDIUM_AND_ABOVE",
		"HARM_CATEGORY_HATE_SPEECH":       "BLOCK_MEDIUM_AND_ABOVE",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT": "BLOCK_MEDIUM_AND_ABOVE",
		"HARM_CATEGORY_DANGEROUS_CONTENT": "BLOCK_MEDIUM_AND_ABOVE",
	})

	// Circuit breaker wraps every retrying generation call
	v.SetDefault("ai.circuitBreaker.enabled", true)
	v.SetDefault("ai.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.circuitBreaker.failureThreshold", 0.6)

	// Resume building generates the most text
	v.SetDefault("ai.stages.resume.timeout", 90*time.Second)

	// Store
	v.SetDefault("store.path", "data/apply4jobs.db")
	v.SetDefault("store.busyTimeout", 5*time.Second)

	// Working file layout
	v.SetDefault("paths.root", ".")
	v.SetDefault("paths.resumeTemplate", "data/src/resume_template/ResumeTemplate.docx")
	v.SetDefault("paths.resumeExportDir", "data/target")
	v.SetDefault("paths.tempDir", "temp")
	v.SetDefault("paths.appliedDir", "data/applied")

	// Stage behavior
	v.SetDefault("resume.name", "")
	v.SetDefault("resume.bulletsPerRole", []int{5, 2, 4, 4, 2, 2})
	v.SetDefault("resume.defaultBullets", 2)
	v.SetDefault("resume.bulletVersions", 5)
	v.SetDefault("resume.summaryOptions", 3)
	v.SetDefault("resume.achievementPool", 6)
	v.SetDefault("resume.achievementPicks", 3)
	v.SetDefault("resume.extraSections", "")
	v.SetDefault("dm.commentOptions", 3)
	v.SetDefault("email.followupDays", 7)
	v.SetDefault("apply.requireArtifacts", false)

	// Posting ingestion
	v.SetDefault("ingest.dir", "data/inbox")
	v.SetDefault("ingest.debounce", 500*time.Millisecond)

	// Application Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "text")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.geminiKey", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.serviceName", "apply4jobs")
	v.SetDefault("observability.serviceVersion", "dev")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", false)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
}
