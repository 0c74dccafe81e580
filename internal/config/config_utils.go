package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
)

// applyFallbacks fills values that depend on other settings or the host
func (c *Config) applyFallbacks() {
	if c.AI.APIKey == "" {
		// Legacy variable name
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	c.applyObservabilityDefaults()
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// maskSecret keeps the first and last four characters of long secrets
func maskSecret(value string) string {
	switch {
	case len(value) > 8:
		return value[:4] + "****" + value[len(value)-4:]
	case value != "":
		return "****"
	default:
		return ""
	}
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"APPLY4JOBS_AI_APIKEY",
		"APPLY4JOBS_AI_MODEL",
		"APPLY4JOBS_STORE_PATH",
		"APPLY4JOBS_PATHS_ROOT",
		"APPLY4JOBS_APP_LOGLEVEL",
		"APPLY4JOBS_VAULT_ENABLED",
		"GEMINI_API_KEY", // Legacy support
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			if strings.Contains(strings.ToLower(envVar), "key") {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] AI Provider: %s", c.AI.Provider)
	log.Printf("[CONFIG] AI Model: %s", c.AI.Model)
	if c.AI.APIKey != "" {
		log.Println("[CONFIG] AI API Key: ***CONFIGURED***")
	} else {
		log.Println("[CONFIG] AI API Key: ***NOT SET*** (will try vault, then the config table)")
	}
	log.Printf("[CONFIG] AI Retries: %d (%s backoff, %s delay)", c.AI.MaxRetries, c.AI.Backoff, c.AI.RetryDelay)
	log.Printf("[CONFIG] Store Path: %s", c.Store.Path)
	log.Printf("[CONFIG] Paths Root: %s", c.Paths.Root)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)

	if len(c.AI.Stages) > 0 {
		log.Println("[CONFIG] === Stage-Specific AI Configurations ===")
		stages := make([]string, 0, len(c.AI.Stages))
		for name := range c.AI.Stages {
			stages = append(stages, name)
		}
		slices.Sort(stages)
		for _, name := range stages {
			resolved := c.GetStageAIConfig(name)
			log.Printf("[CONFIG] %s - Model: %s, Timeout: %s", name, resolved.Model, resolved.Timeout)
		}
	}

	log.Println("[CONFIG] =====================================")
}
