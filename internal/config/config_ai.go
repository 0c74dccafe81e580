package config

import "strings"

// applyStageDefaults layers a stage override on top of the global AI settings
func (c *Config) applyStageDefaults(base *AIConfig, stageCfg StageAIConfig) {
	if stageCfg.Model != "" {
		base.Model = stageCfg.Model
	}
	if stageCfg.Timeout != nil {
		base.Timeout = *stageCfg.Timeout
	}
	if stageCfg.MaxRetries != nil {
		base.MaxRetries = *stageCfg.MaxRetries
	}
	if stageCfg.RetryDelay != nil {
		base.RetryDelay = *stageCfg.RetryDelay
	}
	if stageCfg.Temperature != nil {
		base.Temperature = *stageCfg.Temperature
	}
}

// GetStageAIConfig returns the AI configuration for a stage with fallback to global config
func (c *Config) GetStageAIConfig(stage string) AIConfig {
	config := c.AI
	config.Stages = nil

	if stageCfg, ok := c.AI.Stages[strings.ToLower(stage)]; ok {
		c.applyStageDefaults(&config, stageCfg)
	}

	return config
}

// SafetySettings returns the harm category thresholds with upper-case keys.
// Viper lower-cases map keys on load.
func (a AIConfig) SafetySettings() map[string]string {
	out := make(map[string]string, len(a.Safety))
	for category, threshold := range a.Safety {
		out[strings.ToUpper(category)] = strings.ToUpper(threshold)
	}
	return out
}
