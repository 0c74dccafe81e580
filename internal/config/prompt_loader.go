package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// loadPromptsFromFiles reads every prompts.files entry into Prompts.Loaded
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	if err := c.validatePromptFiles(); err != nil {
		return err
	}

	c.Prompts.Loaded = make(map[string]string, len(c.Prompts.Files))
	for _, id := range sortedKeys(c.Prompts.Files) {
		content, err := loadPromptFromFile(c.Prompts.Files[id], id)
		if err != nil {
			return err
		}
		c.Prompts.Loaded[id] = content
	}

	c.logPromptLoadingSummary()
	return nil
}

// loadPromptFromFile loads a single prompt template from a file
func loadPromptFromFile(filePath, id string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s prompt file '%s': %w", id, filePath, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", id, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", id, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s prompt from file: %s (%d characters)",
		id, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles checks that every configured prompt file exists before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	for _, id := range sortedKeys(c.Prompts.Files) {
		filePath := c.Prompts.Files[id]
		if filePath == "" {
			validationErrors = append(validationErrors, fmt.Sprintf("empty path for %s prompt", id))
			continue
		}
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s prompt: %s", id, filePath))
			continue
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s prompt file not found: %s", id, absPath))
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}
	return nil
}

// PromptOverride returns the configured template text for id, preferring a
// loaded file over inline text. ok is false when neither is set.
func (c *Config) PromptOverride(id string) (text, source string, ok bool) {
	if content, found := c.Prompts.Loaded[id]; found && content != "" {
		return content, "file", true
	}
	if content, found := c.Prompts.Inline[id]; found && strings.TrimSpace(content) != "" {
		return content, "inline", true
	}
	return "", "default", false
}

// logPromptLoadingSummary logs a summary of loaded prompts
func (c *Config) logPromptLoadingSummary() {
	log.Println("[CONFIG] === Custom Prompt Loading Summary ===")

	count := 0
	for _, id := range sortedKeys(c.Prompts.Loaded) {
		log.Printf("[CONFIG] %s prompt: loaded from file", id)
		count++
	}
	for _, id := range sortedKeys(c.Prompts.Inline) {
		if _, shadowed := c.Prompts.Loaded[id]; shadowed {
			continue
		}
		log.Printf("[CONFIG] %s prompt: inline override", id)
		count++
	}

	if count == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", count)
	}
	log.Println("[CONFIG] ==========================================")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
