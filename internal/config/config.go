// Package config loads API credentials from the environment and generation
// settings from an optional YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings tunes a catalog generation run. Zero values are replaced by
// defaults in Load, so a partial YAML file only overrides what it names.
type Settings struct {
	MinImages   int     `yaml:"min_images"`
	MaxImages   int     `yaml:"max_images"`
	BatchSize   int     `yaml:"batch_size"`
	PageSize    int     `yaml:"page_size"`
	MaxPages    int     `yaml:"max_pages"`
	Discount    float64 `yaml:"discount"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// Credentials holds the upstream API keys and endpoint overrides.
type Credentials struct {
	PexelsAPIKey    string
	ContentProvider string // "deepseek", "gemini" or "ollama"
	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	GeminiAPIKey    string
	OllamaURL       string
	PexelsBaseURL   string
}

// DefaultSettings returns the built-in generation defaults.
func DefaultSettings() Settings {
	return Settings{
		MinImages:   160,
		MaxImages:   240,
		BatchSize:   20,
		PageSize:    80,
		MaxPages:    10,
		Discount:    0.10,
		Model:       "deepseek-chat",
		Temperature: 0.7,
	}
}

// LoadSettings reads settings from a YAML file, applying defaults for any
// field the file leaves unset. An empty path returns the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	var fileSettings Settings
	if err := yaml.Unmarshal(data, &fileSettings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings file: %w", err)
	}

	if fileSettings.MinImages > 0 {
		settings.MinImages = fileSettings.MinImages
	}
	if fileSettings.MaxImages > 0 {
		settings.MaxImages = fileSettings.MaxImages
	}
	if fileSettings.BatchSize > 0 {
		settings.BatchSize = fileSettings.BatchSize
	}
	if fileSettings.PageSize > 0 {
		settings.PageSize = fileSettings.PageSize
	}
	if fileSettings.MaxPages > 0 {
		settings.MaxPages = fileSettings.MaxPages
	}
	if fileSettings.Discount > 0 {
		settings.Discount = fileSettings.Discount
	}
	if fileSettings.Model != "" {
		settings.Model = fileSettings.Model
	}
	if fileSettings.Temperature > 0 {
		settings.Temperature = fileSettings.Temperature
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate rejects settings that would produce a nonsensical run.
func (s Settings) Validate() error {
	if s.MinImages > s.MaxImages {
		return fmt.Errorf("min_images (%d) must not exceed max_images (%d)", s.MinImages, s.MaxImages)
	}
	if s.PageSize < 1 || s.PageSize > 80 {
		return fmt.Errorf("page_size must be between 1 and 80, got %d", s.PageSize)
	}
	if s.Discount <= 0 || s.Discount >= 1 {
		return fmt.Errorf("discount must be between 0 and 1 exclusive, got %v", s.Discount)
	}
	return nil
}

// LoadCredentials reads API keys from the environment. The Pexels key is
// always required; the content key depends on the selected provider.
func LoadCredentials() (Credentials, error) {
	creds := Credentials{
		PexelsAPIKey:    os.Getenv("PEXELS_API_KEY"),
		ContentProvider: os.Getenv("CONTENT_PROVIDER"),
		DeepSeekAPIKey:  os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekBaseURL: os.Getenv("DEEPSEEK_BASE_URL"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OllamaURL:       os.Getenv("OLLAMA_URL"),
		PexelsBaseURL:   os.Getenv("PEXELS_BASE_URL"),
	}
	if creds.ContentProvider == "" {
		creds.ContentProvider = "deepseek"
	}

	if creds.PexelsAPIKey == "" {
		return Credentials{}, fmt.Errorf("PEXELS_API_KEY environment variable is required")
	}

	switch creds.ContentProvider {
	case "deepseek":
		if creds.DeepSeekAPIKey == "" {
			return Credentials{}, fmt.Errorf("DEEPSEEK_API_KEY environment variable is required")
		}
	case "gemini":
		if creds.GeminiAPIKey == "" {
			return Credentials{}, fmt.Errorf("GEMINI_API_KEY environment variable is required")
		}
	case "ollama":
		// Local instance, no key needed.
	default:
		return Credentials{}, fmt.Errorf("unsupported content provider: %s", creds.ContentProvider)
	}

	return creds, nil
}
