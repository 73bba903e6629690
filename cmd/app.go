package cmd

import (
	"fmt"

	"github.com/storeforge/catalogen/internal/catalog"
	"github.com/storeforge/catalogen/internal/config"
	"github.com/storeforge/catalogen/internal/content"
	"github.com/storeforge/catalogen/internal/deepseek"
	"github.com/storeforge/catalogen/internal/gemini"
	"github.com/storeforge/catalogen/internal/ollama"
	"github.com/storeforge/catalogen/internal/pexels"
	"github.com/storeforge/catalogen/internal/providers"
)

// newBuilder wires the pipeline collaborators from credentials and settings.
func newBuilder(creds config.Credentials, settings config.Settings) (*catalog.Builder, error) {
	var provider providers.Provider
	switch creds.ContentProvider {
	case "deepseek":
		provider = deepseek.New(creds.DeepSeekAPIKey, creds.DeepSeekBaseURL)
	case "gemini":
		provider = gemini.New(creds.GeminiAPIKey)
	case "ollama":
		provider = ollama.New(creds.OllamaURL)
	default:
		return nil, fmt.Errorf("unsupported content provider: %s", creds.ContentProvider)
	}

	images := pexels.New(creds.PexelsAPIKey, creds.PexelsBaseURL, settings.PageSize, settings.MaxPages)
	generator := content.NewGenerator(provider, settings.Model, settings.Temperature, settings.Discount)

	return catalog.NewBuilder(images, generator, settings), nil
}
