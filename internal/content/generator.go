// Package content turns image descriptions into catalog entries via an LLM
// provider, degrading to per-item calls and finally to synthetic text so a
// catalog run can never fail on content generation alone.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/storeforge/catalogen/internal/models"
	"github.com/storeforge/catalogen/internal/pexels"
	"github.com/storeforge/catalogen/internal/providers"
	"github.com/storeforge/catalogen/internal/themes"
)

const (
	titleMaxLen = 50

	// Token budget: per-item allowance plus a fixed overhead, capped to
	// respect upstream limits.
	tokensPerItem  = 600
	tokenOverhead  = 1000
	maxTokenBudget = 8000

	// Larger batches take proportionally longer upstream.
	perItemTimeout  = 10 * time.Second
	minBatchTimeout = 60 * time.Second
	oneItemTimeout  = 30 * time.Second

	descriptionFloor = 400
	descriptionCap   = 500
)

// fillerSentence pads fallback descriptions up to the length floor.
const fillerSentence = " This high-quality product offers excellent value and is designed to meet your everyday needs. It features premium materials and craftsmanship that ensure durability and long-lasting performance. Perfect for both personal and professional use, this item combines functionality with style."

// Parse failures are distinguished from transport failures so the fallback
// decision is made on the error kind, not a blanket catch.
var (
	ErrBadJSON        = errors.New("response is not a valid JSON array")
	ErrLengthMismatch = errors.New("response length does not match batch size")
)

// generated is one {title, description} object from the model response.
type generated struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Generator produces catalog entries from photos.
type Generator struct {
	provider    providers.Provider
	model       string
	temperature float64
	discount    float64
}

// NewGenerator creates a content generator backed by the given provider.
func NewGenerator(provider providers.Provider, model string, temperature, discount float64) *Generator {
	return &Generator{
		provider:    provider,
		model:       model,
		temperature: temperature,
		discount:    discount,
	}
}

// GenerateBatch produces one catalog entry per photo using a single batched
// provider call. Entry IDs are 1-based within the batch; callers that
// concatenate batches renumber them. The returned slice always has exactly
// len(photos) entries.
func (g *Generator) GenerateBatch(ctx context.Context, photos []pexels.Photo, category themes.Theme) []models.CatalogEntry {
	if len(photos) == 0 {
		return nil
	}

	batchCtx, cancel := context.WithTimeout(ctx, batchTimeout(len(photos)))
	defer cancel()

	raw, err := g.provider.Complete(batchCtx, providers.Config{
		Model:       g.model,
		Prompt:      buildBatchPrompt(photos, category),
		MaxTokens:   tokenBudget(len(photos)),
		Temperature: g.temperature,
	})
	if err != nil {
		slog.Warn("Batch generation failed, falling back to per-item calls",
			"kind", "transport", "batch_size", len(photos), "error", err)
		return g.generatePerItem(ctx, photos, category)
	}

	items, err := parseBatchResponse(raw, len(photos))
	if err != nil {
		kind := "bad_json"
		if errors.Is(err, ErrLengthMismatch) {
			kind = "length_mismatch"
		}
		slog.Warn("Batch response unusable, falling back to per-item calls",
			"kind", kind, "batch_size", len(photos), "error", err)
		return g.generatePerItem(ctx, photos, category)
	}

	entries := make([]models.CatalogEntry, len(photos))
	for i, item := range items {
		title := item.Title
		if title == "" {
			title = truncate(photos[i].AltText(), titleMaxLen)
		}
		description := item.Description
		if description == "" {
			description = photos[i].AltText()
		}
		oldPrice, newPrice := g.GeneratePrice()
		entries[i] = models.CatalogEntry{
			ID:          i + 1,
			Title:       title,
			Description: description,
			Category:    string(category),
			OldPrice:    oldPrice,
			NewPrice:    newPrice,
		}
	}
	return entries
}

// generatePerItem regenerates every entry of a failed batch independently.
// One item's failure never aborts the rest.
func (g *Generator) generatePerItem(ctx context.Context, photos []pexels.Photo, category themes.Theme) []models.CatalogEntry {
	entries := make([]models.CatalogEntry, len(photos))
	for i, photo := range photos {
		title, description := g.GenerateOne(ctx, photo.AltText())
		oldPrice, newPrice := g.GeneratePrice()
		entries[i] = models.CatalogEntry{
			ID:          i + 1,
			Title:       title,
			Description: description,
			Category:    string(category),
			OldPrice:    oldPrice,
			NewPrice:    newPrice,
		}
	}
	return entries
}

// GenerateOne produces a title and description for a single alt text. Any
// provider or parse failure yields deterministic synthetic content, never
// an error.
func (g *Generator) GenerateOne(ctx context.Context, altText string) (title, description string) {
	itemCtx, cancel := context.WithTimeout(ctx, oneItemTimeout)
	defer cancel()

	raw, err := g.provider.Complete(itemCtx, providers.Config{
		Model:       g.model,
		Prompt:      buildItemPrompt(altText),
		MaxTokens:   tokensPerItem,
		Temperature: g.temperature,
	})
	if err != nil {
		slog.Debug("Single-item generation failed, using fallback content", "error", err)
		return FallbackContent(altText)
	}

	var item generated
	if err := json.Unmarshal([]byte(stripFences(raw)), &item); err != nil {
		slog.Debug("Single-item response not parseable, using fallback content", "error", err)
		return FallbackContent(altText)
	}

	title = item.Title
	if title == "" {
		title = truncate(altText, titleMaxLen)
	}
	description = item.Description
	if description == "" {
		description = altText
	}
	return title, description
}

// FallbackContent synthesizes deterministic catalog text from raw alt text:
// the title is the alt truncated to 50 characters, the description is the
// alt padded with a filler sentence to at least 400 characters and capped
// at 500.
func FallbackContent(altText string) (title, description string) {
	title = truncate(altText, titleMaxLen)

	description = altText
	for len(description) < descriptionFloor {
		description += fillerSentence
	}
	if len(description) > descriptionCap {
		description = description[:descriptionCap]
	}
	return title, description
}

// GeneratePrice draws an old price uniformly from [100, 10000] and applies
// the configured discount; both are rounded to two decimals independently.
func (g *Generator) GeneratePrice() (oldPrice, newPrice float64) {
	oldPrice = round2(100 + rand.Float64()*9900)
	newPrice = round2(oldPrice * (1 - g.discount))
	return oldPrice, newPrice
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func tokenBudget(batchSize int) int {
	budget := batchSize*tokensPerItem + tokenOverhead
	if budget > maxTokenBudget {
		return maxTokenBudget
	}
	return budget
}

func batchTimeout(batchSize int) time.Duration {
	timeout := time.Duration(batchSize) * perItemTimeout
	if timeout < minBatchTimeout {
		return minBatchTimeout
	}
	return timeout
}

// parseBatchResponse strips optional markdown fences and decodes a JSON
// array of exactly want objects.
func parseBatchResponse(raw string, want int) ([]generated, error) {
	cleaned := stripFences(raw)

	var items []generated
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	if len(items) != want {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, len(items), want)
	}
	return items, nil
}

// stripFences removes a surrounding ```json ... ``` markdown block if the
// model wrapped its answer in one.
func stripFences(s string) string {
	cleaned := strings.TrimSpace(s)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

func buildBatchPrompt(photos []pexels.Photo, category themes.Theme) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create product catalog data for %d items in the %s category.\n\nImages:\n", len(photos), category)
	for i, photo := range photos {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, photo.AltText())
	}
	sb.WriteString("\nFor each image, provide a title (max 50 characters) and description (300-500 characters).\n\n")
	sb.WriteString("IMPORTANT: Return ONLY a valid JSON array. Do not use quotes around the array. Do not add any extra text.\n\n")
	sb.WriteString(`Format: [{"title": "Title 1", "description": "Description 1"}, {"title": "Title 2", "description": "Description 2"}]`)
	return sb.String()
}

func buildItemPrompt(altText string) string {
	return fmt.Sprintf(`Based on this image description: %q

Generate a product catalog entry with:
1. A shortened title (max 50 characters)
2. An extended description (300-500 characters)

Format your response as JSON:
{
    "title": "Shortened Title",
    "description": "Extended description here..."
}`, altText)
}
