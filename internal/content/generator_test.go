package content

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/storeforge/catalogen/internal/pexels"
	"github.com/storeforge/catalogen/internal/providers"
)

func testPhotos(n int) []pexels.Photo {
	photos := make([]pexels.Photo, n)
	for i := range photos {
		photos[i].ID = i + 1
		photos[i].Alt = fmt.Sprintf("photo of item %d", i+1)
	}
	return photos
}

func newTestGenerator(p providers.Provider) *Generator {
	return NewGenerator(p, "deepseek-chat", 0.7, 0.10)
}

func TestGenerateBatchValidResponse(t *testing.T) {
	provider := providers.Func(func(ctx context.Context, cfg providers.Config) (string, error) {
		return `[{"title": "First", "description": "Desc one"}, {"title": "Second", "description": "Desc two"}]`, nil
	})

	entries := newTestGenerator(provider).GenerateBatch(context.Background(), testPhotos(2), "toys")
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "First" || entries[1].Title != "Second" {
		t.Errorf("Titles not taken from response: %q, %q", entries[0].Title, entries[1].Title)
	}
	if entries[0].ID != 1 || entries[1].ID != 2 {
		t.Errorf("Expected batch-local ids 1, 2; got %d, %d", entries[0].ID, entries[1].ID)
	}
	if entries[0].Category != "toys" {
		t.Errorf("Expected category toys, got %q", entries[0].Category)
	}
}

func TestGenerateBatchStripsFences(t *testing.T) {
	provider := providers.Func(func(ctx context.Context, cfg providers.Config) (string, error) {
		return "```json\n[{\"title\":\"A\",\"description\":\"B\"}]\n```", nil
	})

	entries := newTestGenerator(provider).GenerateBatch(context.Background(), testPhotos(1), "books")
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Title != "A" || entries[0].Description != "B" {
		t.Errorf("Expected title A and description B, got %q and %q", entries[0].Title, entries[0].Description)
	}
}

func TestGenerateBatchDegradation(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{"transport error", "", errors.New("connection timed out")},
		{"invalid json", "here are your products: 1. A nice thing", nil},
		{"length mismatch", `[{"title": "Only one", "description": "D"}]`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			provider := providers.Func(func(ctx context.Context, cfg providers.Config) (string, error) {
				calls++
				if calls == 1 {
					return tt.response, tt.err
				}
				// Per-item fallback calls also fail, forcing synthetic content.
				return "", errors.New("still down")
			})

			photos := testPhotos(3)
			entries := newTestGenerator(provider).GenerateBatch(context.Background(), photos, "sports")
			if len(entries) != 3 {
				t.Fatalf("Expected 3 entries, got %d", len(entries))
			}
			for i, e := range entries {
				if e.Title == "" {
					t.Errorf("Entry %d has empty title", i)
				}
				if len([]rune(e.Title)) > 50 {
					t.Errorf("Entry %d title longer than 50 chars: %q", i, e.Title)
				}
				if e.ID != i+1 {
					t.Errorf("Entry %d has id %d", i, e.ID)
				}
			}
		})
	}
}

func TestGenerateBatchPerItemFallbackUsesSingleCalls(t *testing.T) {
	var prompts []string
	provider := providers.Func(func(ctx context.Context, cfg providers.Config) (string, error) {
		prompts = append(prompts, cfg.Prompt)
		if len(prompts) == 1 {
			return "not json", nil
		}
		return `{"title": "Solo", "description": "Single item description"}`, nil
	})

	entries := newTestGenerator(provider).GenerateBatch(context.Background(), testPhotos(2), "beauty")
	if len(prompts) != 3 {
		t.Fatalf("Expected 1 batch call + 2 item calls, got %d calls", len(prompts))
	}
	for _, e := range entries {
		if e.Title != "Solo" {
			t.Errorf("Expected per-item title Solo, got %q", e.Title)
		}
	}
}

func TestGenerateBatchEmptyInput(t *testing.T) {
	provider := providers.Func(func(ctx context.Context, cfg providers.Config) (string, error) {
		t.Error("Provider should not be called for empty input")
		return "", nil
	})
	if entries := newTestGenerator(provider).GenerateBatch(context.Background(), nil, "toys"); entries != nil {
		t.Errorf("Expected nil for empty input, got %v", entries)
	}
}

func TestGenerateOneFallsBackOnFailure(t *testing.T) {
	provider := providers.Func(func(ctx context.Context, cfg providers.Config) (string, error) {
		return "", errors.New("unavailable")
	})

	alt := "vintage leather travel bag with brass buckles"
	title, description := newTestGenerator(provider).GenerateOne(context.Background(), alt)
	if title != alt {
		t.Errorf("Expected title %q, got %q", alt, title)
	}
	if len(description) < 400 || len(description) > 500 {
		t.Errorf("Fallback description length %d outside [400, 500]", len(description))
	}
	if !strings.HasPrefix(description, alt) {
		t.Error("Fallback description should start with the alt text")
	}
}

func TestFallbackContent(t *testing.T) {
	longAlt := strings.Repeat("very detailed description ", 10) // > 50 chars

	title, description := FallbackContent(longAlt)
	if len([]rune(title)) != 50 {
		t.Errorf("Expected title truncated to 50 chars, got %d", len([]rune(title)))
	}
	if len(description) < 400 || len(description) > 500 {
		t.Errorf("Description length %d outside [400, 500]", len(description))
	}
}

func TestGeneratePriceInvariant(t *testing.T) {
	g := newTestGenerator(nil)
	for i := 0; i < 1000; i++ {
		oldPrice, newPrice := g.GeneratePrice()
		if oldPrice < 100 || oldPrice > 10000 {
			t.Fatalf("Old price %v outside [100, 10000]", oldPrice)
		}
		expected := math.Round(oldPrice*0.9*100) / 100
		if newPrice != expected {
			t.Fatalf("New price %v != round(%v * 0.9, 2) = %v", newPrice, oldPrice, expected)
		}
	}
}

func TestTokenBudget(t *testing.T) {
	tests := []struct {
		batchSize int
		expected  int
	}{
		{1, 1600},
		{5, 4000},
		{11, 7600},
		{12, 8000}, // capped
		{20, 8000},
	}
	for _, tt := range tests {
		if got := tokenBudget(tt.batchSize); got != tt.expected {
			t.Errorf("tokenBudget(%d) = %d, expected %d", tt.batchSize, got, tt.expected)
		}
	}
}

func TestBatchTimeout(t *testing.T) {
	tests := []struct {
		batchSize int
		expected  time.Duration
	}{
		{1, 60 * time.Second},
		{6, 60 * time.Second},
		{7, 70 * time.Second},
		{20, 200 * time.Second},
	}
	for _, tt := range tests {
		if got := batchTimeout(tt.batchSize); got != tt.expected {
			t.Errorf("batchTimeout(%d) = %v, expected %v", tt.batchSize, got, tt.expected)
		}
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no fences", `[{"title":"A"}]`, `[{"title":"A"}]`},
		{"json fence", "```json\n[1]\n```", "[1]"},
		{"bare fence", "```\n[1]\n```", "[1]"},
		{"leading whitespace", "  \n```json\n[1]\n```  ", "[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.input); got != tt.expected {
				t.Errorf("stripFences(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseBatchResponseErrorKinds(t *testing.T) {
	if _, err := parseBatchResponse("nonsense", 2); !errors.Is(err, ErrBadJSON) {
		t.Errorf("Expected ErrBadJSON, got %v", err)
	}
	if _, err := parseBatchResponse(`[{"title":"A","description":"B"}]`, 2); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Expected ErrLengthMismatch, got %v", err)
	}
}
