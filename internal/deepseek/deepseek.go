package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/storeforge/catalogen/internal/providers"
)

// DefaultBaseURL is the DeepSeek chat-completions endpoint prefix. Any
// OpenAI-compatible endpoint works here.
const DefaultBaseURL = "https://api.deepseek.com/v1"

// DeepSeek is a provider for the DeepSeek chat-completions API
type DeepSeek struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New returns a new DeepSeek provider. An empty baseURL selects DefaultBaseURL.
func New(apiKey, baseURL string) *DeepSeek {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &DeepSeek{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// Complete sends one user-role prompt and returns the raw completion text
func (d *DeepSeek) Complete(ctx context.Context, config providers.Config) (string, error) {
	requestBody, err := json.Marshal(map[string]interface{}{
		"model": config.Model,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": config.Prompt,
			},
		},
		"max_tokens":  config.MaxTokens,
		"temperature": config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", d.baseURL+"/chat/completions", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from DeepSeek")
	}

	return response.Choices[0].Message.Content, nil
}
