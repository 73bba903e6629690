// Package pexels queries the Pexels image search API and downloads photos.
package pexels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Pexels v1 API prefix.
const DefaultBaseURL = "https://api.pexels.com/v1"

// maxPerPage is the Pexels API page size ceiling.
const maxPerPage = 80

// Photo is one image record returned by the search API.
type Photo struct {
	ID  int    `json:"id"`
	Alt string `json:"alt"`
	Src struct {
		Original string `json:"original"`
		Large    string `json:"large"`
		Medium   string `json:"medium"`
	} `json:"src"`
}

// AltText returns the photo description, with a generic placeholder for
// photos the upstream left unlabeled.
func (p Photo) AltText() string {
	if p.Alt == "" {
		return "Product image"
	}
	return p.Alt
}

// Client fetches photos from a Pexels-compatible API.
type Client struct {
	apiKey     string
	baseURL    string
	pageSize   int
	maxPages   int
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *gocache.Cache
}

// New creates a new Pexels client. An empty baseURL selects DefaultBaseURL.
// pageSize is clamped to the API ceiling of 80; maxPages bounds pagination
// against a misbehaving or rate-limited upstream.
func New(apiKey, baseURL string, pageSize, maxPages int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if pageSize < 1 || pageSize > maxPerPage {
		pageSize = maxPerPage
	}
	if maxPages < 1 {
		maxPages = 10
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		pageSize:   pageSize,
		maxPages:   maxPages,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		// Pexels allows 200 req/hour on the free tier; 1 req/sec keeps
		// bursts of pagination well under that.
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		cache:   gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// Search issues one search request and returns the photos on that page.
// Transport failures and non-200 statuses are returned as errors; the
// caller decides whether to degrade.
func (c *Client) Search(ctx context.Context, query string, perPage, page int) ([]Photo, error) {
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	cacheKey := query + "|" + strconv.Itoa(perPage) + "|" + strconv.Itoa(page)
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]Photo), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search images: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search API returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Photos       []Photo `json:"photos"`
		TotalResults int     `json:"total_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	c.cache.Set(cacheKey, response.Photos, gocache.DefaultExpiration)
	return response.Photos, nil
}

// FetchCandidatePool paginates search results for a theme and returns a
// randomized sample sized between minImages and maxImages.
//
// Pagination stops at the first empty page, once the pool reaches
// maxImages, or at the page ceiling. A request failure mid-pagination
// keeps the partial pool rather than failing the run; a smaller catalog
// beats no catalog.
func (c *Client) FetchCandidatePool(ctx context.Context, theme string, minImages, maxImages int) []Photo {
	var pool []Photo

	for page := 1; page <= c.maxPages && len(pool) < maxImages; page++ {
		photos, err := c.Search(ctx, theme, c.pageSize, page)
		if err != nil {
			slog.Warn("Search failed mid-pagination, keeping partial pool",
				"theme", theme, "page", page, "pool_size", len(pool), "error", err)
			break
		}
		if len(photos) == 0 {
			break
		}
		pool = append(pool, photos...)
	}

	return samplePool(pool, minImages, maxImages)
}

// samplePool picks a random subset of the pool. If the pool is smaller
// than minImages the whole pool is returned, shuffled.
func samplePool(pool []Photo, minImages, maxImages int) []Photo {
	shuffled := make([]Photo, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if len(shuffled) < minImages {
		return shuffled
	}

	maxSelectable := maxImages
	if len(shuffled) < maxSelectable {
		maxSelectable = len(shuffled)
	}
	count := minImages + rand.IntN(maxSelectable-minImages+1)
	return shuffled[:count]
}

// Download fetches raw image bytes and writes them verbatim to destPath,
// creating parent directories as needed.
func (c *Client) Download(ctx context.Context, imageURL, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image URL returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read image data: %w", err)
	}

	if err := os.WriteFile(destPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}

	return nil
}
