// Package unsplash looks up city photos through the Unsplash search API.
package unsplash

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/KusumaMurthy109/Elysian/pkg/metrics"
)

const (
	defaultBaseURL = "https://api.unsplash.com"
	defaultTimeout = 10 * time.Second
)

// Image is the subset of a search hit the app displays.
type Image struct {
	Provider     string `json:"provider"`
	ImageURL     string `json:"imageUrl"`
	Photographer string `json:"photographer"`
	SourceURL    string `json:"sourceUrl"`
}

// Client calls the Unsplash photo search endpoint.
type Client struct {
	accessKey  string
	baseURL    string
	httpClient *http.Client
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a client. An empty access key is allowed; lookups then
// short-circuit to ErrMissingAccessKey instead of hitting the network.
func NewClient(accessKey string, opts ...Option) *Client {
	c := &Client{
		accessKey:  accessKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// searchResponse mirrors the fields of the Unsplash search payload we read.
type searchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
	} `json:"results"`
}

// FetchCityImage searches for one landscape photo matching query.
func (c *Client) FetchCityImage(ctx context.Context, query string) (Image, error) {
	metrics.RecordImageLookup()

	if c.accessKey == "" {
		metrics.RecordImageLookupMiss()
		return Image{}, ErrMissingAccessKey
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "1")
	params.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return Image{}, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordImageLookupMiss()
		return Image{}, fmt.Errorf("%w: %w", ErrNoResult, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordImageLookupMiss()
		return Image{}, fmt.Errorf("%w: status %d", ErrNoResult, resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.RecordImageLookupMiss()
		return Image{}, fmt.Errorf("%w: %w", ErrNoResult, err)
	}
	if len(payload.Results) == 0 {
		metrics.RecordImageLookupMiss()
		return Image{}, ErrNoResult
	}

	photo := payload.Results[0]
	return Image{
		Provider:     "unsplash",
		ImageURL:     photo.URLs.Regular,
		Photographer: photo.User.Name,
		SourceURL:    photo.Links.HTML,
	}, nil
}
