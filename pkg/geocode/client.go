package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/sofiamendes/wanderstay-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://nominatim.openstreetmap.org"
	defaultUserAgent           = "wanderstay-backend"
	requestBodyReadLimit int64 = 1024
)

var errUserAgentRequired = errors.New("geocoder user agent is required")

// Client wraps the Nominatim search API used to place listings on the map.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Nominatim base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the geocoder given the identifying user agent Nominatim requires.
func NewClient(userAgent string, opts ...Option) (*Client, error) {
	trimmedAgent := strings.TrimSpace(userAgent)
	if trimmedAgent == "" {
		return nil, errUserAgentRequired
	}

	client := &Client{
		userAgent:  trimmedAgent,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// Coordinates is the resolved latitude/longitude pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// DefaultCoordinates is used when every fallback query comes back empty, so a
// listing always renders somewhere sensible on the map.
var DefaultCoordinates = Coordinates{Latitude: 48.8566, Longitude: 2.3522}

// Resolve geocodes the freeform address parts, dropping the most specific part
// on each empty result until something matches. It never fails on an empty
// result set; callers get DefaultCoordinates instead.
func (c *Client) Resolve(ctx context.Context, parts ...string) (Coordinates, error) {
	if c == nil {
		return Coordinates{}, pkgerrors.New(pkgerrors.CodeDependency, "geocoder not configured")
	}

	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return Coordinates{}, pkgerrors.New(pkgerrors.CodeValidation, "at least one address part is required")
	}

	for start := 0; start < len(cleaned); start++ {
		query := strings.Join(cleaned[start:], ", ")
		coords, found, err := c.search(ctx, query)
		if err != nil {
			return Coordinates{}, err
		}
		if found {
			return coords, nil
		}
	}

	return DefaultCoordinates, nil
}

func (c *Client) search(ctx context.Context, query string) (Coordinates, bool, error) {
	endpoint := fmt.Sprintf("%s/search?%s", strings.TrimRight(c.baseURL, "/"), url.Values{
		"q":      []string{query},
		"format": []string{"json"},
		"limit":  []string{"1"},
	}.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Coordinates{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build geocode request")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Coordinates{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute geocode request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return Coordinates{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "geocode request failed")
	}

	var apiResp []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Coordinates{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode geocode response")
	}

	if len(apiResp) == 0 {
		return Coordinates{}, false, nil
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(apiResp[0].Lat), 64)
	if err != nil {
		return Coordinates{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse geocode latitude")
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(apiResp[0].Lon), 64)
	if err != nil {
		return Coordinates{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse geocode longitude")
	}

	return Coordinates{Latitude: lat, Longitude: lon}, true, nil
}
