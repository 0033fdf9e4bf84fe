package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public weatherapi.com endpoint.
const DefaultBaseURL = "http://api.weatherapi.com/v1"

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	Location *time.Location
	HTTP     *http.Client
	Now      func() time.Time
	Logger   *slog.Logger
}

// Client performs lookups against weatherapi.com.
type Client struct {
	baseURL string
	apiKey  string
	loc     *time.Location
	http    *http.Client
	now     func() time.Time
	logger  *slog.Logger
}

// NewClient builds a Client, filling defaults for unset fields.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTP
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		loc:     loc,
		http:    httpClient,
		now:     now,
		logger:  logger,
	}
}

type searchResult struct {
	Name    string `json:"name"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// SearchCities returns city suggestions for query. Queries shorter than
// MinQueryLength are rejected without contacting the API.
func (c *Client) SearchCities(ctx context.Context, query string) ([]Location, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinQueryLength {
		return nil, ErrQueryTooShort
	}

	var results []searchResult
	if err := c.get(ctx, "search.json", url.Values{"q": {query}}, &results); err != nil {
		return nil, err
	}

	locations := make([]Location, 0, len(results))
	for _, r := range results {
		locations = append(locations, Location(r))
	}
	return locations, nil
}

type forecastResponse struct {
	Forecast struct {
		ForecastDay []struct {
			Hour []struct {
				TempC     float64 `json:"temp_c"`
				Condition struct {
					Text string `json:"text"`
					Icon string `json:"icon"`
				} `json:"condition"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// Conditions returns the hourly weather at location for a DateTimeLayout
// value interpreted in the client's timezone.
func (c *Client) Conditions(ctx context.Context, location, dateTime string) (Conditions, error) {
	location = strings.TrimSpace(location)
	if location == "" || strings.TrimSpace(dateTime) == "" {
		return Conditions{}, fmt.Errorf("%w: location and dateTime are required", ErrInvalidRequest)
	}

	target, hour, err := ParseDateTime(dateTime, c.loc)
	if err != nil {
		return Conditions{}, err
	}
	mode, err := SelectMode(target, c.now())
	if err != nil {
		return Conditions{}, err
	}

	params := url.Values{
		"q":  {location},
		"dt": {target.Format("2006-01-02")},
	}
	endpoint := string(mode) + ".json"
	if mode == ModeForecast {
		params.Set("aqi", "no")
	}

	var resp forecastResponse
	if err := c.get(ctx, endpoint, params, &resp); err != nil {
		return Conditions{}, err
	}

	days := resp.Forecast.ForecastDay
	if len(days) == 0 || hour >= len(days[0].Hour) {
		return Conditions{}, fmt.Errorf("%w: no hourly data for %s", ErrUpstream, dateTime)
	}
	h := days[0].Hour[hour]
	return Conditions{
		Temperature: h.TempC,
		Condition:   h.Condition.Text,
		Icon:        h.Condition.Icon,
	}, nil
}

type timezoneResponse struct {
	Location struct {
		TzID string `json:"tz_id"`
	} `json:"location"`
}

// Timezone resolves location to an IANA timezone identifier.
func (c *Client) Timezone(ctx context.Context, location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", fmt.Errorf("%w: location is required", ErrInvalidRequest)
	}

	var resp timezoneResponse
	if err := c.get(ctx, "timezone.json", url.Values{"q": {location}}, &resp); err != nil {
		return "", err
	}
	if resp.Location.TzID == "" {
		return "", fmt.Errorf("%w: empty timezone for %q", ErrUpstream, location)
	}
	return resp.Location.TzID, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	target := c.baseURL + "/" + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	started := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.ErrorContext(ctx, "weather request failed", "endpoint", endpoint, "error", err)
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "weather request completed",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration_ms", c.now().Sub(started).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %d: %s", ErrUpstream, endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUpstream, endpoint, err)
	}
	return nil
}
