package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/yegors/tailwinds/internal/metrics"
	"github.com/yegors/tailwinds/pkg/logger"
)

// ErrNoMETAR is returned when the provider answers without a METAR line
var ErrNoMETAR = errors.New("no METAR data received")

// RawReport is the undecoded text returned for one station
type RawReport struct {
	Station string
	Metar   string
	Taf     string // bulletin starting with "TAF", empty when none was issued
}

// Client handles HTTP requests to the weather text API
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logger.Logger
}

// NewClient creates a new weather API client
func NewClient(config Config, log *logger.Logger) *Client {
	limit := rate.Inf
	if config.RateLimitPerSecond > 0 {
		limit = rate.Limit(config.RateLimitPerSecond)
	}
	burst := config.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.RequestTimeoutSeconds) * time.Second,
		},
		limiter: rate.NewLimiter(limit, burst),
		logger:  log.Named("weather-client"),
	}
}

// FetchRaw fetches the latest METAR and TAF text for a station
func (c *Client) FetchRaw(ctx context.Context, station string) (*RawReport, error) {
	q := url.Values{}
	q.Set("ids", station)
	q.Set("taf", "true")
	q.Set("hours", "0")
	q.Set("order", "id,-obs")
	q.Set("sep", "true")
	endpoint := fmt.Sprintf("%s/metar?%s", strings.TrimRight(c.config.APIBaseURL, "/"), q.Encode())

	body, err := c.fetchWithRetry(ctx, endpoint, station)
	if err != nil {
		metrics.FetchTotal.WithLabelValues(station, "error").Inc()
		return nil, err
	}

	raw, err := SplitRaw(station, body)
	if err != nil {
		metrics.FetchTotal.WithLabelValues(station, "empty").Inc()
		return nil, err
	}
	metrics.FetchTotal.WithLabelValues(station, "ok").Inc()
	return raw, nil
}

// SplitRaw separates the provider's text body into the METAR line and the
// TAF bulletin that follows it
func SplitRaw(station, body string) (*RawReport, error) {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoMETAR, station)
	}

	raw := &RawReport{Station: station, Metar: strings.TrimSpace(lines[0])}
	if taf := strings.TrimSpace(strings.Join(lines[1:], "\n")); taf != "" {
		if !strings.HasPrefix(taf, "TAF") {
			taf = "TAF " + taf
		}
		raw.Taf = taf
	}
	return raw, nil
}

// fetchWithRetry performs the HTTP request with retry logic and exponential backoff
func (c *Client) fetchWithRetry(ctx context.Context, endpoint, station string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoffDuration := time.Duration(500*(1<<uint(attempt-1))) * time.Millisecond
			c.logger.Info("Retrying weather fetch",
				logger.String("station", station),
				logger.Int("attempt", attempt),
				logger.Duration("backoff", backoffDuration))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoffDuration):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait canceled: %w", err)
		}

		body, err := c.get(ctx, endpoint)
		if err != nil {
			lastErr = err
			c.logger.Warn("Weather API request failed, may retry",
				logger.String("station", station),
				logger.Error(err),
				logger.Int("attempt", attempt+1),
				logger.Int("max_attempts", c.config.MaxRetries+1))
			continue
		}

		if attempt > 0 {
			c.logger.Info("Fetched weather after retries",
				logger.String("station", station),
				logger.Int("attempts_needed", attempt+1))
		}
		return body, nil
	}

	c.logger.Error("All attempts to fetch weather failed",
		logger.String("station", station),
		logger.Error(lastErr),
		logger.Int("max_attempts", c.config.MaxRetries+1))
	return "", lastErr
}

func (c *Client) get(ctx context.Context, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("error building weather request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making request to weather API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("error reading weather response: %w", err)
	}
	return string(data), nil
}
