package retailers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/preciosya/backend/internal/domain"
)

// ClientOptions tunes the search service client
type ClientOptions struct {
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	MaxAttempts   int
}

// Client handles communication with the retailer search service
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	maxAttempts int
	backoff     func(attempt int) time.Duration
	logger      *slog.Logger
}

// NewClient creates a new search service client
func NewClient(baseURL string, opts ClientOptions, logger *slog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 10
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		maxAttempts: opts.MaxAttempts,
		backoff:     exponentialBackoff,
		logger:      logger.With(slog.String("component", "retailers")),
	}
}

// exponentialBackoff returns the wait before retrying after attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// SearchItem searches one product query across retailers
func (c *Client) SearchItem(ctx context.Context, req *domain.ItemRequest) (*domain.ItemResponse, error) {
	c.logger.Debug("SearchItem", slog.String("query", req.Query), slog.Int("retailers", len(req.Retailers)))

	var wire wireItemResponse
	if err := c.postJSON(ctx, "/retailers/item", req, &wire); err != nil {
		return nil, err
	}
	return MapItemResponse(&wire), nil
}

// SearchList searches every line of a shopping list across retailers
func (c *Client) SearchList(ctx context.Context, req *domain.ListRequest) (*domain.CatalogResponse, error) {
	c.logger.Debug("SearchList", slog.Int("items", len(req.Items)), slog.Int("retailers", len(req.Retailers)))

	var wire wireListResponse
	if err := c.postJSON(ctx, "/retailers/list", req, &wire); err != nil {
		return nil, err
	}
	return MapListResponse(&wire), nil
}

// postJSON posts body to path and decodes the reply into out. Transport
// failures and 5xx replies are retried with exponential backoff.
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, c.backoff(attempt-1)); err != nil {
				return err
			}
		}

		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		status, respBody, err := c.doRequest(ctx, path, payload)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("request error", slog.String("path", path), slog.Int("attempt", attempt), slog.Any("error", err))
			lastErr = err
			continue
		}

		if status < 200 || status > 299 {
			apiErr := &domain.SearchError{StatusCode: status, Message: errorMessage(respBody)}
			c.logger.Warn("API error",
				slog.String("path", path),
				slog.Int("attempt", attempt),
				slog.Int("status", status),
				slog.String("message", apiErr.Message),
			)
			if status < http.StatusInternalServerError {
				return apiErr
			}
			lastErr = apiErr
			continue
		}

		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", domain.ErrSearchAPIFailure, err)
		}
		return nil
	}

	c.logger.Error("all retries failed", slog.String("path", path), slog.Any("error", lastErr))
	return lastErr
}

// doRequest executes one POST and returns the status and body
func (c *Client) doRequest(ctx context.Context, path string, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "PreciosYa/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", domain.ErrSearchAPIFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read body: %v", domain.ErrSearchAPIFailure, err)
	}
	return resp.StatusCode, body, nil
}

// errorMessage extracts the "message" field of an error reply
func errorMessage(body []byte) string {
	var w wireError
	if err := json.Unmarshal(body, &w); err != nil || w.Message == "" {
		return "API error"
	}
	return w.Message
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ domain.SearchClient = (*Client)(nil)
