package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-routing/internal/config"
)

// Scorer issues a classification request for a ticket subject. A failed
// call surfaces as the empty response, never as an error: the scoring
// pass sits off the request path and degrades to "no suggestion".
type Scorer interface {
	Search(ctx context.Context, subject string) ScoringResponse
}

// Client talks to the remote confidence scorer over HTTP. Each attempt
// carries its own deadline and failures are retried with exponential
// backoff before collapsing to the empty response.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	retries     int
	backoffBase time.Duration
	logger      *zap.Logger
}

// NewClient builds a scorer client from routing configuration.
func NewClient(cfg config.RoutingConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:     cfg.ScorerBaseURL,
		httpClient:  &http.Client{Timeout: cfg.RequestTimeout()},
		retries:     cfg.RetryAttempts,
		backoffBase: cfg.RetryBackoffBase(),
		logger:      logger,
	}
}

// Search queries the scorer with the ticket subject as free text.
func (c *Client) Search(ctx context.Context, subject string) ScoringResponse {
	endpoint, err := c.buildURL(subject)
	if err != nil {
		c.logger.Warn("scorer url invalid", zap.String("base_url", c.baseURL), zap.Error(err))
		return ScoringResponse{}
	}

	backoff := c.backoffBase
	for attempt := 0; ; attempt++ {
		resp, err := c.doSearch(ctx, endpoint)
		if err == nil {
			return resp
		}
		c.logger.Warn("scorer call failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		if attempt >= c.retries {
			return ScoringResponse{}
		}
		select {
		case <-ctx.Done():
			return ScoringResponse{}
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (c *Client) buildURL(subject string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("query", subject)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) doSearch(ctx context.Context, endpoint string) (ScoringResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ScoringResponse{}, err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return ScoringResponse{}, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return ScoringResponse{}, fmt.Errorf("scorer returned status %d", res.StatusCode)
	}

	var payload ScoringResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return ScoringResponse{}, fmt.Errorf("decode scorer response: %w", err)
	}
	return payload, nil
}
