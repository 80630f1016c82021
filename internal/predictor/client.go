package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/acadlabs/bibliometer/internal/resilience"
)

const requestTimeout = 10 * time.Second

// Client talks to the external ML scoring service. Its output is advisory:
// any failure collapses to "no prediction available" and the caller proceeds
// with the locally computed total.
type Client struct {
	url     string
	columns []string
	http    *http.Client
	breaker *resilience.CircuitBreaker
}

// prediction is the remote response. Two field names are accepted for the
// predicted value; older deployments of the service use the short one.
type prediction struct {
	PredictedScore *float64 `json:"predicted_score"`
	Score          *float64 `json:"score"`
}

// NewClient creates a predictor client for the given endpoint URL and
// canonical column order. An empty URL disables the client.
func NewClient(url string, columns []string) *Client {
	return &Client{
		url:     url,
		columns: columns,
		http:    &http.Client{Timeout: requestTimeout},
		breaker: resilience.NewCircuitBreaker(resilience.Config{}),
	}
}

// Enabled reports whether a predictor endpoint is configured.
func (c *Client) Enabled() bool {
	return c.url != ""
}

// Predict sends the indicator vector to the scoring service and returns the
// predicted value. Indicators absent from the canonical column list are
// zero-filled in canonical order. The bool result is false when no usable
// prediction was obtained; that outcome is logged, never fatal.
func (c *Client) Predict(ctx context.Context, indicators map[string]float64) (float64, bool) {
	if !c.Enabled() {
		return 0, false
	}

	payload := make(map[string]float64, len(c.columns))
	for _, col := range c.columns {
		payload[col] = indicators[col] // missing columns zero-fill
	}

	var value float64
	var ok bool
	err := c.breaker.Call(func() error {
		v, o, err := c.post(ctx, payload)
		value, ok = v, o
		return err
	})
	if err != nil {
		slog.Warn("ML prediction unavailable, using local score", "url", c.url, "error", err)
		return 0, false
	}
	return value, ok
}

func (c *Client) post(ctx context.Context, payload map[string]float64) (float64, bool, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, false, fmt.Errorf("failed to encode indicators: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("ml service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, false, fmt.Errorf("ml service returned status %d: %s", resp.StatusCode, string(raw))
	}

	var pred prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return 0, false, fmt.Errorf("failed to decode ml response: %w", err)
	}

	switch {
	case pred.PredictedScore != nil:
		return *pred.PredictedScore, true, nil
	case pred.Score != nil:
		return *pred.Score, true, nil
	default:
		slog.Warn("ML service response carried no score field", "url", c.url)
		return 0, false, nil
	}
}
