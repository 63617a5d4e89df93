package tax

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Client calls an external batch tax microservice (PolicyEngine-style).
// Transient failures are retried with backoff; a non-2xx response is an
// error the simulator can choose to fall back from.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
	log     zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger attaches a logger; the default discards everything.
func WithClientLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// WithRetryMax overrides the retry budget.
func WithRetryMax(n int) ClientOption {
	return func(c *Client) { c.http.RetryMax = n }
}

// NewClient builds a tax service client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 60 * time.Second
	rc.Logger = nil

	c := &Client{
		baseURL: baseURL,
		http:    rc,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ComputeTaxes posts the batch to the service and decodes per-path taxes.
func (c *Client) ComputeTaxes(ctx context.Context, req *BatchRequest) (*BatchResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encoding tax batch request")
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/taxes/batch", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building tax batch request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "calling tax service")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("tax service returned status %d: %s", resp.StatusCode, snippet)
	}

	var result BatchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decoding tax batch response")
	}
	n := req.Paths()
	if len(result.TotalTax) != n {
		return nil, errors.Errorf("tax service returned %d entries, want %d", len(result.TotalTax), n)
	}
	if len(result.FederalTax) != n || len(result.StateTax) != n {
		return nil, errors.New("tax service response missing per-path components")
	}

	c.log.Debug().
		Int("paths", n).
		Int("year", req.Year).
		Dur("elapsed", time.Since(start)).
		Msg("tax batch computed")
	return &result, nil
}
