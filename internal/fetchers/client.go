package fetchers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"salesdash/internal/logger"
	"salesdash/internal/models"
)

// FetchObserver is told how long each request took
type FetchObserver interface {
	ObserveFetch(endpoint string, d time.Duration)
}

// Client reads JSON from the metrics API
type Client struct {
	http     *resty.Client
	log      *logger.Logger
	observer FetchObserver
}

// NewClient creates a metrics API client. Requests are never retried:
// a failed chart stays failed until the user triggers it again.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &Client{
		http: client,
		log:  logger.WithComponent("fetchers"),
	}
}

// SetObserver installs a latency observer. Call before first use.
func (c *Client) SetObserver(o FetchObserver) {
	c.observer = o
}

// BaseURL returns the API root requests are sent to
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// Get fetches path with query and returns the raw body. The response is
// rejected when the status is not 2xx or when the body is an object
// carrying a non-empty "error" field. widget names the chart or card the
// request belongs to and is attached to any error.
func (c *Client) Get(ctx context.Context, widget, path string, query url.Values) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	start := time.Now()
	resp, err := req.Get(path)
	if c.observer != nil {
		c.observer.ObserveFetch(path, time.Since(start))
	}
	if err != nil {
		c.log.Error("request failed", err, logger.Fields{"widget": widget, "path": path})
		return nil, models.NewChartError(widget, models.ErrNetworkFailure, "Failed to load data", fmt.Errorf("failed to fetch %s: %w", path, err))
	}

	body := resp.Body()
	serverMsg := errorField(body)

	if !resp.IsSuccess() {
		msg := fmt.Sprintf("HTTP error! Status: %d", resp.StatusCode())
		if serverMsg != "" {
			msg = fmt.Sprintf("HTTP %d: %s", resp.StatusCode(), serverMsg)
		}
		c.log.Warn("non-OK status", logger.Fields{"widget": widget, "path": path, "status": resp.StatusCode()})
		return nil, models.NewChartError(widget, models.ErrNetworkFailure, msg, nil)
	}
	if serverMsg != "" {
		c.log.Warn("server reported error", logger.Fields{"widget": widget, "path": path, "error": serverMsg})
		return nil, models.NewChartError(widget, models.ErrServerReported, serverMsg, nil)
	}

	c.log.Debug("fetched", logger.Fields{"widget": widget, "path": path, "bytes": len(body)})
	return body, nil
}

// GetJSON fetches path, validates the body against schema when one is
// given, and decodes it into out.
func (c *Client) GetJSON(ctx context.Context, widget, path string, query url.Values, schema *Schema, out interface{}) error {
	body, err := c.Get(ctx, widget, path, query)
	if err != nil {
		return err
	}
	return Decode(widget, body, schema, out)
}

// Decode validates and unmarshals a payload
func Decode(widget string, body []byte, schema *Schema, out interface{}) error {
	if schema != nil {
		if err := schema.Validate(widget, body); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return models.NewChartError(widget, models.ErrMalformedPayload, "Invalid data format received", err)
	}
	return nil
}

// errorField extracts a non-empty top-level "error" string from a JSON object
func errorField(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}
	var probe struct {
		Error interface{} `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil || probe.Error == nil {
		return ""
	}
	switch v := probe.Error.(type) {
	case string:
		return v
	case bool:
		if v {
			return "request failed"
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}
