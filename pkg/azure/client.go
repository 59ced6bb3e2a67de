// Package azure implements client.VisionClient on top of the Computer Vision
// v3.1 "analyze" operation.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/menta2k/camera-analyzer/pkg/types"
)

const (
	// AnalyzePath is appended to the configured endpoint
	AnalyzePath = "/vision/v3.1/analyze"
	// SubscriptionKeyHeader carries the service credential
	SubscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

	DefaultLanguage = "es"
	DefaultTimeout  = 30 * time.Second
)

// DefaultFeatures are the visual features requested on every call
var DefaultFeatures = []string{"Objects", "People"}

// StatusError is returned when the service answers with a non-success status
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("vision service returned status %d", e.StatusCode)
	}
	if e.Code == "" {
		return fmt.Sprintf("vision service returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("vision service returned status %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the remote analysis service
type Client struct {
	endpoint   string
	apiKey     string
	language   string
	features   []string
	httpClient *http.Client
}

// Option customizes a Client
type Option func(*Client)

// WithLanguage sets the label language
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithFeatures overrides the requested visual features
func WithFeatures(features ...string) Option {
	return func(c *Client) {
		if len(features) > 0 {
			c.features = features
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a client for the service rooted at endpoint
func NewClient(endpoint, apiKey string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported endpoint scheme: %q", parsed.Scheme)
	}

	c := &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		apiKey:     apiKey,
		language:   DefaultLanguage,
		features:   DefaultFeatures,
		httpClient: newHTTPClient(DefaultTimeout),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AnalyzeURL returns the full request URL including the query string
func (c *Client) AnalyzeURL() string {
	features := make([]string, len(c.features))
	for i, f := range c.features {
		features[i] = url.QueryEscape(f)
	}
	return fmt.Sprintf("%s%s?visualFeatures=%s&language=%s",
		c.endpoint, AnalyzePath, strings.Join(features, ","), url.QueryEscape(c.language))
}

// Analyze posts the raw image bytes and parses the detections
func (c *Client) Analyze(ctx context.Context, image []byte) (*types.AnalysisResult, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.AnalyzeURL(), bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set(SubscriptionKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, body)
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

func newStatusError(status int, body []byte) *StatusError {
	se := &StatusError{StatusCode: status}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		se.Code = env.Error.Code
		se.Message = env.Error.Message
		return se
	}
	se.Message = strings.TrimSpace(string(body))
	return se
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
