package ollama

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/menta2k/camera-analyzer/pkg/client"
	"github.com/menta2k/camera-analyzer/pkg/types"
)

// DefaultModel is used when no model is configured
const DefaultModel = "llava"

// Client wraps the Ollama API client
type Client struct {
	client   *api.Client
	model    string
	language string
}

// NewClient creates a new Ollama client
func NewClient(ollamaURL, model, language string) (*Client, error) {
	// Parse the provided URL
	parsedURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid URL: %q", ollamaURL)
	}

	// Create base URL from the provided URL (removing path like /api/chat)
	baseURL := &url.URL{
		Scheme: parsedURL.Scheme,
		Host:   parsedURL.Host,
	}

	if model == "" {
		model = DefaultModel
	}

	// Create client with the specified URL, ignoring environment
	return &Client{
		client:   api.NewClient(baseURL, http.DefaultClient),
		model:    model,
		language: language,
	}, nil
}

// Analyze asks the model for people and objects in the image
func (c *Client) Analyze(ctx context.Context, img []byte) (*types.AnalysisResult, error) {
	// Local models on CPU are slow, give them room unless the caller set a deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %v", err)
	}

	streamFalse := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: client.DetectionPrompt(cfg.Width, cfg.Height, c.language),
				Images:  []api.ImageData{api.ImageData(img)},
			},
		},
		Stream:  &streamFalse,
		Options: map[string]any{"temperature": 0.1},
	}

	var responseContent string
	err = c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		responseContent += resp.Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat error: %v", err)
	}

	if responseContent == "" {
		return nil, fmt.Errorf("empty response from ollama")
	}

	return client.ParseModelResult(responseContent)
}
