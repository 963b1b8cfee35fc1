// Package gemini implements the research provider on top of the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("gemini returned no text")

// Options configures the Gemini provider.
type Options struct {
	APIKey string // Required
	Model  string

	// BaseURL and HTTPClient override the API endpoint, mostly for tests.
	BaseURL    string
	HTTPClient *http.Client
}

// Provider generates research text with a Gemini model.
type Provider struct {
	client *genai.Client
	model  string
}

// New creates a Gemini-backed provider.
func New(ctx context.Context, opts Options) (*Provider, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini API key is required")
	}
	model := opts.Model
	if model == "" {
		model = defaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Provider{client: client, model: model}, nil
}

// Name identifies the provider in search logs.
func (p *Provider) Name() string { return "Gemini" }

// Generate sends prompt as a single user turn and returns the concatenated text parts.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("gemini %s: status %d: %w", p.model, apiErr.Code, err)
		}
		return "", fmt.Errorf("gemini %s: %w", p.model, err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
