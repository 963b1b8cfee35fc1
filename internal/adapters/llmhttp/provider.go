// Package llmhttp implements the research provider against a generic
// JSON-over-HTTP completion endpoint.
//
// The request body is rendered from a text/template with .Prompt and .Model
// and the answer text is selected from the JSON response with a JMESPath
// expression, so most chat-completion style APIs work without code changes.
package llmhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/yuvrajjangir/AlphaAI-Backend/config"
)

const maxResponseBytes = 4 << 20

// ErrNoText is returned when the text path selects nothing usable.
var ErrNoText = errors.New("response contained no text at the configured path")

// StatusError reports a non-2xx response from the endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("research endpoint returned %d: %s", e.StatusCode, e.Body)
}

// Options configures the provider.
type Options struct {
	Config     config.ResearchHTTPConfig
	Model      string
	HTTPClient *http.Client // Optional base client
}

// Provider posts prompts to an HTTP endpoint.
type Provider struct {
	endpoint    string
	model       string
	body        *template.Template
	textPath    string
	headerName  string
	headerValue string
	client      *http.Client
}

type bodyData struct {
	Prompt string
	Model  string
}

// New validates the configuration and builds the provider.
func New(opts Options) (*Provider, error) {
	cfg := opts.Config
	if cfg.Endpoint == "" {
		return nil, errors.New("research http endpoint is required")
	}
	if cfg.TextPath == "" {
		return nil, errors.New("research http text path is required")
	}
	if _, err := jmespath.Compile(cfg.TextPath); err != nil {
		return nil, fmt.Errorf("invalid text path %q: %w", cfg.TextPath, err)
	}
	tmpl, err := template.New("body").Funcs(template.FuncMap{"json": toJSON}).Parse(cfg.BodyTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse body template: %w", err)
	}

	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: cfg.Timeout}
	}
	client := base
	if cfg.UsesClientCredentials() {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		client = cc.Client(tokenCtx)
		client.Timeout = base.Timeout
	}

	return &Provider{
		endpoint:    cfg.Endpoint,
		model:       opts.Model,
		body:        tmpl,
		textPath:    cfg.TextPath,
		headerName:  cfg.HeaderName,
		headerValue: cfg.HeaderValue,
		client:      client,
	}, nil
}

func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Name identifies the provider in search logs.
func (p *Provider) Name() string { return "HTTP" }

// Generate renders the request body for prompt, posts it and extracts the answer text.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	var buf bytes.Buffer
	if err := p.body.Execute(&buf, bodyData{Prompt: prompt, Model: p.model}); err != nil {
		return "", fmt.Errorf("render request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.headerName != "" && p.headerValue != "" {
		req.Header.Set(p.headerName, p.headerValue)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call research endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 256)}
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	found, err := jmespath.Search(p.textPath, doc)
	if err != nil {
		return "", fmt.Errorf("evaluate text path: %w", err)
	}
	text, ok := found.(string)
	if !ok || strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
