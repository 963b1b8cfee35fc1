package llmhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuvrajjangir/AlphaAI-Backend/config"
)

const defaultBody = `{"model":{{json .Model}},"messages":[{"role":"user","content":{{json .Prompt}}}]}`

func baseConfig(endpoint string) config.ResearchHTTPConfig {
	return config.ResearchHTTPConfig{
		Endpoint:     endpoint,
		BodyTemplate: defaultBody,
		TextPath:     "choices[0].message.content",
		HeaderName:   "Authorization",
		Timeout:      5 * time.Second,
	}
}

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.ResearchHTTPConfig)
	}{
		{name: "missing endpoint", mutate: func(c *config.ResearchHTTPConfig) { c.Endpoint = "" }},
		{name: "missing text path", mutate: func(c *config.ResearchHTTPConfig) { c.TextPath = "" }},
		{name: "bad text path", mutate: func(c *config.ResearchHTTPConfig) { c.TextPath = "choices[" }},
		{name: "bad template", mutate: func(c *config.ResearchHTTPConfig) { c.BodyTemplate = "{{.Prompt" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig("http://example.invalid")
			tt.mutate(&cfg)
			_, err := New(Options{Config: cfg})
			require.Error(t, err)
		})
	}
}

func TestProvider_Generate(t *testing.T) {
	var got chatRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"[{\"title\":\"t\"}]"}}]}`))
	}))
	defer srv.Close()

	cfg := baseConfig(srv.URL)
	cfg.HeaderValue = "Bearer static"
	p, err := New(Options{Config: cfg, Model: "gpt-test", HTTPClient: srv.Client()})
	require.NoError(t, err)

	text, err := p.Generate(context.Background(), `Research "Acme"`+"\nnow")
	require.NoError(t, err)
	assert.Equal(t, `[{"title":"t"}]`, text)
	assert.Equal(t, "gpt-test", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "Research \"Acme\"\nnow", got.Messages[0].Content)
	assert.Equal(t, "Bearer static", auth)
}

func TestProvider_GenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "non-2xx",
			status: http.StatusBadGateway,
			body:   `{"error":"upstream"}`,
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusBadGateway, se.StatusCode)
			},
		},
		{
			name:   "missing text",
			status: http.StatusOK,
			body:   `{"choices":[]}`,
			check:  func(t *testing.T, err error) { require.ErrorIs(t, err, ErrNoText) },
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   `<html>`,
			check:  func(t *testing.T, err error) { require.ErrorContains(t, err, "decode response") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p, err := New(Options{Config: baseConfig(srv.URL), HTTPClient: srv.Client()})
			require.NoError(t, err)
			_, err = p.Generate(context.Background(), "prompt")
			tt.check(t, err)
		})
	}
}

func TestProvider_ClientCredentials(t *testing.T) {
	mux := http.NewServeMux()
	tokenCalls := 0
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"cc-token","token_type":"bearer","expires_in":3600}`))
	})
	var auth []string
	mux.HandleFunc("/complete", func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := baseConfig(srv.URL + "/complete")
	cfg.TokenURL = srv.URL + "/token"
	cfg.ClientID = "enrich"
	cfg.ClientSecret = "s3cret"
	p, err := New(Options{Config: cfg, HTTPClient: srv.Client()})
	require.NoError(t, err)

	for range 2 {
		text, err := p.Generate(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Equal(t, "ok", text)
	}
	assert.Equal(t, []string{"Bearer cc-token", "Bearer cc-token"}, auth)
	assert.Equal(t, 1, tokenCalls)
}
