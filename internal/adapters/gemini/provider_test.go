package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p, err := New(context.Background(), Options{
		APIKey:     "test-key",
		Model:      "gemini-test",
		BaseURL:    srv.URL + "/",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return p
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Options{APIKey: "  "})
	require.Error(t, err)
}

func TestProvider_Generate(t *testing.T) {
	var gotPath, gotKey, gotPrompt string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		var body struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && len(body.Contents) > 0 && len(body.Contents[0].Parts) > 0 {
			gotPrompt = body.Contents[0].Parts[0].Text
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"company_value_prop\":\"x\"}"}]}}]}`))
	})

	text, err := p.Generate(context.Background(), "research Acme")
	require.NoError(t, err)
	assert.Equal(t, `{"company_value_prop":"x"}`, text)
	assert.True(t, strings.HasSuffix(gotPath, "/models/gemini-test:generateContent"), gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "research Acme", gotPrompt)
	assert.Equal(t, "Gemini", p.Name())
}

func TestProvider_GenerateEmpty(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := p.Generate(context.Background(), "prompt")
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestProvider_GenerateAPIError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := p.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
