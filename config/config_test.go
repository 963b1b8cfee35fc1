package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:     "single service - http",
			input:    "http",
			expected: map[ServiceMode]bool{ServiceModeHTTP: true},
		},
		{
			name:     "single service - worker",
			input:    "worker",
			expected: map[ServiceMode]bool{ServiceModeWorker: true},
		},
		{
			name:  "all services with spaces",
			input: " http , worker , reaper ",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:   true,
				ServiceModeWorker: true,
				ServiceModeReaper: true,
			},
		},
		{
			name:  "duplicate services",
			input: "http,http,worker",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:   true,
				ServiceModeWorker: true,
			},
		},
		{name: "empty string", input: "", expectError: true},
		{name: "only spaces and commas", input: " , , ", expectError: true},
		{name: "invalid service name", input: "http,scheduler", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseServices(tt.input)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestConfig_ServiceEnabledMethods(t *testing.T) {
	tests := []struct {
		name           string
		services       string
		expectedHTTP   bool
		expectedWorker bool
		expectedReaper bool
	}{
		{name: "http only", services: "http", expectedHTTP: true},
		{name: "worker only", services: "worker", expectedWorker: true},
		{name: "worker and reaper", services: "worker,reaper", expectedWorker: true, expectedReaper: true},
		{name: "invalid disables everything", services: "invalid-service"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AppConfig{Services: tt.services}

			if cfg.IsHTTPServerEnabled() != tt.expectedHTTP {
				t.Errorf("IsHTTPServerEnabled(): expected %v", tt.expectedHTTP)
			}
			if cfg.IsWorkerEnabled() != tt.expectedWorker {
				t.Errorf("IsWorkerEnabled(): expected %v", tt.expectedWorker)
			}
			if cfg.IsReaperEnabled() != tt.expectedReaper {
				t.Errorf("IsReaperEnabled(): expected %v", tt.expectedReaper)
			}
		})
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Services != "http,worker,reaper" {
		t.Errorf("unexpected default services %q", cfg.Services)
	}
	if cfg.Queue.MaxAttempts != 3 || cfg.Queue.BackoffBase != time.Second || cfg.Queue.BackoffMultiplier != 2 {
		t.Errorf("unexpected queue defaults: %+v", cfg.Queue)
	}
	if cfg.Research.Provider != ResearchProviderGemini || cfg.Research.Model != "gemini-2.0-flash" {
		t.Errorf("unexpected research defaults: %+v", cfg.Research)
	}
	if cfg.Research.TTL != 0 {
		t.Errorf("expected research to never expire by default, got %v", cfg.Research.TTL)
	}
	if cfg.Reaper.CompletedMaxAge != 24*time.Hour || cfg.Reaper.FailedMaxAge != 7*24*time.Hour {
		t.Errorf("unexpected reaper defaults: %+v", cfg.Reaper)
	}
	if cfg.Auth.Required() {
		t.Error("expected auth to be optional without credentials")
	}
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("API_KEY", " secret-key ")
	t.Setenv("AUTH_OIDC_ISSUER", "https://login.example.com/")
	t.Setenv("AUTH_OIDC_CLIENT_ID", "enrich-api")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	expected := AuthConfig{
		APIKey: "secret-key",
		OIDC: OIDCConfig{
			Issuer:   "https://login.example.com/",
			ClientID: "enrich-api",
		},
	}
	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
	if got := cfg.Auth.OIDC.DiscoveryURL(); got != "https://login.example.com/.well-known/openid-configuration" {
		t.Fatalf("unexpected discovery url %q", got)
	}
	if !cfg.Auth.Required() {
		t.Fatal("expected auth to be required")
	}
}

func TestResearchProviderKind_UnmarshalText(t *testing.T) {
	var k ResearchProviderKind
	if err := k.UnmarshalText([]byte(" HTTP ")); err != nil || k != ResearchProviderHTTP {
		t.Fatalf("expected http provider, got %q (%v)", k, err)
	}
	if err := k.UnmarshalText([]byte("openai")); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestResearchConfig_Sanitize(t *testing.T) {
	cfg := ResearchConfig{
		AttemptTimeout: time.Second,
		TTL:            -time.Hour,
		HTTP:           ResearchHTTPConfig{Timeout: time.Hour},
	}
	cfg.Sanitize()

	if cfg.AttemptTimeout != 5*time.Second {
		t.Errorf("expected attempt timeout clamp, got %v", cfg.AttemptTimeout)
	}
	if cfg.TTL != 0 {
		t.Errorf("expected negative ttl to be zeroed, got %v", cfg.TTL)
	}
	if cfg.HTTP.Timeout != cfg.AttemptTimeout {
		t.Errorf("expected http timeout bounded by attempt timeout, got %v", cfg.HTTP.Timeout)
	}
	if cfg.Provider != ResearchProviderGemini {
		t.Errorf("expected gemini default, got %q", cfg.Provider)
	}
}

func TestQueueConfig_Sanitize(t *testing.T) {
	cfg := QueueConfig{MaxAttempts: 0, BackoffBase: -time.Second, BackoffMultiplier: 0.5, HeartbeatInterval: 5 * time.Second}
	cfg.Sanitize()

	if cfg.MaxAttempts != 1 {
		t.Errorf("expected max attempts clamp, got %d", cfg.MaxAttempts)
	}
	if cfg.BackoffBase != 0 || cfg.BackoffMultiplier != 1 {
		t.Errorf("unexpected backoff after sanitize: %v x%v", cfg.BackoffBase, cfg.BackoffMultiplier)
	}
	if cfg.InflightTTL != time.Minute {
		t.Errorf("expected inflight ttl clamp, got %v", cfg.InflightTTL)
	}
	if cfg.HeartbeatTTL() != 15*time.Second {
		t.Errorf("unexpected heartbeat ttl %v", cfg.HeartbeatTTL())
	}
}

func TestReaperConfig_Sanitize(t *testing.T) {
	cfg := ReaperConfig{BatchSize: 50000}
	cfg.Sanitize()

	if cfg.Interval != time.Minute || cfg.PendingMaxAge != 5*time.Minute {
		t.Errorf("unexpected clamps: %+v", cfg)
	}
	if cfg.BatchSize != 10000 {
		t.Errorf("expected batch size clamp, got %d", cfg.BatchSize)
	}
}

func TestValidServiceModes(t *testing.T) {
	expected := []ServiceMode{ServiceModeHTTP, ServiceModeWorker, ServiceModeReaper}
	if !reflect.DeepEqual(ValidServiceModes(), expected) {
		t.Errorf("expected %v, got %v", expected, ValidServiceModes())
	}
}

func TestMetricsConfig_Sanitize(t *testing.T) {
	cfg := MetricsConfig{StatsdAddress: " ", Prefix: " "}

	cfg.Sanitize()

	if cfg.IsEnabled() {
		t.Fatalf("expected metrics to be disabled when address is empty")
	}
	if cfg.Prefix != "enrichd" {
		t.Fatalf("expected default prefix, got %q", cfg.Prefix)
	}

	cfg = MetricsConfig{StatsdAddress: " statsd:1234 ", Prefix: "research."}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to be enabled")
	}
	if cfg.StatsdAddress != "statsd:1234" {
		t.Fatalf("expected address to be trimmed, got %q", cfg.StatsdAddress)
	}
	if cfg.Prefix != "research" {
		t.Fatalf("expected trailing dot to be dropped, got %q", cfg.Prefix)
	}
}

func TestFailureAlertConfig_Sanitize(t *testing.T) {
	cfg := FailureAlertConfig{
		Timeout:             0,
		RetryLimit:          -1,
		SlackWebhookURL:     " ",
		SlackChannel:        "  ",
		PagerDutyRoutingKey: " ",
	}

	cfg.Sanitize()

	if cfg.Timeout <= 0 {
		t.Fatalf("expected timeout to fall back to default, got %v", cfg.Timeout)
	}
	if cfg.RetryLimit < 0 {
		t.Fatalf("expected retry limit to be clamped to >= 0, got %d", cfg.RetryLimit)
	}
	if cfg.Enabled() {
		t.Fatal("expected alerts to be disabled without credentials")
	}

	cfg = FailureAlertConfig{
		SlackWebhookURL: " https://hooks.slack.com/services/test ",
		JobStatusURL:    "https://api.example.com/api/research/jobs/",
	}
	cfg.Sanitize()

	if !cfg.SlackEnabled() || !cfg.Enabled() {
		t.Fatal("expected slack alerts to be enabled by the webhook url")
	}
	if cfg.PagerDutyEnabled() {
		t.Fatal("expected pagerduty to stay disabled without a routing key")
	}
	if cfg.JobStatusURL != "https://api.example.com/api/research/jobs" {
		t.Fatalf("expected trailing slash to be trimmed, got %q", cfg.JobStatusURL)
	}
}
