package config

import (
	"strings"
	"time"
)

const defaultMetricsPrefix = "enrichd"

// ObservabilityConfig groups the statsd sink and the alerts raised when a research job fails for good.
type ObservabilityConfig struct {
	Metrics       MetricsConfig
	FailureAlerts FailureAlertConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
	c.FailureAlerts.Sanitize()
}

// MetricsConfig points queue, worker and HTTP metrics at a StatsD agent.
// Emission is off while StatsdAddress is empty.
type MetricsConfig struct {
	StatsdAddress string `env:"STATSD_ADDRESS"`
	Prefix        string `env:"STATSD_PREFIX"  envDefault:"enrichd"`
}

// Sanitize trims the address and restores the default prefix.
func (c *MetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	c.Prefix = strings.Trim(strings.TrimSpace(c.Prefix), ".")
	if c.Prefix == "" {
		c.Prefix = defaultMetricsPrefix
	}
}

// IsEnabled reports whether a StatsD address is configured.
func (c *MetricsConfig) IsEnabled() bool {
	return c.StatsdAddress != ""
}

// FailureAlertConfig routes alerts for research jobs that exhaust their attempts or lose
// their final lease. Each channel is active once its credential is set.
type FailureAlertConfig struct {
	Timeout    time.Duration `env:"FAILURE_ALERT_TIMEOUT"     envDefault:"5s"`
	RetryLimit int           `env:"FAILURE_ALERT_RETRY_LIMIT" envDefault:"3"`

	SlackWebhookURL string `env:"FAILURE_ALERT_SLACK_WEBHOOK_URL"`
	SlackChannel    string `env:"FAILURE_ALERT_SLACK_CHANNEL"`
	// JobStatusURL is joined with the job id in Slack messages, e.g. https://api.example.com/api/research/jobs
	JobStatusURL string `env:"FAILURE_ALERT_JOB_STATUS_URL"`

	PagerDutyRoutingKey string `env:"FAILURE_ALERT_PAGERDUTY_ROUTING_KEY"`
}

// Sanitize trims credentials and clamps delivery settings.
func (c *FailureAlertConfig) Sanitize() {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.RetryLimit < 0 {
		c.RetryLimit = 0
	}
	c.SlackWebhookURL = strings.TrimSpace(c.SlackWebhookURL)
	c.SlackChannel = strings.TrimSpace(c.SlackChannel)
	c.JobStatusURL = strings.TrimRight(strings.TrimSpace(c.JobStatusURL), "/")
	c.PagerDutyRoutingKey = strings.TrimSpace(c.PagerDutyRoutingKey)
}

// SlackEnabled reports whether failed jobs are posted to Slack.
func (c *FailureAlertConfig) SlackEnabled() bool {
	return c.SlackWebhookURL != ""
}

// PagerDutyEnabled reports whether failed jobs trigger PagerDuty events.
func (c *FailureAlertConfig) PagerDutyEnabled() bool {
	return c.PagerDutyRoutingKey != ""
}

// Enabled reports whether any alert channel is configured.
func (c *FailureAlertConfig) Enabled() bool {
	return c.SlackEnabled() || c.PagerDutyEnabled()
}
