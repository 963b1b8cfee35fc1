package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

func TestRenderJobStatus(t *testing.T) {
	started := int64(1_700_000_001_000)
	msg := "provider timeout"
	var buf bytes.Buffer
	err := renderJobStatus(&buf, &model.JobStatusResponse{
		ID:         "job-123",
		State:      model.JobStateFailed,
		Progress:   50,
		Payload:    []byte(`{"personId":1,"companyId":2}`),
		Error:      &msg,
		Timestamps: model.JobTimestamps{Created: 1_700_000_000_000, Started: &started},
		Attempts:   model.JobAttempts{Current: 3, Max: 3},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "job-123")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "50%")
	assert.Contains(t, out, "3/3")
	assert.Contains(t, out, "2023-11-14T22:13:21Z")
	assert.Regexp(t, `Finished:\s+-`, out)
	assert.Contains(t, out, "provider timeout")
}

func TestRenderJobCounts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderJobCounts(&buf, &model.JobStats{Waiting: 4, Failed: 1}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Regexp(t, `^waiting\s+4$`, lines[1])
	assert.Regexp(t, `^failed\s+1$`, lines[4])
}

func TestRenderInflightKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderInflightKeys(&buf, nil))
	assert.Equal(t, "No in-flight keys.\n", buf.String())

	buf.Reset()
	require.NoError(t, renderInflightKeys(&buf, map[string]string{
		"enrich:inflight:2:1": "job-b",
		"enrich:inflight:1:1": "pending",
	}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "enrich:inflight:1:1"))
}

func TestParseJobStatusFlags(t *testing.T) {
	opts, err := parseJobStatusFlags([]string{"--job-id", " abc "})
	require.NoError(t, err)
	assert.Equal(t, "abc", opts.JobID)

	opts, err = parseJobStatusFlags([]string{"--json", "xyz"})
	require.NoError(t, err)
	assert.Equal(t, "xyz", opts.JobID)
	assert.True(t, opts.JSON)

	_, err = parseJobStatusFlags(nil)
	require.Error(t, err)
}

func TestParseTimeoutFlags(t *testing.T) {
	_, err := parseMigrateFlags([]string{"--timeout", "0s"})
	require.Error(t, err)

	opts, err := parseDBSeedFlags([]string{"--file", "seed.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "seed.yaml", opts.File)
	assert.Equal(t, defaultMigrationTimeout, opts.Timeout)
}

func TestIsLikelyRemoteHost(t *testing.T) {
	tests := map[string]bool{
		"":               false,
		"localhost":      false,
		"127.0.0.1":      false,
		"::1":            false,
		"db.local":       false,
		"10.0.0.5":       true,
		"db.example.com": true,
	}
	for host, want := range tests {
		assert.Equal(t, want, isLikelyRemoteHost(host), host)
	}
}

func TestConfirm(t *testing.T) {
	newCtx := func(input string) (*commandContext, *bytes.Buffer) {
		var out bytes.Buffer
		return &commandContext{
			Logger: slog.New(slog.DiscardHandler),
			Stdout: &out,
			Stdin:  strings.NewReader(input),
		}, &out
	}

	cmdCtx, out := newCtx("")
	require.NoError(t, cmdCtx.confirm(confirmRequest{Yes: true}))
	assert.Empty(t, out.String())

	cmdCtx, out = newCtx("y\n")
	require.NoError(t, cmdCtx.confirm(confirmRequest{Action: "delete in-flight keys", Target: "2 keys"}))
	assert.Contains(t, out.String(), "About to delete in-flight keys for 2 keys.")

	cmdCtx, _ = newCtx("n\n")
	require.Error(t, cmdCtx.confirm(confirmRequest{Action: "x", Target: "y"}))
}

func TestPrintUsageListsCommands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))
	for name := range commands() {
		assert.Contains(t, buf.String(), name)
	}
}
