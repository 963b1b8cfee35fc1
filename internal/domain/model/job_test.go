//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobType_Valid(t *testing.T) {
	assert.True(t, JobTypeResearch.Valid())
	assert.False(t, JobType("browser").Valid())
}

func TestJobType_UnmarshalText(t *testing.T) {
	var jt JobType
	require.NoError(t, jt.UnmarshalText([]byte(" Research ")))
	assert.Equal(t, JobTypeResearch, jt)

	require.Error(t, jt.UnmarshalText([]byte("rules")))
}

func TestJobState_Terminal(t *testing.T) {
	assert.False(t, JobStateWaiting.Terminal())
	assert.False(t, JobStateActive.Terminal())
	assert.True(t, JobStateCompleted.Terminal())
	assert.True(t, JobStateFailed.Terminal())
}

func TestCreateJobRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateJobRequest
		wantErr string
	}{
		{
			name: "valid",
			req:  CreateJobRequest{Type: JobTypeResearch, Payload: json.RawMessage(`{"personId":1,"companyId":2}`)},
		},
		{
			name:    "bad type",
			req:     CreateJobRequest{Type: "alert", Payload: json.RawMessage(`{}`)},
			wantErr: "invalid job type",
		},
		{
			name:    "missing payload",
			req:     CreateJobRequest{Type: JobTypeResearch},
			wantErr: "payload is required",
		},
		{
			name:    "negative attempts",
			req:     CreateJobRequest{Type: JobTypeResearch, Payload: json.RawMessage(`{}`), MaxAttempts: -1},
			wantErr: "max attempts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestJob_ResearchPayload(t *testing.T) {
	j := &Job{Payload: json.RawMessage(`{"personId":7,"companyId":3}`)}
	p, err := j.ResearchPayload()
	require.NoError(t, err)
	assert.Equal(t, ResearchPayload{PersonID: 7, CompanyID: 3}, p)

	j.Payload = json.RawMessage(`{"personId":7}`)
	_, err = j.ResearchPayload()
	require.Error(t, err)

	j.Payload = nil
	_, err = j.ResearchPayload()
	require.Error(t, err)
}

func TestNewJobStatusResponse(t *testing.T) {
	created := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	started := created.Add(time.Second)
	finished := created.Add(5 * time.Second)
	errMsg := "provider timeout"

	t.Run("waiting job has no result or error", func(t *testing.T) {
		j := &Job{
			ID:          "job-1",
			State:       JobStateWaiting,
			Payload:     json.RawMessage(`{"personId":7,"companyId":3}`),
			MaxAttempts: 3,
			CreatedAt:   created,
		}
		resp := NewJobStatusResponse(j)
		assert.Equal(t, JobStateWaiting, resp.State)
		assert.Equal(t, 0, resp.Progress)
		assert.Nil(t, resp.Result)
		assert.Nil(t, resp.Error)
		assert.Nil(t, resp.Timestamps.Started)
		assert.Equal(t, created.UnixMilli(), resp.Timestamps.Created)
		assert.Equal(t, JobAttempts{Current: 0, Max: 3}, resp.Attempts)
	})

	t.Run("completed job exposes result", func(t *testing.T) {
		j := &Job{
			ID:           "job-2",
			State:        JobStateCompleted,
			Progress:     100,
			Result:       json.RawMessage(`{"success":true,"results":[],"count":0}`),
			LastError:    &errMsg,
			AttemptsMade: 2,
			MaxAttempts:  3,
			CreatedAt:    created,
			StartedAt:    &started,
			FinishedAt:   &finished,
		}
		resp := NewJobStatusResponse(j)
		assert.JSONEq(t, `{"success":true,"results":[],"count":0}`, string(resp.Result))
		assert.Nil(t, resp.Error)
		require.NotNil(t, resp.Timestamps.Finished)
		assert.Equal(t, finished.UnixMilli(), *resp.Timestamps.Finished)
	})

	t.Run("failed job exposes error", func(t *testing.T) {
		j := &Job{ID: "job-3", State: JobStateFailed, LastError: &errMsg, CreatedAt: created}
		resp := NewJobStatusResponse(j)
		require.NotNil(t, resp.Error)
		assert.Equal(t, errMsg, *resp.Error)
		assert.Nil(t, resp.Result)
	})
}

func TestProgressEvent_JSONShape(t *testing.T) {
	b, err := json.Marshal(ProgressEvent{JobID: "j", Progress: 50, State: JobStateActive, Timestamp: time.Now()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"jobId":"j","progress":50,"state":"active"}`, string(b))
}

func TestBulkResearchStatusRequest_Validate(t *testing.T) {
	req := BulkResearchStatusRequest{PersonIDs: []int64{7, 8}, Status: " completed "}
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, ResearchStatusCompleted, req.Status)

	assert.Error(t, (&BulkResearchStatusRequest{Status: "x"}).Validate())
	assert.Error(t, (&BulkResearchStatusRequest{PersonIDs: []int64{0}, Status: "x"}).Validate())
	assert.Error(t, (&BulkResearchStatusRequest{PersonIDs: []int64{1}}).Validate())
}
