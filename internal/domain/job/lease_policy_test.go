package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLeasePolicy(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		policy, err := NewLeasePolicy(2*time.Minute, 10*time.Second)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Minute, policy.AttemptTimeout())
		assert.Equal(t, 130*time.Second, policy.Lease())
	})

	t.Run("default margin", func(t *testing.T) {
		policy, err := NewLeasePolicy(time.Minute, 0)
		require.NoError(t, err)
		assert.Equal(t, time.Minute+DefaultLeaseMargin, policy.Lease())
	})

	t.Run("invalid attempt timeout", func(t *testing.T) {
		policy, err := NewLeasePolicy(0, time.Second)
		require.ErrorIs(t, err, ErrInvalidAttemptTimeout)
		assert.Nil(t, policy)
	})
}

func TestLeasePolicy_LeaseSeconds(t *testing.T) {
	policy, err := NewLeasePolicy(1500*time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3, policy.LeaseSeconds())

	var nilPolicy *LeasePolicy
	assert.Equal(t, int(DefaultLeaseMargin/time.Second), nilPolicy.LeaseSeconds())
	assert.Zero(t, nilPolicy.AttemptTimeout())
}
