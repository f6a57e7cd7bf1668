package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockQuota_WithinLimit(t *testing.T) {
	q := NewBlockQuota(3)
	for i := 0; i < 3; i++ {
		assert.NoError(t, q.Check(1), "call %d should be allowed", i+1)
	}
	assert.Equal(t, 3, q.Used())
	assert.Equal(t, 3, q.Limit())
}

func TestBlockQuota_ExceedsLimit(t *testing.T) {
	q := NewBlockQuota(1)
	require.NoError(t, q.Check(7))

	err := q.Check(7)
	require.Error(t, err)
	assert.True(t, IsBlockFullError(err))
	assert.Contains(t, err.Error(), "block 7")
	assert.Equal(t, 1, q.Used(), "a rejected check takes no slot")
}

func TestBlockQuota_ReleaseAndReset(t *testing.T) {
	q := NewBlockQuota(2)
	require.NoError(t, q.Check(1))
	require.NoError(t, q.Check(1))
	q.Release()
	assert.Equal(t, 1, q.Used())

	q.Reset()
	assert.Equal(t, 0, q.Used())
	q.Release()
	assert.Equal(t, 0, q.Used(), "release never goes negative")
}

func TestBlockQuota_Unlimited(t *testing.T) {
	q := NewBlockQuota(0)
	for i := 0; i < 1000; i++ {
		require.NoError(t, q.Check(1))
	}
}
