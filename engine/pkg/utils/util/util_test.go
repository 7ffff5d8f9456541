package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProcessUsage(t *testing.T) {
	usage, err := GetProcessUsage()
	require.NoError(t, err)
	assert.Greater(t, usage.RSS, uint64(0))

	load := GetCPULoad()
	assert.GreaterOrEqual(t, load, 0.0)
}
