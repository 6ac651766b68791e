package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfo(t *testing.T) {
	info := Info{Version: "0.3.1", Platform: "linux/amd64", GoVersion: "go1.24.1"}
	assert.Equal(t, "neodb version 0.3.1 (linux/amd64 go1.24.1)", info.String())
	assert.Len(t, info.Pairs(), 5)

	outdated, err := info.Outdated("0.4.0")
	require.NoError(t, err)
	assert.True(t, outdated)

	outdated, err = info.Outdated("0.3.1")
	require.NoError(t, err)
	assert.False(t, outdated)

	_, err = info.Outdated("latest")
	assert.Error(t, err)

	ok, err := info.Satisfies(">= 0.3, < 1.0")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = Info{Version: "dev"}.Satisfies(">= 0.1")
	assert.Error(t, err)
}
