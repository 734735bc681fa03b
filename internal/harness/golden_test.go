package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_MirrorSingle(t *testing.T) {
	s, err := LoadScenario(filepath.Join(scenariosDir, "mirror_single.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestSnapshot_Deterministic(t *testing.T) {
	s, err := LoadScenario(filepath.Join(scenariosDir, "five_hop_chain.yaml"))
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := Snapshot(s, first)
	require.NoError(t, err)
	b, err := Snapshot(s, second)
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b))
	assert.Contains(t, string(a), `"session":"test-session-default"`)
}
