package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenWritesToFile(t *testing.T) {
	dir := t.TempDir()
	log, err := Open(dir)
	require.NoError(t, err)

	log.Info().Str("event", "started").Msg("hello")

	data, err := os.ReadFile(filepath.Join(dir, "sbp.log"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"event":"started"`), "got %s", data)
}

func TestOpenDefaultLevelDropsDebug(t *testing.T) {
	dir := t.TempDir()
	log, err := Open(dir)
	require.NoError(t, err)

	log.Debug().Msg("noise")

	data, err := os.ReadFile(filepath.Join(dir, "sbp.log"))
	require.NoError(t, err)
	assert.Empty(t, string(data))
}
