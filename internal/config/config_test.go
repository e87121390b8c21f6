package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, defaultAPIURL, cfg.APIURL)
	assert.Equal(t, HealthGateBlock, cfg.HealthGate)
	assert.Nil(t, cfg.Location.Lat)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	data := `
api_url = "https://sbp.example.com"
health_gate = "advisory"

[location]
lat = -6.2
lng = 106.8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(data), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://sbp.example.com", cfg.APIURL)
	assert.Equal(t, HealthGateAdvisory, cfg.HealthGate)
	require.NotNil(t, cfg.Location.Lat)
	assert.InDelta(t, -6.2, *cfg.Location.Lat, 1e-9)
	require.NotNil(t, cfg.Location.Lng)
	assert.InDelta(t, 106.8, *cfg.Location.Lng, 1e-9)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	data := `api_url = "https://file.example.com"`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(data), 0600))

	t.Setenv("SBP_API_URL", "https://env.example.com")
	t.Setenv("SBP_HEALTH_GATE", "advisory")
	t.Setenv("SBP_LOCATION", "-6.2, 106.8")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.APIURL)
	assert.Equal(t, HealthGateAdvisory, cfg.HealthGate)
	require.NotNil(t, cfg.Location.Lat)
	assert.InDelta(t, -6.2, *cfg.Location.Lat, 1e-9)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SBP_API_URL", "not a url")
	_, err := Load(t.TempDir())
	assert.Error(t, err)

	t.Setenv("SBP_API_URL", "http://localhost:8080")
	t.Setenv("SBP_HEALTH_GATE", "maybe")
	_, err = Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoadRejectsHalfLocation(t *testing.T) {
	dir := t.TempDir()
	data := `
[location]
lat = -6.2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(data), 0600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("api_url = ["), 0600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestDeviceIDStable(t *testing.T) {
	dir := t.TempDir()

	first, err := DeviceID(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := DeviceID(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second, "one install keeps one identifier")
}
