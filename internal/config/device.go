package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DeviceID returns the stable per-install identifier, generating and
// persisting one on first use. It travels with every API request as
// X-Device-Id so the backend can correlate records from one device.
func DeviceID(dir string) (string, error) {
	path := filepath.Join(dir, "device")

	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}

	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("config.DeviceID: %w", err)
	}
	return id, nil
}
