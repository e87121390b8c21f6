// Package logging sets up the zerolog file sink. The TUI owns the
// terminal, so everything worth keeping goes to ~/.sbp/sbp.log instead of
// stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Open returns a logger writing to sbp.log under dir. SBP_DEBUG=1 lowers
// the level to debug; the default is info.
func Open(dir string) (zerolog.Logger, error) {
	f, err := os.OpenFile(filepath.Join(dir, "sbp.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("logging.Open: %w", err)
	}

	level := zerolog.InfoLevel
	if os.Getenv("SBP_DEBUG") == "1" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(f).Level(level).With().Timestamp().Logger(), nil
}
