// Package session owns the persisted login state: a file-backed store
// holding one session record, and the guard that re-validates it against
// the backend before any protected screen renders.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ChrozaGaming/sbpappv2/pkg/domain"
)

// Store persists the session as a single JSON document. One record means
// one write: the token, the cached user and the login timestamp can never
// be torn apart by a half-finished sequence of key writes.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Get returns the stored session. ok is false when no session exists,
// the file is unreadable, or the record is corrupt or incomplete —
// a broken record is indistinguishable from no record.
func (s *Store) Get() (domain.Session, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.Session{}, false
	}
	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domain.Session{}, false
	}
	if !sess.Valid() {
		return domain.Session{}, false
	}
	return sess, true
}

// Set writes the session record atomically: temp file in the same
// directory, fsync, rename. A crash leaves either the old record or the
// new one, never a partial write.
func (s *Store) Set(sess domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session.Set: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("session.Set: create dir: %w", err)
	}

	f, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("session.Set: create temp: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck // no-op after successful rename

	if _, err := f.Write(data); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("session.Set: write: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("session.Set: sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("session.Set: close: %w", err)
	}
	if err := os.Chmod(tmp, 0o600); err != nil {
		return fmt.Errorf("session.Set: chmod: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("session.Set: rename: %w", err)
	}
	return nil
}

// Clear removes the session record. Clearing an absent record is not an
// error, so eviction is idempotent.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session.Clear: %w", err)
	}
	return nil
}
