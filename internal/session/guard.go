package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/ChrozaGaming/sbpappv2/pkg/client"
	"github.com/ChrozaGaming/sbpappv2/pkg/domain"
)

// ErrNoSession means no stored session exists; the caller redirects to
// the login screen without any network call.
var ErrNoSession = errors.New("no stored session")

// Guard validates the stored session on every protected-screen entry. It
// never trusts a previously cached "is authenticated" answer: each entry
// is a fresh round-trip to the backend.
type Guard struct {
	store  *Store
	client *client.Client
}

// NewGuard creates a guard over the given store and API client.
func NewGuard(store *Store, c *client.Client) *Guard {
	return &Guard{store: store, client: c}
}

// Check returns the validated session. On any validation failure —
// expired token, explicit 401, or an unreachable backend, all treated
// the same — the stored record is evicted whole and the error returned.
// A successful check refreshes the cached profile from the backend's
// answer before returning.
func (g *Guard) Check(ctx context.Context) (domain.Session, error) {
	sess, ok := g.store.Get()
	if !ok {
		return domain.Session{}, ErrNoSession
	}

	user, err := g.client.Me(ctx, sess.Token)
	if err != nil {
		if clearErr := g.store.Clear(); clearErr != nil {
			return domain.Session{}, fmt.Errorf("evict session: %w", clearErr)
		}
		return domain.Session{}, fmt.Errorf("session invalid: %w", err)
	}

	sess.User = *user
	if err := g.store.Set(sess); err != nil {
		return domain.Session{}, fmt.Errorf("refresh session: %w", err)
	}
	return sess, nil
}

// Logout evicts the stored session unconditionally.
func (g *Guard) Logout() error {
	return g.store.Clear()
}
