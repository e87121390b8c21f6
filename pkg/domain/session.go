package domain

import "time"

// Session is the client-side record of an authenticated login. It is
// persisted as a single document so the token and the cached user can
// never be observed separately (no token without a user, no user without
// a token).
type Session struct {
	Token      string    `json:"token"`
	User       User      `json:"user"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

// Valid reports whether the session carries a usable credential.
func (s Session) Valid() bool {
	return s.Token != "" && s.User.Email != ""
}
