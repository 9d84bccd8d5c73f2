package models

import "time"

// Session is a server-side session row. The client only ever sees the
// signed form of Token, never the row itself.
type Session struct {
	Token     string
	UserID    int64 // zero while the session is anonymous
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Authenticated reports whether a user has been bound to the session.
func (s Session) Authenticated() bool {
	return s.UserID != 0
}
