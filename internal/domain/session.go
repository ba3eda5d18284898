package domain

import "time"

// SessionEventKind describes what happened to a session.
type SessionEventKind string

const (
	SessionSignedUp  SessionEventKind = "signed_up"
	SessionSignedIn  SessionEventKind = "signed_in"
	SessionSignedOut SessionEventKind = "signed_out"
)

// SessionEvent is published by the identity provider whenever a session
// changes. UserID is empty for a sign-out without a resolvable user.
type SessionEvent struct {
	Kind   SessionEventKind
	UserID string
	Role   Role
	At     time.Time
}
