package session

import "errors"

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionFull        = errors.New("session is full")
	ErrAlreadyInGame      = errors.New("player already in a game of this type")
	ErrPlayerNotInSession = errors.New("player not in session")
)

// errNoChange is returned by mutation closures that decided the request is a
// benign no-op (idempotent re-join, leave after removal). It aborts the
// commit, and with it the broadcast, without surfacing an error.
var errNoChange = errors.New("no state change")
