package domain

import "errors"

// ErrSessionNotFound is returned when no session record exists for a user.
var ErrSessionNotFound = errors.New("session not found")

// ErrStoreUnavailable is returned when the session store cannot be reached.
var ErrStoreUnavailable = errors.New("session store unavailable")

// ErrReplyUnavailable is returned when a reply handle was already consumed or has expired.
var ErrReplyUnavailable = errors.New("reply handle unavailable")

// ErrInvalidTheme is returned when a theme label is not part of the fixed set.
var ErrInvalidTheme = errors.New("invalid theme")

// ErrInvalidStep is returned when a session carries a step outside the dialogue.
var ErrInvalidStep = errors.New("invalid step")
