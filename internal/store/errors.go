package store

import "errors"

// errSessionIDCollision signals the programmer-invariant violation of a
// second consecutive UUID collision on session creation.
var errSessionIDCollision = errors.New("store: session id collision")
