// Package repo holds the storage errors shared by every members store
// implementation, so callers can branch without knowing the backend.
package repo

import "errors"

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrEmailTaken     = errors.New("email already registered")
)
