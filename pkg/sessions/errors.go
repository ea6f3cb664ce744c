// Package errors pkg/sessions/errors.go provides errors for the sessions package.

package sessions

import "errors"

var (
	// ErrSessionActive means start() was called while a session is
	// already open for the device. The second start is rejected, not
	// queued.
	ErrSessionActive = errors.New("session already active for this device")

	// ErrNoActiveSession means stop() was called with nothing to close.
	ErrNoActiveSession = errors.New("no active session for this device")
)
