package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMatch means no candidate cleared minimal relevance.
	ErrNoMatch = errors.New("no matching track found")
	// ErrNoActiveDevice means playback was attempted with no reachable
	// output device.
	ErrNoActiveDevice = errors.New("no active playback device")
)

// RemoteError wraps a rejection from the catalog/playback API. It is
// recovered at the engine boundary and turned into a status string; it
// never reaches the agent layer as a raw fault.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func remoteErr(op string, err error) error {
	return &RemoteError{Op: op, Err: err}
}
