package interaction

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a command is refused because capture,
	// processing or playback is already active.
	ErrBusy = errors.New("interaction: another operation is in progress")

	// ErrEmptyUtterance is returned for a blank typed submission.
	ErrEmptyUtterance = errors.New("interaction: utterance is empty")

	// ErrEmptyReply is reported when the replier answers with blank text.
	ErrEmptyReply = errors.New("interaction: empty reply")

	// ErrTimeout marks a capture, reply or playback that ran past its deadline.
	ErrTimeout = errors.New("interaction: operation timed out")

	ErrStopped = errors.New("interaction: coordinator is not running")
	ErrRunning = errors.New("interaction: coordinator already running")
)

// CaptureError is a recognition, device or permission failure while listening.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string { return fmt.Sprintf("capture failed: %v", e.Err) }
func (e *CaptureError) Unwrap() error { return e.Err }

// TransportError is a failed reply round trip.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("reply failed: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// PlaybackError is a speech synthesis failure. The reply stays in the
// transcript.
type PlaybackError struct {
	Err error
}

func (e *PlaybackError) Error() string { return fmt.Sprintf("playback failed: %v", e.Err) }
func (e *PlaybackError) Unwrap() error { return e.Err }
