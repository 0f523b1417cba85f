package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"voice-agent-be/pkg/dialogue"
	"voice-agent-be/pkg/interaction"
)

// Client to server
const (
	FrameCaptureStart   = "capture.start"
	FrameCaptureStop    = "capture.stop"
	FrameCaptureInterim = "capture.interim"
	FrameCaptureFinal   = "capture.final"
	FrameCaptureEnd     = "capture.end"
	FrameCaptureError   = "capture.error"
	FrameTextSubmit     = "text.submit"
	FramePlaybackStart  = "playback.start"
	FramePlaybackEnd    = "playback.end"
	FramePlaybackError  = "playback.error"
)

// Server to client
const (
	FrameSession      = "session"
	FrameState        = "state"
	FramePartial      = "partial"
	FrameUtterance    = "utterance"
	FrameCaptureBegin = "capture.begin"
	FrameCaptureHalt  = "capture.halt"
	FrameSpeak        = "speak"
	FrameSpeakCancel  = "speak.cancel"
	FrameError        = "error"
)

var ErrUnknownFrame = errors.New("unknown frame type")

type Frame struct {
	Type      string               `json:"type"`
	SessionID string               `json:"session_id,omitempty"`
	State     string               `json:"state,omitempty"`
	Text      string               `json:"text,omitempty"`
	Error     string               `json:"error,omitempty"`
	Locale    string               `json:"locale,omitempty"`
	Seq       uint64               `json:"seq,omitempty"`
	Prosody   *interaction.Prosody `json:"prosody,omitempty"`
	Utterance *dialogue.Utterance  `json:"utterance,omitempty"`
}

func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}

func ErrorFrame(err error) Frame {
	return Frame{Type: FrameError, Error: err.Error()}
}

// Event maps a client frame onto a coordinator event. command reports whether
// the event is a user command (Coordinator.Do) rather than a device signal
// (Coordinator.Notify). Device frames echo the seq of the capture.begin or
// speak frame they answer.
func (f Frame) Event() (ev interaction.Event, command bool, err error) {
	switch f.Type {
	case FrameCaptureStart:
		return interaction.StartCapture{}, true, nil
	case FrameCaptureStop:
		return interaction.StopCapture{}, true, nil
	case FrameTextSubmit:
		return interaction.SubmitText{Text: f.Text}, true, nil
	case FrameCaptureInterim:
		return interaction.CaptureInterim{Seq: f.Seq, Text: f.Text}, false, nil
	case FrameCaptureFinal:
		return interaction.CaptureFinal{Seq: f.Seq, Text: f.Text}, false, nil
	case FrameCaptureEnd:
		return interaction.CaptureEnded{Seq: f.Seq}, false, nil
	case FrameCaptureError:
		return interaction.CaptureFailed{Seq: f.Seq, Err: deviceError(f)}, false, nil
	case FramePlaybackStart:
		return interaction.PlaybackStarted{Seq: f.Seq}, false, nil
	case FramePlaybackEnd:
		return interaction.PlaybackEnded{Seq: f.Seq}, false, nil
	case FramePlaybackError:
		return interaction.PlaybackFailed{Seq: f.Seq, Err: deviceError(f)}, false, nil
	default:
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownFrame, f.Type)
	}
}

func deviceError(f Frame) error {
	if f.Error != "" {
		return errors.New(f.Error)
	}
	return errors.New("device error")
}
