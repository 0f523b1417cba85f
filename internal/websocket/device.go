package websocket

import (
	"context"
	"errors"

	"voice-agent-be/pkg/dialogue"
	"voice-agent-be/pkg/interaction"
)

var ErrDisconnected = errors.New("speech device disconnected")

// Device is the browser on the other end of the socket: it does the speech
// recognition and synthesis and renders the conversation.
type Device struct {
	client *Client
}

func NewDevice(client *Client) *Device {
	return &Device{client: client}
}

func (d *Device) Start(_ context.Context, seq uint64, locale string) error {
	if !d.client.Push(Frame{Type: FrameCaptureBegin, Seq: seq, Locale: locale}) {
		return ErrDisconnected
	}
	return nil
}

func (d *Device) Stop() error {
	d.client.Push(Frame{Type: FrameCaptureHalt})
	return nil
}

func (d *Device) Speak(_ context.Context, seq uint64, text string, prosody interaction.Prosody) error {
	if !d.client.Push(Frame{Type: FrameSpeak, Seq: seq, Text: text, Prosody: &prosody}) {
		return ErrDisconnected
	}
	return nil
}

func (d *Device) Cancel() error {
	d.client.Push(Frame{Type: FrameSpeakCancel})
	return nil
}

func (d *Device) StateChanged(_, to interaction.State) {
	d.client.Push(Frame{Type: FrameState, State: to.String()})
}

func (d *Device) PartialText(text string) {
	d.client.Push(Frame{Type: FramePartial, Text: text})
}

func (d *Device) UtteranceAppended(u dialogue.Utterance) {
	d.client.Push(Frame{Type: FrameUtterance, Utterance: &u})
}

func (d *Device) Failed(err error) {
	d.client.Push(ErrorFrame(err))
}
