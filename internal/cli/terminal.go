package cli

import (
	"context"
	"errors"
	"io"
	"sync"

	"voice-agent-be/pkg/interaction"

	"github.com/fatih/color"
)

var errNoMicrophone = errors.New("voice capture is not available in the console, type instead")

// terminal is the console's speech device: replies are printed instead of
// spoken and there is no microphone.
type terminal struct {
	interaction.BaseObserver

	mu      sync.Mutex
	out     io.Writer
	agent   *color.Color
	failure *color.Color
	notify  func(interaction.Event)
	idle    chan struct{}
}

func newTerminal(out io.Writer) *terminal {
	return &terminal{
		out:     out,
		agent:   color.New(color.FgCyan, color.Bold),
		failure: color.New(color.FgRed),
		idle:    make(chan struct{}, 1),
	}
}

func (t *terminal) Start(context.Context, uint64, string) error { return errNoMicrophone }
func (t *terminal) Stop() error                                 { return nil }
func (t *terminal) Cancel() error                               { return nil }

// Speak prints the reply and reports playback as finished right away.
func (t *terminal) Speak(_ context.Context, seq uint64, text string, _ interaction.Prosody) error {
	t.mu.Lock()
	t.agent.Fprint(t.out, "Agent: ")
	_, err := io.WriteString(t.out, text+"\n")
	t.mu.Unlock()
	if err != nil {
		return err
	}

	if t.notify != nil {
		go t.notify(interaction.PlaybackEnded{Seq: seq})
	}
	return nil
}

func (t *terminal) StateChanged(_, to interaction.State) {
	if to != interaction.StateIdle {
		return
	}
	select {
	case t.idle <- struct{}{}:
	default:
	}
}

func (t *terminal) Failed(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failure.Fprintf(t.out, "! %v\n", err)
}

// drain forgets an idle signal left over from a previous turn.
func (t *terminal) drain() {
	select {
	case <-t.idle:
	default:
	}
}
