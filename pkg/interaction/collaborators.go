package interaction

import (
	"context"

	"voice-agent-be/pkg/dialogue"
)

// Capture turns live speech into text. Start must not block for the duration
// of the capture: interim, final, end and error signals are delivered later
// through Coordinator.Notify and must carry the seq Start was given. Signals
// with any other seq are dropped.
type Capture interface {
	Start(ctx context.Context, seq uint64, locale string) error
	Stop() error
}

// Prosody holds the speech synthesis parameters.
type Prosody struct {
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}

// NeutralProsody is rate, pitch and volume at 1.0.
func NeutralProsody() Prosody {
	return Prosody{Rate: 1.0, Pitch: 1.0, Volume: 1.0}
}

// Playback renders text as speech. Speak must not block until the speech is
// done: start, end and error signals are delivered through Coordinator.Notify
// tagged with the seq of the Speak call. Cancel stops whatever is being spoken.
type Playback interface {
	Speak(ctx context.Context, seq uint64, text string, prosody Prosody) error
	Cancel() error
}

// Replier produces the agent's reply for a transcript whose last entry is the
// new user utterance. The coordinator stops waiting once its reply timeout
// passes, whether or not Reply returns.
type Replier interface {
	Reply(ctx context.Context, history []dialogue.Utterance) (string, error)
}

// ReplierFunc adapts a function to Replier.
type ReplierFunc func(ctx context.Context, history []dialogue.Utterance) (string, error)

func (f ReplierFunc) Reply(ctx context.Context, history []dialogue.Utterance) (string, error) {
	return f(ctx, history)
}

// Observer is told about everything a user interface would render. Calls are
// made from the coordinator goroutine and must not block.
type Observer interface {
	StateChanged(from, to State)
	PartialText(text string)
	UtteranceAppended(u dialogue.Utterance)
	Failed(err error)
}

// BaseObserver ignores every notification. Embed it to implement a subset.
type BaseObserver struct{}

func (BaseObserver) StateChanged(State, State)            {}
func (BaseObserver) PartialText(string)                   {}
func (BaseObserver) UtteranceAppended(dialogue.Utterance) {}
func (BaseObserver) Failed(error)                         {}
