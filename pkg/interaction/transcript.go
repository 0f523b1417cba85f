package interaction

import (
	"sync"

	"voice-agent-be/pkg/dialogue"
)

// Transcript is the append-only record of a conversation.
type Transcript struct {
	mu      sync.RWMutex
	entries []dialogue.Utterance
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) Append(u dialogue.Utterance) {
	t.mu.Lock()
	t.entries = append(t.entries, u)
	t.mu.Unlock()
}

// Entries returns a copy of the transcript in insertion order.
func (t *Transcript) Entries() []dialogue.Utterance {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]dialogue.Utterance, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Last returns the newest entry, if any.
func (t *Transcript) Last() (dialogue.Utterance, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.entries) == 0 {
		return dialogue.Utterance{}, false
	}
	return t.entries[len(t.entries)-1], true
}
