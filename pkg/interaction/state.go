package interaction

// State is the turn-taking state of a conversation.
type State int

const (
	StateIdle State = iota
	StateListening
	StateProcessing
	StateSpeaking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateSpeaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// MarshalText lets states travel as their names in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
