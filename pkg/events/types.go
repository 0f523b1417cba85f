package events

const (
	TypeSessionOpened     = "SESSION_OPENED"
	TypeSessionClosed     = "SESSION_CLOSED"
	TypeStateChanged      = "STATE_CHANGED"
	TypeUtteranceAppended = "UTTERANCE_APPENDED"
	TypeReplyGenerated    = "REPLY_GENERATED"
	TypeCaptureFailed     = "CAPTURE_FAILED"
	TypeTransportFailed   = "TRANSPORT_FAILED"
	TypePlaybackFailed    = "PLAYBACK_FAILED"
)

// Payload keys
const (
	KeySessionID = "session_id"
	KeyFrom      = "from"
	KeyTo        = "to"
	KeyRole      = "role"
	KeyText      = "text"
	KeyIntent    = "intent"
	KeyError     = "error"
	KeyDuration  = "duration_ms"
)
