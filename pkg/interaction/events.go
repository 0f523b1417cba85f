package interaction

// Event is anything the coordinator's transition function consumes.
type Event interface {
	Name() string
}

// User commands
type (
	StartCapture struct{}
	StopCapture  struct{}
	SubmitText   struct{ Text string }
)

// Capture collaborator signals. Seq echoes the value passed to Capture.Start.
type (
	CaptureInterim struct {
		Seq  uint64
		Text string
	}
	CaptureFinal struct {
		Seq  uint64
		Text string
	}
	CaptureEnded  struct{ Seq uint64 }
	CaptureFailed struct {
		Seq uint64
		Err error
	}
)

// Playback collaborator signals. Seq echoes the value passed to Playback.Speak.
type (
	PlaybackStarted struct{ Seq uint64 }
	PlaybackEnded   struct{ Seq uint64 }
	PlaybackFailed  struct {
		Seq uint64
		Err error
	}
)

// Completions of the coordinator's own asynchronous work. op ties them to the
// state entry that started the work so late arrivals are dropped.
type (
	replyReceived struct {
		op   uint64
		text string
	}
	replyFailed struct {
		op  uint64
		err error
	}
	timeoutExpired struct {
		op    uint64
		state State
	}
)

func (StartCapture) Name() string    { return "capture.start" }
func (StopCapture) Name() string     { return "capture.stop" }
func (SubmitText) Name() string      { return "text.submit" }
func (CaptureInterim) Name() string  { return "capture.interim" }
func (CaptureFinal) Name() string    { return "capture.final" }
func (CaptureEnded) Name() string    { return "capture.end" }
func (CaptureFailed) Name() string   { return "capture.error" }
func (PlaybackStarted) Name() string { return "playback.start" }
func (PlaybackEnded) Name() string   { return "playback.end" }
func (PlaybackFailed) Name() string  { return "playback.error" }
func (replyReceived) Name() string   { return "reply.received" }
func (replyFailed) Name() string     { return "reply.failed" }
func (timeoutExpired) Name() string  { return "timeout" }
