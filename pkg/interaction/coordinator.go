package interaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/pkg/dialogue"
)

const (
	// ApologyReply is spoken when the reply round trip fails.
	ApologyReply = "I apologize, but I encountered an error processing your request."

	inboxSize = 64
	module    = "Interaction"
)

// Config tunes a Coordinator. Zero timeouts disable the matching watchdog.
type Config struct {
	Locale          string
	Prosody         Prosody
	Apology         string
	CaptureTimeout  time.Duration
	ReplyTimeout    time.Duration
	PlaybackTimeout time.Duration
}

// DefaultConfig returns US English, neutral prosody and the default timeouts.
func DefaultConfig() Config {
	return Config{
		Locale:          "en-US",
		Prosody:         NeutralProsody(),
		Apology:         ApologyReply,
		CaptureTimeout:  15 * time.Second,
		ReplyTimeout:    10 * time.Second,
		PlaybackTimeout: 60 * time.Second,
	}
}

// Snapshot is a consistent view of a conversation.
type Snapshot struct {
	State      State                `json:"state"`
	Partial    string               `json:"partial"`
	Transcript []dialogue.Utterance `json:"transcript"`
	LastError  string               `json:"last_error,omitempty"`
}

type envelope struct {
	event  Event
	result chan error
	query  chan Snapshot
}

// Coordinator owns the turn-taking state machine of one conversation. All
// transitions run on the goroutine executing Run, one event at a time, so
// listening, processing and speaking never overlap.
type Coordinator struct {
	cfg       Config
	replier   Replier
	capture   Capture
	playback  Playback
	observers []Observer
	logger    logger.ILogger
	now       func() time.Time

	inbox   chan envelope
	done    chan struct{}
	running atomic.Bool

	mu         sync.RWMutex
	state      State
	partial    string
	lastErr    error
	transcript *Transcript

	// Owned by the Run goroutine.
	ctx         context.Context
	op          uint64
	timer       *time.Timer
	cancelReply context.CancelFunc
}

// New creates an idle coordinator. Call Run to start processing events.
func New(cfg Config, replier Replier, capture Capture, playback Playback, log logger.ILogger, observers ...Observer) *Coordinator {
	if cfg.Apology == "" {
		cfg.Apology = ApologyReply
	}
	return &Coordinator{
		cfg:        cfg,
		replier:    replier,
		capture:    capture,
		playback:   playback,
		observers:  observers,
		logger:     log,
		now:        time.Now,
		inbox:      make(chan envelope, inboxSize),
		done:       make(chan struct{}),
		state:      StateIdle,
		transcript: NewTranscript(),
	}
}

// Run processes events until ctx is cancelled. In-flight capture, reply and
// playback are cancelled on the way out.
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	c.ctx = ctx
	defer c.shutdown()

	for {
		select {
		case env := <-c.inbox:
			c.handle(env)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Do submits a user command and waits for the verdict of its transition.
func (c *Coordinator) Do(ctx context.Context, ev Event) error {
	env := envelope{event: ev, result: make(chan error, 1)}
	if err := c.enqueue(ctx, env); err != nil {
		return err
	}

	select {
	case err := <-env.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrStopped
	}
}

// Notify queues a collaborator signal without waiting for it to be handled.
func (c *Coordinator) Notify(ev Event) {
	select {
	case c.inbox <- envelope{event: ev}:
	case <-c.done:
	}
}

// Snapshot returns the conversation as it stands after every event queued
// before the call has been handled.
func (c *Coordinator) Snapshot(ctx context.Context) (Snapshot, error) {
	env := envelope{query: make(chan Snapshot, 1)}
	if err := c.enqueue(ctx, env); err != nil {
		return Snapshot{}, err
	}

	select {
	case snap := <-env.query:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-c.done:
		return Snapshot{}, ErrStopped
	}
}

// State reports the current state without queueing.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Transcript returns a copy of the conversation so far.
func (c *Coordinator) Transcript() []dialogue.Utterance {
	return c.transcript.Entries()
}

// Done is closed once Run has returned.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

func (c *Coordinator) enqueue(ctx context.Context, env envelope) error {
	select {
	case c.inbox <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrStopped
	}
}

func (c *Coordinator) handle(env envelope) {
	if env.query != nil {
		env.query <- c.snapshot()
		return
	}

	err := c.transition(env.event)
	if env.result != nil {
		env.result <- err
	}
}

func (c *Coordinator) transition(ev Event) error {
	state := c.State()

	switch e := ev.(type) {
	case StartCapture:
		return c.startCapture(state)

	case StopCapture:
		if state != StateListening {
			return nil
		}
		if err := c.capture.Stop(); err != nil {
			c.logger.Warn(module, "Failed to stop capture", map[string]interface{}{"error": err.Error()})
		}
		c.setPartial("")
		c.enter(StateIdle)
		return nil

	case SubmitText:
		if state != StateIdle {
			return ErrBusy
		}
		if strings.TrimSpace(e.Text) == "" {
			return ErrEmptyUtterance
		}
		c.clearError()
		c.beginProcessing(e.Text)
		return nil

	case CaptureInterim:
		if c.current(StateListening, e.Seq) {
			c.setPartial(e.Text)
		}

	case CaptureFinal:
		if !c.current(StateListening, e.Seq) {
			break
		}
		c.setPartial("")
		if strings.TrimSpace(e.Text) == "" {
			c.enter(StateIdle)
			break
		}
		c.beginProcessing(e.Text)

	case CaptureEnded:
		if c.current(StateListening, e.Seq) {
			c.setPartial("")
			c.enter(StateIdle)
		}

	case CaptureFailed:
		if c.current(StateListening, e.Seq) {
			c.setPartial("")
			c.fail(&CaptureError{Err: e.Err})
			c.enter(StateIdle)
		}

	case PlaybackStarted:
		if c.current(StateSpeaking, e.Seq) {
			c.logger.Debug(module, "Playback started", map[string]interface{}{"seq": e.Seq})
		}

	case PlaybackEnded:
		if c.current(StateSpeaking, e.Seq) {
			c.enter(StateIdle)
		}

	case PlaybackFailed:
		if c.current(StateSpeaking, e.Seq) {
			c.fail(&PlaybackError{Err: e.Err})
			c.enter(StateIdle)
		}

	case replyReceived:
		if state == StateProcessing && e.op == c.op {
			c.cancelReply = nil
			c.speak(e.text)
		}

	case replyFailed:
		if state == StateProcessing && e.op == c.op {
			c.cancelReply = nil
			c.fail(&TransportError{Err: e.err})
			c.speak(c.cfg.Apology)
		}

	case timeoutExpired:
		if e.op != c.op || e.state != state {
			break
		}
		c.expire(state)

	default:
		return fmt.Errorf("interaction: unknown event %T", ev)
	}

	return nil
}

func (c *Coordinator) startCapture(state State) error {
	if state != StateIdle {
		return ErrBusy
	}

	c.clearError()
	c.setPartial("")
	c.enter(StateListening)

	if err := c.capture.Start(c.ctx, c.op, c.cfg.Locale); err != nil {
		capErr := &CaptureError{Err: err}
		c.fail(capErr)
		c.enter(StateIdle)
		return capErr
	}
	return nil
}

// beginProcessing records the user's utterance and asks the replier for an
// answer on a separate goroutine.
func (c *Coordinator) beginProcessing(text string) {
	c.appendUtterance(dialogue.RoleUser, text)
	c.enter(StateProcessing)

	history := c.transcript.Entries()
	op := c.op

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.cfg.ReplyTimeout > 0 {
		ctx, cancel = context.WithTimeout(c.ctx, c.cfg.ReplyTimeout)
	} else {
		ctx, cancel = context.WithCancel(c.ctx)
	}
	c.cancelReply = cancel

	go func() {
		defer cancel()

		reply, err := c.replier.Reply(ctx, history)
		if err == nil && strings.TrimSpace(reply) == "" {
			err = ErrEmptyReply
		}
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf("%w: %v", ErrTimeout, err)
			}
			c.Notify(replyFailed{op: op, err: err})
			return
		}
		c.Notify(replyReceived{op: op, text: reply})
	}()
}

// speak records the agent's reply and hands it to playback, cancelling any
// speech still in progress.
func (c *Coordinator) speak(text string) {
	c.appendUtterance(dialogue.RoleAgent, text)
	c.enter(StateSpeaking)

	if err := c.playback.Cancel(); err != nil {
		c.logger.Warn(module, "Failed to cancel previous playback", map[string]interface{}{"error": err.Error()})
	}
	if err := c.playback.Speak(c.ctx, c.op, text, c.cfg.Prosody); err != nil {
		c.fail(&PlaybackError{Err: err})
		c.enter(StateIdle)
	}
}

func (c *Coordinator) expire(state State) {
	switch state {
	case StateProcessing:
		if c.cancelReply != nil {
			c.cancelReply()
			c.cancelReply = nil
		}
		c.fail(&TransportError{Err: ErrTimeout})
		c.speak(c.cfg.Apology)
		return
	case StateListening:
		if err := c.capture.Stop(); err != nil {
			c.logger.Warn(module, "Failed to stop capture", map[string]interface{}{"error": err.Error()})
		}
		c.setPartial("")
		c.fail(&CaptureError{Err: ErrTimeout})
	case StateSpeaking:
		if err := c.playback.Cancel(); err != nil {
			c.logger.Warn(module, "Failed to cancel playback", map[string]interface{}{"error": err.Error()})
		}
		c.fail(&PlaybackError{Err: ErrTimeout})
	}
	c.enter(StateIdle)
}

// enter moves to a new state, bumping the operation counter and arming the
// watchdog for states that wait on a collaborator.
func (c *Coordinator) enter(to State) {
	c.op++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if to != StateProcessing && c.cancelReply != nil {
		c.cancelReply()
		c.cancelReply = nil
	}

	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()

	var timeout time.Duration
	switch to {
	case StateListening:
		timeout = c.cfg.CaptureTimeout
	case StateProcessing:
		timeout = c.cfg.ReplyTimeout
	case StateSpeaking:
		timeout = c.cfg.PlaybackTimeout
	}
	if timeout > 0 {
		op := c.op
		c.timer = time.AfterFunc(timeout, func() {
			c.Notify(timeoutExpired{op: op, state: to})
		})
	}

	c.logger.Debug(module, "State transition", map[string]interface{}{"from": from.String(), "to": to.String()})
	for _, o := range c.observers {
		o.StateChanged(from, to)
	}
}

// current reports whether a collaborator signal belongs to the capture or
// speech started on entry to the present state.
func (c *Coordinator) current(state State, seq uint64) bool {
	return c.State() == state && seq == c.op
}

func (c *Coordinator) appendUtterance(role dialogue.Role, text string) {
	u := dialogue.NewUtterance(role, text, c.now())
	c.transcript.Append(u)
	for _, o := range c.observers {
		o.UtteranceAppended(u)
	}
}

func (c *Coordinator) setPartial(text string) {
	c.mu.Lock()
	changed := c.partial != text
	c.partial = text
	c.mu.Unlock()

	if !changed {
		return
	}
	for _, o := range c.observers {
		o.PartialText(text)
	}
}

func (c *Coordinator) fail(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()

	c.logger.Warn(module, "Turn failed", map[string]interface{}{"error": err.Error(), "state": c.State().String()})
	for _, o := range c.observers {
		o.Failed(err)
	}
}

func (c *Coordinator) clearError() {
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
}

func (c *Coordinator) snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		State:      c.state,
		Partial:    c.partial,
		Transcript: c.transcript.Entries(),
	}
	if c.lastErr != nil {
		snap.LastError = c.lastErr.Error()
	}
	return snap
}

func (c *Coordinator) shutdown() {
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.cancelReply != nil {
		c.cancelReply()
	}

	switch c.State() {
	case StateListening:
		_ = c.capture.Stop()
	case StateSpeaking:
		_ = c.playback.Cancel()
	}
	close(c.done)
}
