package dialogue

import (
	"strings"
	"time"
)

// Turn is everything a reply producer may look at.
type Turn struct {
	Persona    string
	History    []Utterance
	Utterance  string
	Normalized string
	Now        time.Time
}

// Messages returns the persona-led context for the turn: the persona as a
// system message, then the history in order, then the new user utterance.
func (t Turn) Messages() []Message {
	msgs := make([]Message, 0, len(t.History)+2)
	msgs = append(msgs, Message{Role: RoleSystem, Content: t.Persona})
	for _, u := range t.History {
		msgs = append(msgs, Message{Role: u.Role, Content: u.Text})
	}
	return append(msgs, Message{Role: RoleUser, Content: t.Utterance})
}

// Reply is the outcome of one engine invocation.
type Reply struct {
	Intent   Intent
	Text     string
	Messages []Message
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock used by time-aware replies.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLocation sets the time zone spoken by the time/date reply.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		e.loc = loc
	}
}

// Engine maps a conversation to a reply with a fixed, ordered rule table.
// It holds no conversation state and is safe for concurrent use.
type Engine struct {
	rules []Rule
	now   func() time.Time
	loc   *time.Location
}

// NewEngine creates an engine over the default rule table.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rules: Rules(),
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Normalize trims and case-folds an utterance for matching.
func Normalize(utterance string) string {
	s := strings.ToLower(strings.TrimSpace(utterance))
	return strings.ReplaceAll(s, "’", "'")
}

// Classify returns the intent of the first rule matching the utterance.
func (e *Engine) Classify(utterance string) Intent {
	return e.match(Normalize(utterance)).Intent
}

// Respond produces the reply for newUtterance. It never fails: input that no
// rule recognises, including empty input, gets the fallback reply.
func (e *Engine) Respond(persona string, history []Utterance, newUtterance string) Reply {
	turn := Turn{
		Persona:    persona,
		History:    history,
		Utterance:  newUtterance,
		Normalized: Normalize(newUtterance),
		Now:        e.now().In(e.loc),
	}

	rule := e.match(turn.Normalized)
	text := rule.Produce(turn)
	if text == "" {
		text = ReplyFallback
	}

	return Reply{
		Intent:   rule.Intent,
		Text:     text,
		Messages: turn.Messages(),
	}
}

// GenerateReply is Respond reduced to the reply text.
func (e *Engine) GenerateReply(persona string, history []Utterance, newUtterance string) string {
	return e.Respond(persona, history, newUtterance).Text
}

func (e *Engine) match(normalized string) Rule {
	for _, r := range e.rules {
		if r.Match(normalized) {
			return r
		}
	}
	return Rule{Intent: IntentFallback, Match: always, Produce: static(ReplyFallback)}
}
