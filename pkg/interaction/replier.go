package interaction

import (
	"context"

	"voice-agent-be/pkg/dialogue"
)

// LocalReplier answers in-process with the dialogue engine.
type LocalReplier struct {
	engine  *dialogue.Engine
	persona string
}

func NewLocalReplier(engine *dialogue.Engine, persona string) *LocalReplier {
	return &LocalReplier{engine: engine, persona: persona}
}

func (r *LocalReplier) Reply(ctx context.Context, history []dialogue.Utterance) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(history) == 0 {
		return r.engine.GenerateReply(r.persona, nil, ""), nil
	}

	last := history[len(history)-1]
	return r.engine.GenerateReply(r.persona, history[:len(history)-1], last.Text), nil
}
