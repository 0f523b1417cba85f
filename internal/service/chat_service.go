package service

import (
	"context"
	"time"

	"voice-agent-be/internal/constant"
	"voice-agent-be/internal/dto"
	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/pkg/dialogue"
	"voice-agent-be/pkg/interaction"
	"voice-agent-be/pkg/observability"
)

type IChatService interface {
	// Chat answers the last message of req, treating the rest as history.
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)

	// Reply answers the last utterance of a live transcript.
	Reply(ctx context.Context, history []dialogue.Utterance) (string, error)
}

type chatService struct {
	engine  *dialogue.Engine
	persona string
	logger  logger.ILogger
}

func NewChatService(engine *dialogue.Engine, persona string, log logger.ILogger) IChatService {
	if persona == "" {
		persona = dialogue.DefaultPersona
	}
	return &chatService{
		engine:  engine,
		persona: persona,
		logger:  log,
	}
}

var _ interaction.Replier = (*chatService)(nil)

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	history := make([]dialogue.Utterance, 0, len(req.Messages))
	for _, m := range req.Messages {
		history = append(history, dialogue.Utterance{Role: dialogue.Role(m.Role), Text: m.Content})
	}

	text, err := s.Reply(ctx, history)
	if err != nil {
		return nil, err
	}

	return &dto.ChatResponse{
		Message: text,
		Status:  constant.ChatStatusSuccess,
	}, nil
}

func (s *chatService) Reply(ctx context.Context, history []dialogue.Utterance) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()
	var prior []dialogue.Utterance
	var last string
	if n := len(history); n > 0 {
		prior, last = history[:n-1], history[n-1].Text
	}
	reply := s.engine.Respond(s.persona, prior, last)

	observability.RepliesTotal.WithLabelValues(string(reply.Intent)).Inc()
	observability.ReplyDuration.Observe(time.Since(start).Seconds())

	s.logger.Debug("ChatService", "Reply generated", map[string]interface{}{
		"intent":  string(reply.Intent),
		"history": len(prior),
	})

	return reply.Text, nil
}
