package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"voice-agent-be/internal/dto"
	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/internal/pkg/serverutils"
	"voice-agent-be/internal/service"
	"voice-agent-be/pkg/dialogue"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingChatService struct{}

func (failingChatService) Chat(context.Context, *dto.ChatRequest) (*dto.ChatResponse, error) {
	return nil, errors.New("engine exploded")
}

func (failingChatService) Reply(context.Context, []dialogue.Utterance) (string, error) {
	return "", errors.New("engine exploded")
}

func newTestApp(svc service.IChatService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewChatController(svc, logger.NewNopLogger()).RegisterRoutes(app.Group("/api"))
	return app
}

func post(t *testing.T, app *fiber.App, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestChatEndpoint(t *testing.T) {
	app := newTestApp(service.NewChatService(dialogue.NewEngine(), "", logger.NewNopLogger()))

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{
			name:    "greeting",
			body:    `{"messages":[{"role":"user","content":"Hi there"}]}`,
			status:  fiber.StatusOK,
			message: dialogue.ReplyGreeting,
		},
		{
			name:    "last message wins",
			body:    `{"messages":[{"role":"user","content":"hello"},{"role":"assistant","content":"Hello!"},{"role":"user","content":"What's the weather like?"}]}`,
			status:  fiber.StatusOK,
			message: dialogue.ReplyWeather,
		},
		{
			name:    "empty conversation",
			body:    `{"messages":[]}`,
			status:  fiber.StatusOK,
			message: dialogue.ReplyFallback,
		},
		{
			name:    "system role accepted",
			body:    `{"messages":[{"role":"system","content":"hi"}]}`,
			status:  fiber.StatusOK,
			message: dialogue.ReplyGreeting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, app, tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, "success", body["status"])
		})
	}
}

func TestChatEndpointRejectsBadRequests(t *testing.T) {
	app := newTestApp(service.NewChatService(dialogue.NewEngine(), "", logger.NewNopLogger()))

	for _, body := range []string{
		`{"messages":`,
		`{}`,
		`{"messages":[{"role":"robot","content":"hi"}]}`,
	} {
		status, out := post(t, app, body)
		assert.Equal(t, fiber.StatusBadRequest, status, body)
		assert.Equal(t, false, out["success"], body)
	}
}

func TestChatEndpointInternalFailure(t *testing.T) {
	app := newTestApp(failingChatService{})

	status, body := post(t, app, `{"messages":[{"role":"user","content":"hello"}]}`)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, map[string]interface{}{"error": "Failed to process request"}, body)
}
