package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/internal/pkg/serverutils"
	"voice-agent-be/internal/service"
	"voice-agent-be/pkg/dialogue"
	"voice-agent-be/pkg/events"
	"voice-agent-be/pkg/interaction"
	"voice-agent-be/pkg/lease"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type silentDevice struct {
	interaction.BaseObserver
}

func (silentDevice) Start(context.Context, uint64, string) error                      { return nil }
func (silentDevice) Stop() error                                                       { return nil }
func (silentDevice) Speak(context.Context, uint64, string, interaction.Prosody) error { return nil }
func (silentDevice) Cancel() error                                                     { return nil }

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, events.Event) error { return nil }

func newTestHandler(t *testing.T) (*fiber.App, service.ISessionService) {
	t.Helper()
	log := logger.NewNopLogger()
	chat := service.NewChatService(dialogue.NewEngine(), "", log)
	sessions := service.NewSessionService(interaction.DefaultConfig(), time.Hour, chat, lease.NewMemoryLease(), discardPublisher{}, log)
	t.Cleanup(sessions.CloseAll)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewSessionHandler(sessions, "", log).RegisterRoutes(app.Group("/api"))
	return app, sessions
}

func decode(t *testing.T, app *fiber.App, method, path string) (int, serverutils.Response[json.RawMessage]) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)

	var body serverutils.Response[json.RawMessage]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestSessionRoutesWithoutSession(t *testing.T) {
	app, _ := newTestHandler(t)

	status, _ := decode(t, app, "GET", "/api/session")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = decode(t, app, "GET", "/api/session/ws")
	assert.Equal(t, fiber.StatusUpgradeRequired, status)

	status, _ = decode(t, app, "DELETE", "/api/session/not-a-uuid")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = decode(t, app, "DELETE", "/api/session/6f1c1a4e-0000-4000-8000-000000000000")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestSessionRoutesWithSession(t *testing.T) {
	app, sessions := newTestHandler(t)
	ctx := context.Background()

	session, err := sessions.Open(ctx, silentDevice{})
	require.NoError(t, err)
	require.NoError(t, session.Coordinator.Do(ctx, interaction.SubmitText{Text: "hello"}))
	require.Eventually(t, func() bool { return len(session.Coordinator.Transcript()) == 2 }, 2*time.Second, 10*time.Millisecond)

	status, body := decode(t, app, "GET", "/api/session")
	require.Equal(t, fiber.StatusOK, status)

	var data struct {
		Id         string `json:"id"`
		State      string `json:"state"`
		Transcript []struct {
			Role string `json:"role"`
			Text string `json:"text"`
		} `json:"transcript"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, session.ID.String(), data.Id)
	assert.Equal(t, "speaking", data.State)
	require.Len(t, data.Transcript, 2)
	assert.Equal(t, "assistant", data.Transcript[1].Role)
	assert.Equal(t, dialogue.ReplyGreeting, data.Transcript[1].Text)

	req := httptest.NewRequest("GET", "/api/session/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	status, _ = decode(t, app, "DELETE", "/api/session/"+session.ID.String())
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = decode(t, app, "GET", "/api/session")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestGetActiveAfterCoordinatorStopped(t *testing.T) {
	app, sessions := newTestHandler(t)

	session, err := sessions.Open(context.Background(), silentDevice{})
	require.NoError(t, err)
	session.Stop()
	<-session.Coordinator.Done()

	status, body := decode(t, app, "GET", "/api/session")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.False(t, body.Success)
}
