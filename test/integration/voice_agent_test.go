package integration

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"voice-agent-be/internal/bootstrap"
	"voice-agent-be/internal/config"
	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/internal/server"
	internalWS "voice-agent-be/internal/websocket"
	"voice-agent-be/pkg/dialogue"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	// Load .env from root (2 levels up) because tests run in package dir
	if err := godotenv.Load("../../.env"); err != nil {
		t.Logf("Warning: Could not load ../../.env: %v", err)
	}
	t.Setenv("NATS_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("JWT_SECRET", "")
	cfg := config.Load()

	container := bootstrap.NewContainerWithLoggers(cfg, logger.NewNopLogger(), logger.NewNopLogger())
	t.Cleanup(container.Close)

	return server.New(cfg, container)
}

func chat(t *testing.T, app *fiber.App, messages ...string) string {
	t.Helper()

	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	body := struct {
		Messages []message `json:"messages"`
	}{}
	for i, m := range messages {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		body.Messages = append(body.Messages, message{Role: role, Content: m})
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "success", out.Status)
	return out.Message
}

func TestChatConversation(t *testing.T) {
	app := newTestServer(t).GetApp()

	first := chat(t, app, "Hi there")
	assert.Equal(t, dialogue.ReplyGreeting, first)

	second := chat(t, app, "Hi there", first, "My name is Alex")
	assert.Equal(t, dialogue.ReplyNameSelfReference, second)

	third := chat(t, app, "Hi there", first, "My name is Alex", second, "What's the weather like?")
	assert.Equal(t, dialogue.ReplyWeather, third)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	metrics, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `voice_agent_replies_total{intent="WEATHER"}`)
}

func TestHealth(t *testing.T) {
	app := newTestServer(t).GetApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(internalWS.Frame) bool) internalWS.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var f internalWS.Frame
		require.NoError(t, conn.ReadJSON(&f))
		if match(f) {
			return f
		}
	}
}

func ofType(frameType string) func(internalWS.Frame) bool {
	return func(f internalWS.Frame) bool { return f.Type == frameType }
}

func TestLiveVoiceSession(t *testing.T) {
	srv := newTestServer(t)
	app := srv.GetApp()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	url := "ws://" + ln.Addr().String() + "/api/session/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	session := readUntil(t, conn, ofType(internalWS.FrameSession))
	require.NotEmpty(t, session.SessionID)
	assert.Equal(t, "idle", session.State)

	// A second conversation is refused while this one is live
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	require.NoError(t, conn.WriteJSON(internalWS.Frame{Type: internalWS.FrameTextSubmit, Text: "Hi there"}))

	user := readUntil(t, conn, ofType(internalWS.FrameUtterance))
	require.NotNil(t, user.Utterance)
	assert.Equal(t, dialogue.RoleUser, user.Utterance.Role)

	speak := readUntil(t, conn, ofType(internalWS.FrameSpeak))
	assert.Equal(t, dialogue.ReplyGreeting, speak.Text)
	require.NotNil(t, speak.Prosody)
	assert.Equal(t, 1.0, speak.Prosody.Rate)
	require.NotZero(t, speak.Seq)

	// Busy while speaking
	require.NoError(t, conn.WriteJSON(internalWS.Frame{Type: internalWS.FrameCaptureStart}))
	busy := readUntil(t, conn, ofType(internalWS.FrameError))
	assert.Contains(t, busy.Error, "another operation is in progress")

	// An untagged end signal does not belong to this speech
	require.NoError(t, conn.WriteJSON(internalWS.Frame{Type: internalWS.FramePlaybackEnd}))
	require.NoError(t, conn.WriteJSON(internalWS.Frame{Type: internalWS.FrameCaptureStart}))
	busy = readUntil(t, conn, ofType(internalWS.FrameError))
	assert.Contains(t, busy.Error, "another operation is in progress")

	require.NoError(t, conn.WriteJSON(internalWS.Frame{Type: internalWS.FramePlaybackEnd, Seq: speak.Seq}))
	readUntil(t, conn, func(f internalWS.Frame) bool { return f.Type == internalWS.FrameState && f.State == "idle" })

	resp2, err := app.Test(httptest.NewRequest("GET", "/api/session", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp2.StatusCode)
	var described struct {
		Data struct {
			Id         string `json:"id"`
			State      string `json:"state"`
			Transcript []struct {
				Text string `json:"text"`
			} `json:"transcript"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&described))
	assert.Equal(t, session.SessionID, described.Data.Id)
	assert.Equal(t, "idle", described.Data.State)
	assert.Len(t, described.Data.Transcript, 2)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool {
		r, err := app.Test(httptest.NewRequest("GET", "/api/session", nil))
		return err == nil && r.StatusCode == fiber.StatusNotFound
	}, 5*time.Second, 20*time.Millisecond)
}
