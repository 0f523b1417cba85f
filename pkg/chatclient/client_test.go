package chatclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voice-agent-be/pkg/dialogue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func history(texts ...string) []dialogue.Utterance {
	out := make([]dialogue.Utterance, 0, len(texts))
	for i, text := range texts {
		role := dialogue.RoleUser
		if i%2 == 1 {
			role = dialogue.RoleAgent
		}
		out = append(out, dialogue.NewUtterance(role, text, time.Now()))
	}
	return out
}

func TestReplySendsTranscript(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(chatResponse{Message: "Nice to meet you!", Status: "success"})
	}))
	defer srv.Close()

	reply, err := New(srv.URL+"/").Reply(context.Background(), history("hi", "Hello!", "my name is Alex"))

	require.NoError(t, err)
	assert.Equal(t, "Nice to meet you!", reply)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, chatMessage{Role: "user", Content: "hi"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "assistant", Content: "Hello!"}, got.Messages[1])
	assert.Equal(t, "my name is Alex", got.Messages[2].Content)
}

func TestReplyFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"Failed to process request"}`, "Failed to process request"},
		{"plain text error", http.StatusBadGateway, "upstream down", "upstream down"},
		{"malformed body", http.StatusOK, "{not json", "unmarshal response"},
		{"unexpected status", http.StatusOK, `{"message":"x","status":"error"}`, "unexpected status"},
		{"empty reply", http.StatusOK, `{"message":"  ","status":"success"}`, "empty reply"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).Reply(context.Background(), history("hello"))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReplyHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(srv.URL).Reply(ctx, history("hello"))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
