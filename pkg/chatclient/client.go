package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voice-agent-be/pkg/dialogue"
	"voice-agent-be/pkg/interaction"
)

var ErrEmptyReply = errors.New("chatclient: server returned an empty reply")

// Client asks a remote chat endpoint for replies.
type Client struct {
	BaseURL string
	Client  *http.Client
}

var _ interaction.Replier = &Client{}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// --- Wire structs ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Reply posts the whole transcript. The last entry is the new utterance.
func (c *Client) Reply(ctx context.Context, history []dialogue.Utterance) (string, error) {
	messages := make([]chatMessage, len(history))
	for i, u := range history {
		messages[i] = chatMessage{Role: string(u.Role), Content: u.Text}
	}

	payload, err := json.Marshal(chatRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil {
			if msg := firstNonEmpty(errResp.Error, errResp.Message); msg != "" {
				return "", fmt.Errorf("chat error: status %d: %s", resp.StatusCode, msg)
			}
		}
		return "", fmt.Errorf("chat error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if chatResp.Status != "success" {
		return "", fmt.Errorf("chat error: unexpected status %q", chatResp.Status)
	}
	if strings.TrimSpace(chatResp.Message) == "" {
		return "", ErrEmptyReply
	}

	return chatResp.Message, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
