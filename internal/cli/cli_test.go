package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voice-agent-be/pkg/dialogue"
	"voice-agent-be/pkg/interaction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestClassify(t *testing.T) {
	stdout, _, err := executeCLI(t, "", "classify", "My", "name", "is", "Alex")
	require.NoError(t, err)
	assert.Contains(t, stdout, "intent: NAME_SELF_REFERENCE")
	assert.Contains(t, stdout, "reply: "+dialogue.ReplyNameSelfReference)
}

func TestClassifyRequiresText(t *testing.T) {
	_, _, err := executeCLI(t, "", "classify")
	assert.Error(t, err)
}

func TestChatAnswersLocally(t *testing.T) {
	stdout, _, err := executeCLI(t, "Hi there\n\nWhat's the weather\n/quit\nthank you\n", "chat")
	require.NoError(t, err)

	assert.Contains(t, stdout, dialogue.ReplyGreeting)
	assert.Contains(t, stdout, dialogue.ReplyWeather)
	assert.NotContains(t, stdout, dialogue.ReplyGratitude)
	assert.Less(t, strings.Index(stdout, dialogue.ReplyGreeting), strings.Index(stdout, dialogue.ReplyWeather))
}

func TestChatApologisesWhenServerFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to process request"}`))
	}))
	defer srv.Close()

	stdout, _, err := executeCLI(t, "hello\n", "chat", "--server", srv.URL)
	require.NoError(t, err)

	assert.Contains(t, stdout, interaction.ApologyReply)
	assert.Contains(t, stdout, "Failed to process request")
}
