package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	ChatStatusSuccess = "success"

	// Body of every 500 from the chat endpoint.
	ChatFailureMessage = "Failed to process request"
)

const (
	SessionLeaseHolderPrefix = "session:"
	SessionNotFoundMessage   = "No active session"
	SessionBusyMessage       = "Another conversation is already active"
)
