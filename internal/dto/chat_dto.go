package dto

type ChatMessageDTO struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content"`
}

// ChatRequest carries the transcript. The last message is the new utterance;
// an empty list is answered as an empty utterance.
type ChatRequest struct {
	Messages []ChatMessageDTO `json:"messages" validate:"required,dive"`
}

type ChatResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type ChatErrorResponse struct {
	Error string `json:"error"`
}
