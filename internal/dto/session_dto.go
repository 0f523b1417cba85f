package dto

import (
	"time"

	"github.com/google/uuid"
)

type UtteranceDTO struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionResponse struct {
	Id         uuid.UUID      `json:"id"`
	State      string         `json:"state"`
	Partial    string         `json:"partial"`
	LastError  string         `json:"last_error,omitempty"`
	OpenedAt   time.Time      `json:"opened_at"`
	Transcript []UtteranceDTO `json:"transcript"`
}
