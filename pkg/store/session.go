package store

import (
	"context"
	"sync"
	"time"

	"voice-agent-be/pkg/interaction"

	"github.com/google/uuid"
)

// Session is a live voice conversation held in memory. Its transcript lives
// and dies with the coordinator.
type Session struct {
	ID          uuid.UUID
	Holder      string // lease holder key
	OpenedAt    time.Time
	Coordinator *interaction.Coordinator

	stop     context.CancelFunc
	stopOnce sync.Once
}

func NewSession(id uuid.UUID, holder string, coordinator *interaction.Coordinator, stop context.CancelFunc) *Session {
	return &Session{
		ID:          id,
		Holder:      holder,
		OpenedAt:    time.Now().UTC(),
		Coordinator: coordinator,
		stop:        stop,
	}
}

// Stop ends the coordinator loop. Safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		if s.stop != nil {
			s.stop()
		}
	})
}
