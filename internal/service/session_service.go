package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"voice-agent-be/internal/constant"
	"voice-agent-be/internal/dto"
	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/internal/repository/memory"
	"voice-agent-be/pkg/events"
	"voice-agent-be/pkg/interaction"
	"voice-agent-be/pkg/lease"
	"voice-agent-be/pkg/observability"
	"voice-agent-be/pkg/store"

	"github.com/google/uuid"
)

const defaultLeaseTTL = 30 * time.Minute

var (
	ErrSessionBusy     = errors.New("another conversation is already active")
	ErrSessionNotFound = errors.New("session not found")
)

// SessionDevice is the speech device on the other end of a live session: it
// listens, speaks and renders what the coordinator reports.
type SessionDevice interface {
	interaction.Capture
	interaction.Playback
	interaction.Observer
}

type ISessionService interface {
	Open(ctx context.Context, device SessionDevice) (*store.Session, error)
	Get(id uuid.UUID) (*store.Session, bool)
	Active() (*store.Session, bool)
	Describe(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error)
	Touch(ctx context.Context, id uuid.UUID)
	Close(ctx context.Context, id uuid.UUID) error
	CloseAll()
}

type sessionService struct {
	cfg       interaction.Config
	ttl       time.Duration
	replier   interaction.Replier
	lease     lease.Lease
	publisher IPublisherService
	logger    logger.ILogger
	repo      *memory.SessionRepository
}

func NewSessionService(
	cfg interaction.Config,
	ttl time.Duration,
	replier interaction.Replier,
	sessionLease lease.Lease,
	publisher IPublisherService,
	log logger.ILogger,
) ISessionService {
	s := &sessionService{
		cfg:       cfg,
		ttl:       ttl,
		replier:   replier,
		lease:     sessionLease,
		publisher: publisher,
		logger:    log,
	}
	s.repo = memory.NewSessionRepository(ttl, s.onEvicted)
	return s
}

func (s *sessionService) Open(ctx context.Context, device SessionDevice) (*store.Session, error) {
	id := uuid.New()
	holder := constant.SessionLeaseHolderPrefix + id.String()

	ok, err := s.lease.Acquire(ctx, holder, s.leaseTTL())
	if err != nil {
		return nil, fmt.Errorf("acquire session lease: %w", err)
	}
	if !ok {
		return nil, ErrSessionBusy
	}

	coordinator := interaction.New(s.cfg, s.replier, device, device, s.logger,
		device,
		newEventObserver(id, s.publisher, s.logger),
	)

	runCtx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := coordinator.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("SessionService", "Coordinator stopped", map[string]interface{}{
				"session_id": id.String(),
				"error":      err.Error(),
			})
		}
	}()

	session := store.NewSession(id, holder, coordinator, cancel)
	s.repo.Save(session)

	observability.ActiveSessions.Inc()
	s.publish(ctx, events.TypeSessionOpened, id)
	s.logger.Info("SessionService", "Session opened", map[string]interface{}{"session_id": id.String()})

	return session, nil
}

func (s *sessionService) Get(id uuid.UUID) (*store.Session, bool) {
	return s.repo.Get(id)
}

// Active returns the oldest live session of this instance.
func (s *sessionService) Active() (*store.Session, bool) {
	sessions := s.repo.List()
	if len(sessions) == 0 {
		return nil, false
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].OpenedAt.Before(sessions[j].OpenedAt)
	})
	return sessions[0], true
}

func (s *sessionService) Describe(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error) {
	session, ok := s.repo.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	snap, err := session.Coordinator.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	transcript := make([]dto.UtteranceDTO, 0, len(snap.Transcript))
	for _, u := range snap.Transcript {
		transcript = append(transcript, dto.UtteranceDTO{
			Id:        u.ID,
			Role:      string(u.Role),
			Text:      u.Text,
			CreatedAt: u.Timestamp,
		})
	}

	return &dto.SessionResponse{
		Id:         session.ID,
		State:      snap.State.String(),
		Partial:    snap.Partial,
		LastError:  snap.LastError,
		OpenedAt:   session.OpenedAt,
		Transcript: transcript,
	}, nil
}

// Touch keeps an idle session and its lease alive.
func (s *sessionService) Touch(ctx context.Context, id uuid.UUID) {
	session, ok := s.repo.Get(id)
	if !ok {
		return
	}
	s.repo.Touch(id)

	ok, err := s.lease.Refresh(ctx, session.Holder, s.leaseTTL())
	if err != nil || !ok {
		s.logger.Warn("SessionService", "Failed to refresh session lease", map[string]interface{}{
			"session_id": id.String(),
			"lost":       !ok,
			"error":      fmt.Sprint(err),
		})
	}
}

func (s *sessionService) Close(_ context.Context, id uuid.UUID) error {
	if _, ok := s.repo.Get(id); !ok {
		return ErrSessionNotFound
	}
	s.repo.Delete(id)
	return nil
}

func (s *sessionService) CloseAll() {
	for _, session := range s.repo.List() {
		s.repo.Delete(session.ID)
	}
}

// onEvicted runs once per session, on Close or on idle expiry.
func (s *sessionService) onEvicted(session *store.Session) {
	session.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.lease.Release(ctx, session.Holder); err != nil {
		s.logger.Warn("SessionService", "Failed to release session lease", map[string]interface{}{
			"session_id": session.ID.String(),
			"error":      err.Error(),
		})
	}

	observability.ActiveSessions.Dec()
	s.publish(ctx, events.TypeSessionClosed, session.ID)
	s.logger.Info("SessionService", "Session closed", map[string]interface{}{"session_id": session.ID.String()})
}

func (s *sessionService) publish(ctx context.Context, eventType string, id uuid.UUID) {
	evt := events.New(eventType, map[string]interface{}{events.KeySessionID: id.String()})
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("SessionService", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

func (s *sessionService) leaseTTL() time.Duration {
	if s.ttl > 0 {
		return s.ttl
	}
	return defaultLeaseTTL
}
