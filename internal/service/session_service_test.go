package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/pkg/dialogue"
	"voice-agent-be/pkg/events"
	"voice-agent-be/pkg/interaction"
	"voice-agent-be/pkg/lease"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	interaction.BaseObserver
	spoken chan string
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{spoken: make(chan string, 4)}
}

func (d *fakeDevice) Start(context.Context, uint64, string) error { return nil }
func (d *fakeDevice) Stop() error                                  { return nil }
func (d *fakeDevice) Cancel() error                                { return nil }

func (d *fakeDevice) Speak(_ context.Context, _ uint64, text string, _ interaction.Prosody) error {
	d.spoken <- text
	return nil
}

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, event.EventType())
	return nil
}

func (p *recordingPublisher) has(eventType string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.types {
		if t == eventType {
			return true
		}
	}
	return false
}

func newTestSessionService(ttl time.Duration) (*sessionService, lease.Lease, *recordingPublisher) {
	l := lease.NewMemoryLease()
	pub := &recordingPublisher{}
	cfg := interaction.DefaultConfig()
	svc := NewSessionService(cfg, ttl, newTestChatService(), l, pub, logger.NewNopLogger())
	return svc.(*sessionService), l, pub
}

func TestOnlyOneSessionAtATime(t *testing.T) {
	svc, l, pub := newTestSessionService(time.Hour)
	ctx := context.Background()
	defer svc.CloseAll()

	first, err := svc.Open(ctx, newFakeDevice())
	require.NoError(t, err)
	assert.True(t, pub.has(events.TypeSessionOpened))

	_, err = svc.Open(ctx, newFakeDevice())
	assert.ErrorIs(t, err, ErrSessionBusy)

	active, ok := svc.Active()
	require.True(t, ok)
	assert.Equal(t, first.ID, active.ID)

	require.NoError(t, svc.Close(ctx, first.ID))
	assert.ErrorIs(t, svc.Close(ctx, first.ID), ErrSessionNotFound)
	assert.True(t, pub.has(events.TypeSessionClosed))

	select {
	case <-first.Coordinator.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("coordinator still running after close")
	}

	_, held, err := l.Holder(ctx)
	require.NoError(t, err)
	assert.False(t, held)

	second, err := svc.Open(ctx, newFakeDevice())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestDescribeSession(t *testing.T) {
	svc, _, _ := newTestSessionService(time.Hour)
	ctx := context.Background()
	defer svc.CloseAll()

	device := newFakeDevice()
	session, err := svc.Open(ctx, device)
	require.NoError(t, err)

	require.NoError(t, session.Coordinator.Do(ctx, interaction.SubmitText{Text: "what time is it"}))
	select {
	case text := <-device.spoken:
		assert.Contains(t, text, "The current time is")
	case <-time.After(2 * time.Second):
		t.Fatal("reply was not spoken")
	}

	res, err := svc.Describe(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "speaking", res.State)
	require.Len(t, res.Transcript, 2)
	assert.Equal(t, string(dialogue.RoleUser), res.Transcript[0].Role)
	assert.Equal(t, "what time is it", res.Transcript[0].Text)

	svc.Touch(ctx, session.ID)

	_, err = svc.Describe(ctx, uuid.Nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestIdleSessionExpires(t *testing.T) {
	svc, l, pub := newTestSessionService(20 * time.Millisecond)
	ctx := context.Background()

	session, err := svc.Open(ctx, newFakeDevice())
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)
	svc.repo.Flush()

	select {
	case <-session.Coordinator.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expired session kept running")
	}
	assert.True(t, pub.has(events.TypeSessionClosed))

	_, held, _ := l.Holder(ctx)
	assert.False(t, held)
}
