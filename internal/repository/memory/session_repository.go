package memory

import (
	"time"

	"voice-agent-be/pkg/store"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository keeps sessions for ttl since their last touch.
// onEvicted runs when a session expires or is deleted.
func NewSessionRepository(ttl time.Duration, onEvicted func(*store.Session)) *SessionRepository {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	c := cache.New(ttl, time.Minute)
	if onEvicted != nil {
		c.OnEvicted(func(_ string, x interface{}) {
			onEvicted(x.(*store.Session))
		})
	}
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID.String(), session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID uuid.UUID) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID.String()); found {
		return x.(*store.Session), true
	}
	return nil, false
}

// Touch restarts the idle timer of a session. A session deleted or expired
// meanwhile stays gone.
func (r *SessionRepository) Touch(sessionID uuid.UUID) bool {
	key := sessionID.String()
	x, found := r.cache.Get(key)
	if !found {
		return false
	}
	return r.cache.Replace(key, x, cache.DefaultExpiration) == nil
}

func (r *SessionRepository) Delete(sessionID uuid.UUID) {
	r.cache.Delete(sessionID.String())
}

// List returns the sessions that have not expired.
func (r *SessionRepository) List() []*store.Session {
	items := r.cache.Items()
	sessions := make([]*store.Session, 0, len(items))
	for _, item := range items {
		sessions = append(sessions, item.Object.(*store.Session))
	}
	return sessions
}

// Flush deletes expired sessions now instead of waiting for the janitor.
func (r *SessionRepository) Flush() {
	r.cache.DeleteExpired()
}
