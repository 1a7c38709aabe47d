package screening

import (
	"sync"
	"time"

	"github.com/google/uuid"

	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
)

const DEFAULT_SESSION_TTL = 30 * time.Minute

// SessionRegistry holds the live screening sessions of this process. A
// session's lifetime matches one enrollment visit; idle sessions expire
// after the TTL. Nothing is persisted, a restart simply drops them.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	if ttl <= 0 {
		ttl = DEFAULT_SESSION_TTL
	}
	return &SessionRegistry{
		sessions: map[string]*Session{},
		ttl:      ttl,
	}
}

// Create registers a new session for the descriptor and returns it.
func (r *SessionRegistry) Create(descriptor enrollmentTypes.EnrollmentDescriptor, originalURL string) *Session {
	session := NewSession(uuid.NewString(), descriptor, originalURL)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneExpired()
	r.sessions[session.ID] = session
	return session
}

// Get returns the live session with the given id, or ErrSessionNotFound.
func (r *SessionRegistry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneExpired()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Remove drops a session, normally once it reached a terminal state and the
// caller delivered the routed action.
func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len reports the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneExpired()
	return len(r.sessions)
}

// pruneExpired removes idle sessions; callers must hold the registry lock.
func (r *SessionRegistry) pruneExpired() {
	deadline := time.Now().Add(-r.ttl)
	for id, session := range r.sessions {
		session.mu.Lock()
		expired := session.lastActive.Before(deadline)
		session.mu.Unlock()
		if expired {
			delete(r.sessions, id)
		}
	}
}
