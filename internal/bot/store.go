package bot

import (
	"sync"
	"time"

	"github.com/matheuscscp/groupsplit/models"
)

type (
	// session is everything the bot knows about one user. Its mutex serializes
	// the user's events, the store mutex only guards the map.
	session struct {
		mu      sync.Mutex
		group   *models.Group
		conv    step
		touched time.Time
	}

	store struct {
		mu       sync.Mutex
		sessions map[UserID]*session
	}
)

func newStore() *store {
	return &store{sessions: make(map[UserID]*session)}
}

// get returns the session of userID, creating it on first use. Sessions are
// never removed from the map so that a goroutine waiting on a session's lock
// never ends up holding an orphan.
func (s *store) get(userID UserID) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{}
		s.sessions[userID] = sess
	}
	return sess
}

func (s *store) with(userID UserID, fn func(sess *session)) {
	sess := s.get(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess)
}
