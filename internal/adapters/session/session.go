// Package session holds the transient per-user state of in-progress
// insertion ranking flows. The store is process-wide shared mutable state:
// at most one session per user, reclaimed lazily by SweepExpired.
package session

import (
	"hash/fnv"
	"sync"
	"time"
)

const defaultStripeCount = 64

// Session is one user's in-progress binary-search insertion. Ranked is
// fixed for the session's lifetime; Left and Right are the current search
// bounds into it. The session is complete exactly when Left > Right.
type Session struct {
	UserID string
	CityID string

	Left   int
	Right  int
	Ranked []string

	// TempPersonal is the working copy of the user's personal ratings,
	// seeded from the profile plus the provisional seed for CityID.
	TempPersonal map[string]float64

	// TempGlobal collects damped global updates for the cities touched
	// during this session. Values here are never read back as input to
	// later comparisons; each global update starts from the persisted
	// baseline.
	TempGlobal map[string]float64

	Comparisons  int
	LastActivity time.Time
}

// Mid returns the current probe index. It is a pure function of the bounds;
// no "current pair" is stored anywhere.
func (s *Session) Mid() int {
	return (s.Left + s.Right) / 2
}

// Complete reports whether the binary search has converged.
func (s *Session) Complete() bool {
	return s.Left > s.Right
}

// Store maps user ids to their single active session.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	// stripes serialize read-modify-write cycles per user so two concurrent
	// submits for the same user cannot both read the same bounds. Distinct
	// users only contend on a hash collision.
	stripes []sync.Mutex
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithStripeCount sets the number of per-user lock stripes.
func WithStripeCount(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.stripes = make([]sync.Mutex, n)
		}
	}
}

// NewStore creates an empty session store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		stripes:  make([]sync.Mutex, defaultStripeCount),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Lock acquires the stripe guarding userID. Callers hold it for the whole
// read-modify-write of that user's session.
func (s *Store) Lock(userID string) {
	s.stripes[s.stripe(userID)].Lock()
}

// Unlock releases the stripe guarding userID.
func (s *Store) Unlock(userID string) {
	s.stripes[s.stripe(userID)].Unlock()
}

func (s *Store) stripe(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(s.stripes)))
}

// Put stores a session, silently replacing any prior one for the same user.
// It reports whether a prior session was replaced.
func (s *Store) Put(userID string, sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, replaced := s.sessions[userID]
	s.sessions[userID] = sess
	return replaced
}

// Get returns the user's active session, or nil.
func (s *Store) Get(userID string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sessions[userID]
}

// Remove deletes the user's session if present.
func (s *Store) Remove(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
}

// Touch refreshes the session's last activity, extending its life.
func (s *Store) Touch(userID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		sess.LastActivity = now
	}
}

// SweepExpired removes every session inactive longer than timeout and
// returns how many were evicted.
func (s *Store) SweepExpired(now time.Time, timeout time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for userID, sess := range s.sessions {
		if now.Sub(sess.LastActivity) > timeout {
			delete(s.sessions, userID)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of active sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
