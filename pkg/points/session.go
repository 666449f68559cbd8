package points

import (
	"sync"
	"time"
)

// Stage is the step of the submission dialogue a user is in.
type Stage int

const (
	StageAwaitingAmount Stage = iota + 1
	StageAwaitingTimeSent
	StageAwaitingAvailed
)

func (s Stage) String() string {
	switch s {
	case StageAwaitingAmount:
		return "awaiting_amount"
	case StageAwaitingTimeSent:
		return "awaiting_time_sent"
	case StageAwaitingAvailed:
		return "awaiting_availed"
	default:
		return "unknown"
	}
}

// Session holds the fields collected so far for one user.
type Session struct {
	Stage     Stage
	Amount    string
	TimeSent  string
	UpdatedAt time.Time
}

// slot serializes all dialogue events of a single user. refs counts holders
// and waiters; a slot is dropped from the map only with refs == 0.
type slot struct {
	mu      sync.Mutex
	refs    int
	session *Session
}

// SessionManager keeps one dialogue session per user id. Different users
// never wait for each other beyond the short map lookup.
type SessionManager struct {
	mu    sync.Mutex
	slots map[int64]*slot
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionManager creates a session manager. Sessions idle for longer than
// ttl are discarded, ttl <= 0 keeps them forever.
func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		slots: make(map[int64]*slot),
		ttl:   ttl,
		now:   time.Now,
	}
}

// lock returns the user's slot locked for exclusive use. Expired sessions are
// already cleared.
func (sm *SessionManager) lock(userID int64) *slot {
	sm.mu.Lock()
	sl, ok := sm.slots[userID]
	if !ok {
		sl = &slot{}
		sm.slots[userID] = sl
	}
	sl.refs++
	sm.mu.Unlock()

	sl.mu.Lock()
	if sl.session != nil && sm.expired(sl.session) {
		sl.session = nil
	}

	return sl
}

// unlock releases a slot obtained by lock.
func (sm *SessionManager) unlock(userID int64, sl *slot) {
	sm.mu.Lock()
	sl.refs--
	if sl.refs == 0 && sl.session == nil {
		delete(sm.slots, userID)
	}
	sm.mu.Unlock()

	sl.mu.Unlock()
}

func (sm *SessionManager) expired(s *Session) bool {
	return sm.ttl > 0 && sm.now().Sub(s.UpdatedAt) > sm.ttl
}

// Get returns a copy of the user's active session.
func (sm *SessionManager) Get(userID int64) (Session, bool) {
	sl := sm.lock(userID)
	defer sm.unlock(userID, sl)

	if sl.session == nil {
		return Session{}, false
	}

	return *sl.session, true
}

// Clear drops the user's session and reports whether one existed.
func (sm *SessionManager) Clear(userID int64) bool {
	sl := sm.lock(userID)
	defer sm.unlock(userID, sl)

	existed := sl.session != nil
	sl.session = nil

	return existed
}

// Sweep removes expired sessions of users that are not in the middle of an
// event and returns how many were removed.
func (sm *SessionManager) Sweep() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	removed := 0
	for userID, sl := range sm.slots {
		// refs == 0 means nobody holds or waits for sl.mu
		if sl.refs != 0 {
			continue
		}
		if sl.session == nil || sm.expired(sl.session) {
			delete(sm.slots, userID)
			removed++
		}
	}

	return removed
}

// Len returns the number of users with an active or pending slot.
func (sm *SessionManager) Len() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return len(sm.slots)
}
