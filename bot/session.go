package bot

import "sync"

// maxCleanup bounds the pending-deletion list; the oldest ids are dropped
// first, which at worst leaves a stray message in the transcript.
const maxCleanup = 20

// Session is the per-conversation state passed to every handler. It lives
// only for the duration of the conversation and is reset on completion.
type Session struct {
	State State

	Brand  string
	Row    int
	Days   int
	Sum    int
	Months int

	Deposit string
	Contact string

	FolderID         string // inspection folder for the selected bike
	ContractFolderID string // contract-photo folder, reused across photos

	OverdueFee  int
	WashFee     int
	DaysLate    int
	OverdueNote string

	RentRow   int // replace: the outgoing (rented) bike
	BaseBrand string

	Cleanup []int // ids of our messages to delete before the next step
}

func (s *Session) track(msgID int) {
	if len(s.Cleanup) >= maxCleanup {
		s.Cleanup = s.Cleanup[1:]
	}
	s.Cleanup = append(s.Cleanup, msgID)
}

type sessions struct {
	mu sync.RWMutex
	m  map[int64]*Session
}

func newSessions() *sessions {
	return &sessions{m: make(map[int64]*Session)}
}

// get returns the conversation's session, creating it on first contact.
func (s *sessions) get(userID int64) *Session {
	s.mu.RLock()
	sess, ok := s.m[userID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.m[userID]; ok {
		return sess
	}
	sess = &Session{State: StateMenu}
	s.m[userID] = sess
	return sess
}

// reset clears everything but keeps the cleanup list so the next step can
// still sweep stale messages.
func (s *sessions) reset(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.m[userID]
	sess := &Session{State: StateMenu}
	if old != nil {
		sess.Cleanup = old.Cleanup
	}
	s.m[userID] = sess
	return sess
}
