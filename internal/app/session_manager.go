package app

import (
	"sync"
	"time"
)

// Session is the per-chat state of a manager: the delay workflow and the
// inline date editor.
type Session struct {
	ChatID     int64
	Delay      *DelayWorkflow
	Editor     *DateEditor
	lastActive time.Time
}

// SessionFactory builds a fresh session for a chat.
type SessionFactory func(chatID int64) *Session

// SessionManager keeps one Session per chat and forgets idle ones.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	factory  SessionFactory
	now      func() time.Time
}

func NewSessionManager(factory SessionFactory) *SessionManager {
	return &SessionManager{
		sessions: make(map[int64]*Session),
		factory:  factory,
		now:      time.Now,
	}
}

// Get returns the chat's session, creating it on first use, and marks it active.
func (m *SessionManager) Get(chatID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[chatID]
	if !ok {
		s = m.factory(chatID)
		s.ChatID = chatID
		m.sessions[chatID] = s
	}
	s.lastActive = m.now()
	return s
}

// Len reports the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than ttl. An open delay workflow is
// cancelled first; sessions with a delay or date commit in flight are kept. It returns the
// chats whose delay workflow was cancelled.
func (m *SessionManager) Sweep(ttl time.Duration) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-ttl)
	var cancelled []int64
	for chatID, s := range m.sessions {
		if s.lastActive.After(cutoff) || s.Editor.Committing() {
			continue
		}
		switch s.Delay.State() {
		case DelayCommitting:
			continue
		case DelayOpen:
			s.Delay.Close()
			cancelled = append(cancelled, chatID)
		}
		delete(m.sessions, chatID)
	}
	return cancelled
}
