package metrics

import (
	"sync"
	"time"
)

// SessionMetrics holds per-session duplicate-suppression counters.
type SessionMetrics struct {
	TotalResponses          int       `json:"total_responses"`
	ResponsesWithDuplicates int       `json:"responses_with_duplicates"`
	TotalDuplicatesDetected int       `json:"total_duplicates_detected"`
	LastDuplicateAt         time.Time `json:"last_duplicate_at,omitempty"`
	LastCleanAt             time.Time `json:"last_clean_at,omitempty"`
}

// Store aggregates duplication metrics across sessions. All mutation
// and read paths take the single store lock, so per-session counters
// and the global aggregates stay consistent under concurrent sessions.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*SessionMetrics
	global   SessionMetrics
}

// NewStore creates an empty metrics store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*SessionMetrics),
	}
}

func (s *Store) session(sessionID string) *SessionMetrics {
	m, ok := s.sessions[sessionID]
	if !ok {
		m = &SessionMetrics{}
		s.sessions[sessionID] = m
	}
	return m
}

// IncrementDuplicateDetected records one dropped duplicate for the session.
func (s *Store) IncrementDuplicateDetected(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	m := s.session(sessionID)
	m.TotalDuplicatesDetected++
	m.LastDuplicateAt = now
	s.global.TotalDuplicatesDetected++
	s.global.LastDuplicateAt = now
}

// RecordResponseQuality records the outcome of one completed response.
func (s *Store) RecordResponseQuality(sessionID string, hadDuplicates bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	m := s.session(sessionID)
	m.TotalResponses++
	s.global.TotalResponses++
	if hadDuplicates {
		m.ResponsesWithDuplicates++
		s.global.ResponsesWithDuplicates++
	} else {
		m.LastCleanAt = now
		s.global.LastCleanAt = now
	}
}

// Session returns a copy of the session's counters.
func (s *Store) Session(sessionID string) (SessionMetrics, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.sessions[sessionID]
	if !ok {
		return SessionMetrics{}, false
	}
	return *m, true
}

// Global returns a copy of the cross-session aggregates.
func (s *Store) Global() SessionMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.global
}

// DuplicateRate returns the fraction of the session's responses that
// contained at least one duplicate, or 0 when nothing was recorded.
func (s *Store) DuplicateRate(sessionID string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.sessions[sessionID]
	if !ok || m.TotalResponses == 0 {
		return 0
	}
	return float64(m.ResponsesWithDuplicates) / float64(m.TotalResponses)
}

// ExceedsThreshold reports whether the session's duplicate rate is at
// or above the given threshold.
func (s *Store) ExceedsThreshold(sessionID string, threshold float64) bool {
	return s.DuplicateRate(sessionID) >= threshold
}

// ResetSession clears one session's counters, removing its
// contribution from the global aggregates.
func (s *Store) ResetSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	s.global.TotalResponses -= m.TotalResponses
	s.global.ResponsesWithDuplicates -= m.ResponsesWithDuplicates
	s.global.TotalDuplicatesDetected -= m.TotalDuplicatesDetected
	delete(s.sessions, sessionID)
}

// ResetAll clears everything.
func (s *Store) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[string]*SessionMetrics)
	s.global = SessionMetrics{}
}
