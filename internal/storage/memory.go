package storage

import (
	"container/list"
	"context"
	"sync"
	"time"

	apperrors "content-brainstorm/internal/common/errors"
	"content-brainstorm/internal/common/logger"
	"content-brainstorm/internal/common/metrics"
	"content-brainstorm/internal/models"
)

// MemoryStore keeps sessions in memory under a capacity bound with LRU
// eviction. A single coarse lock guards both the map and the recency list so
// concurrent stores cannot corrupt the eviction ordering.
type MemoryStore struct {
	mu          sync.Mutex
	maxSessions int
	sessions    map[string]*list.Element
	order       *list.List // front = oldest, back = most recently used
	logger      logger.Logger
}

type memoryEntry struct {
	session *models.AnalysisSession
}

func NewMemoryStore(maxSessions int, log logger.Logger) *MemoryStore {
	if maxSessions <= 0 {
		maxSessions = 50
	}
	return &MemoryStore{
		maxSessions: maxSessions,
		sessions:    make(map[string]*list.Element),
		order:       list.New(),
		logger: log.With(map[string]interface{}{
			"store": "memory",
		}),
	}
}

func (s *MemoryStore) Store(_ context.Context, session *models.AnalysisSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, exists := s.sessions[session.SessionID]; exists {
		elem.Value.(*memoryEntry).session = session
		s.order.MoveToBack(elem)
		return nil
	}

	if s.order.Len() >= s.maxSessions {
		s.evictOldestLocked()
	}

	elem := s.order.PushBack(&memoryEntry{session: session})
	s.sessions[session.SessionID] = elem

	metrics.SessionsStored.WithLabelValues("memory").Inc()
	s.logger.Info("stored analysis session", map[string]interface{}{
		"sessionId": session.SessionID,
		"channels":  len(session.Channels),
		"ideas":     session.IdeaCount(),
	})
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*models.AnalysisSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, exists := s.sessions[sessionID]
	if !exists {
		return nil, apperrors.NewSessionNotFoundError(sessionID)
	}
	s.order.MoveToBack(elem)
	return elem.Value.(*memoryEntry).session, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*models.AnalysisSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make([]*models.AnalysisSession, 0, s.order.Len())
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		sessions = append(sessions, elem.Value.(*memoryEntry).session)
	}
	return sessions, nil
}

func (s *MemoryStore) Stats(_ context.Context) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	totalIdeas := 0
	recentSessions := 0
	cutoff := time.Now().Add(-time.Hour)
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		session := elem.Value.(*memoryEntry).session
		totalIdeas += session.IdeaCount()
		if session.CreatedAt.After(cutoff) {
			recentSessions++
		}
	}

	return map[string]interface{}{
		"implementation":         "memory",
		"totalSessions":          len(s.sessions),
		"maxSessions":            s.maxSessions,
		"totalIdeas":             totalIdeas,
		"recentlyActiveSessions": recentSessions,
	}
}

// evictOldestLocked removes the least recently used session. Caller holds mu.
func (s *MemoryStore) evictOldestLocked() {
	front := s.order.Front()
	if front == nil {
		return
	}
	evicted := front.Value.(*memoryEntry).session
	s.order.Remove(front)
	delete(s.sessions, evicted.SessionID)

	metrics.SessionsEvicted.Inc()
	s.logger.Info("evicted oldest session", map[string]interface{}{
		"sessionId": evicted.SessionID,
	})
}
