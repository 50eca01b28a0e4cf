package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-engine/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions hold timers and subscribers, so they stay in a local map; Redis
// only carries a liveness marker per session so other instances and
// operators can see which attempts are open.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), sessionKey(session.ID()), session.QuizID(), s.ttl).Err()
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), sessionKey(sessionID)).Err()
}

// CloseAll stops every local session without submitting it and removes
// their liveness markers.
func (s *SessionStore) CloseAll(ctx context.Context) int {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*app.Session)
	s.mu.Unlock()
	if len(sessions) == 0 {
		return 0
	}
	keys := make([]string, 0, len(sessions))
	for id, session := range sessions {
		session.Close()
		keys = append(keys, sessionKey(id))
	}
	_ = s.client.Del(ctx, keys...).Err()
	return len(sessions)
}

// Live reports whether the liveness marker for sessionID is still present.
func (s *SessionStore) Live(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func sessionKey(sessionID string) string {
	return "quiz:session:" + sessionID
}
