package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	sessionCookie = "rvuweb_session"
	sessionTTL    = 12 * time.Hour
)

type flash struct {
	Kind    string
	Message string
}

type session struct {
	expires time.Time
	flashes []flash
}

// sessionStore tracks authenticated sessions in memory. Tokens are random
// UUIDs; restarting the server signs everyone out.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (s *sessionStore) create() string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = &session{expires: time.Now().Add(sessionTTL)}
	return token
}

func (s *sessionStore) valid(token string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return false
	}
	if time.Now().After(sess.expires) {
		delete(s.sessions, token)
		return false
	}
	return true
}

func (s *sessionStore) destroy(token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

func (s *sessionStore) pushFlash(token, kind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[token]; ok {
		sess.flashes = append(sess.flashes, flash{Kind: kind, Message: message})
	}
}

func (s *sessionStore) popFlashes(token string) []flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok || len(sess.flashes) == 0 {
		return nil
	}
	out := sess.flashes
	sess.flashes = nil
	return out
}

func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
