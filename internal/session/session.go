// Package session holds the current auth token and the handler that
// receives side-channel errors.
//
// One Session tracks one identity. Clients created without an explicit
// session share Default, so a process has a single credential unless it
// opts into more.
package session

import (
	"log/slog"
	"sync"
)

// ErrorHandler receives errors that do not fail the operation that hit them.
type ErrorHandler func(err error)

// Session is the token slot plus its error handler. Writes are
// last-write-wins.
type Session struct {
	mu      sync.RWMutex
	token   string
	handler ErrorHandler
}

// Default is the process-wide session.
var Default = New()

// New returns a session with no token and the logging handler.
func New() *Session {
	return &Session{handler: LogError}
}

// LogError is the default handler.
func LogError(err error) {
	slog.Error("auth error", "error", err)
}

// Token returns the current token, or "" when none is held.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Commit stores token. Callers validate it first.
func (s *Session) Commit(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Clear drops the current token.
func (s *Session) Clear() {
	s.Commit("")
}

// OnError replaces the error handler. A nil handler restores LogError.
func (s *Session) OnError(h ErrorHandler) {
	if h == nil {
		h = LogError
	}
	s.mu.Lock()
	s.handler = h
	s.mu.Unlock()
}

// Report hands err to the current handler.
func (s *Session) Report(err error) {
	s.mu.RLock()
	h := s.handler
	s.mu.RUnlock()
	h(err)
}

// OnError replaces the error handler of the Default session.
func OnError(h ErrorHandler) {
	Default.OnError(h)
}
