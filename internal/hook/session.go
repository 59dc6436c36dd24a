package hook

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/t1a2l/SkyTools/internal/model"
)

// Session is a uniquely named group of hook registrations that are applied
// and reverted as a unit against one interceptor. Registrations are added
// before Apply; the set must not be mutated while the session is applied.
type Session struct {
	id          string
	interceptor model.Interceptor

	mu            sync.Mutex
	registrations []*Registration
	applied       bool
}

// NewSession creates an empty session bound to the given interceptor.
func NewSession(interceptor model.Interceptor) *Session {
	return &Session{
		id:          uuid.NewString(),
		interceptor: interceptor,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Add appends a registration to the session.
func (s *Session) Add(reg *Registration) {
	s.mu.Lock()
	s.registrations = append(s.registrations, reg)
	s.mu.Unlock()
}

// Len returns the number of registrations in the session.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.registrations)
}

// Applied reports whether the session is currently applied.
func (s *Session) Applied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// Apply installs every registration in registration order and returns the
// number of successful installations. It first reverts any prior state, so
// calling Apply on an already-applied session reinstalls each hook exactly
// once. An installation failure is logged and counted but does not stop the
// remaining registrations from being attempted.
func (s *Session) Apply() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revertLocked()

	installed := 0
	for _, reg := range s.registrations {
		if err := s.interceptor.Install(reg.Handle, reg.Pre, reg.Post); err != nil {
			log.Printf("Warning: session %s failed to install hook for %s: %v", s.id, reg.Handle.Subject, err)
			continue
		}
		installed++
	}
	s.applied = true

	if installed < len(s.registrations) {
		log.Printf("Warning: session %s applied with %d of %d hooks installed", s.id, installed, len(s.registrations))
	} else {
		log.Printf("Session %s applied, %d hooks installed", s.id, installed)
	}
	return installed
}

// Revert uninstalls every registration. Failures are logged but do not stop
// the remaining uninstallations, so a session never leaves more hooks behind
// than it has to. Reverting a session that is not applied is a no-op.
func (s *Session) Revert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.applied {
		return
	}
	s.revertLocked()
	log.Printf("Session %s reverted", s.id)
}

func (s *Session) revertLocked() {
	for _, reg := range s.registrations {
		if err := s.interceptor.Uninstall(reg.Handle); err != nil {
			log.Printf("ERROR: session %s failed to uninstall hook for %s: %v", s.id, reg.Handle.Subject, err)
		}
	}
	s.applied = false
}
