package client

import (
	"net/http"
	"sync"
)

const (
	HeaderCaseLastModified   = "Case-Last-Modified"
	HeaderTenantLastModified = "Tenant-Last-Modified"
)

var consistencyHeaders = []string{HeaderCaseLastModified, HeaderTenantLastModified}

// Session holds the consistency headers that the engine returns on successful commands.
// Sending them back on later requests makes the engine wait until its query side has
// caught up with those commands before answering.
//
// A Session belongs to one test scenario. It is safe for concurrent use.
type Session struct {
	headers http.Header
	lock    sync.Mutex
}

func NewSession() *Session {
	return &Session{headers: make(http.Header)}
}

// CaseLastModified returns the most recent Case-Last-Modified value, or "".
func (s *Session) CaseLastModified() string {
	return s.get(HeaderCaseLastModified)
}

// TenantLastModified returns the most recent Tenant-Last-Modified value, or "".
func (s *Session) TenantLastModified() string {
	return s.get(HeaderTenantLastModified)
}

// Reset forgets all consistency headers.
func (s *Session) Reset() {
	if s == nil {
		return
	}
	s.lock.Lock()
	s.headers = make(http.Header)
	s.lock.Unlock()
}

func (s *Session) get(name string) string {
	if s == nil {
		return ""
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.headers.Get(name)
}

func (s *Session) apply(h http.Header) {
	if s == nil {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, name := range consistencyHeaders {
		if v := s.headers.Get(name); v != "" {
			h.Set(name, v)
		}
	}
}

func (s *Session) update(h http.Header, logger Logger) {
	if s == nil {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, name := range consistencyHeaders {
		if v := h.Get(name); v != "" {
			logger.Debugf("Updating %s to %s", name, v)
			s.headers.Set(name, v)
		}
	}
}
