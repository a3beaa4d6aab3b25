// Package webdavtest provides an in-memory WebDAV-style server for tests.
package webdavtest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Server is an httptest server that understands MKCOL, GET and PUT.
type Server struct {
	*httptest.Server

	Username string
	Password string

	mu          sync.Mutex
	collections map[string]bool
	documents   map[string][]byte
	writes      int
	failures    map[string]int
	onGet       func(path string)
}

// NewServer starts a server and registers its shutdown with t.
func NewServer(t testing.TB) *Server {
	s := &Server{
		Username:    "nc-user",
		Password:    "nc-app-password",
		collections: make(map[string]bool),
		documents:   make(map[string][]byte),
		failures:    make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the URL the storage client should be rooted at.
func (s *Server) BaseURL() string {
	return s.URL + "/remote.php/dav/files/nc-user"
}

// Document returns the raw bytes stored at rel, relative to BaseURL.
func (s *Server) Document(rel string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[s.key(rel)]
	return doc, ok
}

// SetDocument stores raw bytes at rel.
func (s *Server) SetDocument(rel string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[s.key(rel)] = body
}

// Writes counts successful MKCOL and PUT requests.
func (s *Server) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// FailWith makes every request with method respond with status.
func (s *Server) FailWith(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = status
}

// OnGet registers a hook that runs before each GET is answered.
func (s *Server) OnGet(fn func(path string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onGet = fn
}

func (s *Server) key(rel string) string {
	return "/remote.php/dav/files/nc-user/" + strings.TrimPrefix(rel, "/")
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	if !ok || user != s.Username || pass != s.Password {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	s.mu.Lock()
	status, failing := s.failures[r.Method]
	hook := s.onGet
	s.mu.Unlock()
	if failing {
		http.Error(w, "injected failure", status)
		return
	}

	switch r.Method {
	case "MKCOL":
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.collections[r.URL.Path] {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.collections[r.URL.Path] = true
		s.writes++
		w.WriteHeader(http.StatusCreated)
	case http.MethodGet:
		if hook != nil {
			hook(r.URL.Path)
		}
		s.mu.Lock()
		doc, ok := s.documents[r.URL.Path]
		s.mu.Unlock()
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(doc)
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		_, existed := s.documents[r.URL.Path]
		s.documents[r.URL.Path] = body
		s.writes++
		if existed {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
