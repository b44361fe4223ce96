package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"iexcloud/internal/config"
)

const (
	// ProductionPrefix is the path prefix the mock serves production requests under
	ProductionPrefix = "/prod"
	// SandboxPrefix is the path prefix the mock serves sandbox requests under
	SandboxPrefix = "/sandbox"
)

// Response is a canned reply for one path.
type Response struct {
	Status int // defaults to 200
	Body   string
}

// Request records a call received by the mock server.
type Request struct {
	Origin config.Mode // which origin the request arrived on
	Path   string      // path below the origin prefix
	Token  string
}

// Server is a mock IEX Cloud service. It serves both origins from one
// listener, under ProductionPrefix and SandboxPrefix, and answers 404 for
// paths without a canned response.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]Response
	requests  []Request
}

// NewServer starts a mock server answering the given paths (for example
// "/stock/KO/dividends/1y") on both origins. It is closed at test cleanup.
func NewServer(t *testing.T, responses map[string]Response) *Server {
	t.Helper()

	s := &Server{responses: make(map[string]Response)}
	for path, resp := range responses {
		s.responses[path] = resp
	}

	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	var origin config.Mode
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, ProductionPrefix+"/"):
		origin = config.ModeProduction
		path = strings.TrimPrefix(path, ProductionPrefix)
	case strings.HasPrefix(path, SandboxPrefix+"/"):
		origin = config.ModeTest
		path = strings.TrimPrefix(path, SandboxPrefix)
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Origin: origin,
		Path:   path,
		Token:  r.URL.Query().Get("token"),
	})
	resp, ok := s.responses[path]
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(resp.Body))
}

// Respond sets or replaces the canned response for path.
func (s *Server) Respond(path string, resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = resp
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request, or false if none was made.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// Config returns a configuration pointing both origins at the mock server,
// with the given tokens and PRODUCTION mode.
func (s *Server) Config(productionToken, testToken string) *config.Config {
	cfg := &config.Config{}
	cfg.SetProductionToken(productionToken)
	cfg.SetTestToken(testToken)
	cfg.SetBaseURLs(s.URL+ProductionPrefix, s.URL+SandboxPrefix)
	return cfg
}
