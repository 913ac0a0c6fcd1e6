// Package apitest is an in-process fake of the Evangelism Tracker API. It
// keeps accounts, reports and people in memory, issues real signed tokens,
// records every call and lets tests script replies for any path.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/evangelism-tracker/people"
	"github.com/jrsteele09/evangelism-tracker/reports"
	"github.com/rs/zerolog"
)

// Reply is a canned response. Raw, when set, is written verbatim instead of
// the JSON encoding of Body.
type Reply struct {
	Status int
	Body   any
	Raw    string
}

// Call is one request the server received.
type Call struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	Body          []byte
}

type Option func(*Server)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithAccessTTL sets how long issued access tokens live.
func WithAccessTTL(d time.Duration) Option {
	return func(s *Server) {
		s.accessTTL = d
	}
}

// WithIgnoredPeopleFilter makes GET /api/people ignore report_id, like an
// older server would.
func WithIgnoredPeopleFilter() Option {
	return func(s *Server) {
		s.ignorePeopleFilter = true
	}
}

type Server struct {
	mux                *http.ServeMux
	routes             []string
	logger             zerolog.Logger
	accessTTL          time.Duration
	ignorePeopleFilter bool

	accounts *accounts
	tokens   *issuer

	lock        sync.Mutex
	reports     map[string]*reports.Report
	people      map[string]*people.Person
	resetTokens map[string]string // reset token to user id
	scripts     map[string][]Reply
	calls       []Call
}

func New(opts ...Option) (*Server, error) {
	s := &Server{
		mux:         http.NewServeMux(),
		logger:      zerolog.Nop(),
		accounts:    newAccounts(),
		reports:     make(map[string]*reports.Report),
		people:      make(map[string]*people.Person),
		resetTokens: make(map[string]string),
		scripts:     make(map[string][]Reply),
	}
	for _, opt := range opts {
		opt(s)
	}
	tokens, err := newIssuer(s.accessTTL)
	if err != nil {
		return nil, err
	}
	s.tokens = tokens
	s.initRoutes()
	return s, nil
}

// Start runs a new fake on a local port until the test ends.
func Start(tb testing.TB, opts ...Option) (*Server, string) {
	tb.Helper()
	s, err := New(opts...)
	if err != nil {
		tb.Fatalf("apitest: %v", err)
	}
	ts := httptest.NewServer(s)
	tb.Cleanup(ts.Close)
	return s, ts.URL
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	chainMiddleware(s.mux.ServeHTTP, s.recoverMiddleware, s.loggingMiddleware, s.recordMiddleware, s.scriptMiddleware)(w, r)
}

// Routes lists the registered patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) registerRouteFunc(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Script queues replies for method and path. Each matching request takes
// the next reply; once the queue is empty the normal handler runs again.
func (s *Server) Script(method, path string, replies ...Reply) {
	s.lock.Lock()
	defer s.lock.Unlock()
	key := method + " " + path
	s.scripts[key] = append(s.scripts[key], replies...)
}

func (s *Server) Calls() []Call {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the calls made to method and path.
func (s *Server) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// ExpireAccessTokens makes every access token issued so far answer 401.
func (s *Server) ExpireAccessTokens() {
	s.tokens.expireAccess()
}

// RevokeRefreshTokens makes every refresh token issued so far invalid.
func (s *Server) RevokeRefreshTokens() {
	s.tokens.revokeRefresh()
}

func (s *Server) nextScripted(method, path string) (Reply, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	key := method + " " + path
	queue := s.scripts[key]
	if len(queue) == 0 {
		return Reply{}, false
	}
	s.scripts[key] = queue[1:]
	return queue[0], true
}

func chainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

func (s *Server) recordMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		s.lock.Lock()
		s.calls = append(s.calls, Call{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		s.lock.Unlock()
		next(w, r)
	}
}

func (s *Server) scriptMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply, ok := s.nextScripted(r.Method, r.URL.Path)
		if !ok {
			next(w, r)
			return
		}
		if reply.Raw != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(reply.Status)
			_, _ = io.WriteString(w, reply.Raw)
			return
		}
		writeJSON(w, reply.Status, reply.Body)
	}
}

func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next(rec, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) recoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	if status == http.StatusNoContent || body == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type detailBody struct {
	Detail string `json:"detail"`
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailBody{Detail: detail})
}

// fieldError mirrors the validation error entries of the real API.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeFieldErrors(w http.ResponseWriter, errs []fieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, struct {
		Detail []fieldError `json:"detail"`
	}{errs})
}

func missing(field string) fieldError {
	return fieldError{Loc: []string{"body", field}, Msg: "field required", Type: "value_error.missing"}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
