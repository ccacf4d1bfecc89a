// Package server is the web front end: one page with fetch, convert and
// download steps backed by session.Flow.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/yt-bw/internal/session"
	"github.com/ytget/yt-bw/internal/storage"
)

// HTTP constants
const (
	SessionCookieName = "ytbw_session"
	ContentTypeHTML   = "text/html; charset=utf-8"
	ContentTypeJSON   = "application/json"
)

//go:embed templates/index.html
var templateFS embed.FS

// Options configures the HTTP layer
type Options struct {
	SessionTTL     time.Duration
	SecureCookies  bool
	MetricsHandler http.Handler // nil disables /metrics
}

// Server serves the web UI
type Server struct {
	flow    *session.Flow
	limiter *RateLimiter
	opts    Options
	page    *template.Template
}

// pageData is what the page template renders
type pageData struct {
	State *session.State
	Error string
	Busy  bool
}

// New creates the web server
func New(flow *session.Flow, limiter *RateLimiter, opts Options) (*Server, error) {
	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if limiter == nil {
		limiter = NewRateLimiter(0, nil)
	}
	return &Server{flow: flow, limiter: limiter, opts: opts, page: page}, nil
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("POST /fetch", s.limiter.Middleware(http.HandlerFunc(s.handleFetch)))
	mux.Handle("POST /convert", s.limiter.Middleware(http.HandlerFunc(s.handleConvert)))
	mux.Handle("POST /reset", s.limiter.Middleware(http.HandlerFunc(s.handleReset)))
	mux.HandleFunc("GET /download", s.handleDownload)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", s.opts.MetricsHandler)
	}

	return logRequests(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	state, err := s.flow.State(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: Failed to load session %s: %v", id, err)
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}
	s.render(w, http.StatusOK, pageData{State: state, Error: state.LastError, Busy: s.flow.Busy(id)})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	state, err := s.flow.Fetch(r.Context(), id, r.FormValue("url"))
	s.respond(w, r, id, state, err)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)

	resolution, err := strconv.Atoi(r.FormValue("resolution"))
	if err != nil || resolution <= 0 {
		s.respond(w, r, id, nil, fmt.Errorf("%w: %q", session.ErrUnknownResolution, r.FormValue("resolution")))
		return
	}

	state, err := s.flow.Convert(r.Context(), id, resolution)
	s.respond(w, r, id, state, err)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	if err := s.flow.Reset(r.Context(), id); err != nil {
		s.respond(w, r, id, nil, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	state, err := s.flow.State(r.Context(), id)
	if err != nil {
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}

	processed := state.Processed
	switch {
	case processed == nil:
		http.Error(w, session.ErrNothingToDeliver.Error(), http.StatusNotFound)
		return
	case processed.IsRemote():
		http.Redirect(w, r, processed.RemoteURL, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", storage.ContentTypeMP4)
	w.Header().Set("Content-Disposition", storage.ContentDisposition())
	w.Header().Set("Content-Length", strconv.FormatInt(processed.Size, 10))

	// Headers are only flushed once the first byte is copied, so early
	// failures can still change the status
	n, err := s.flow.Deliver(r.Context(), id, w)
	if err != nil {
		if n == 0 {
			w.Header().Del("Content-Disposition")
			w.Header().Del("Content-Length")
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		log.Printf("ERROR: Delivery to session %s broke after %d bytes: %v", id, n, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// respond renders the page after a step, with err shown inline
func (s *Server) respond(w http.ResponseWriter, r *http.Request, id string, state *session.State, err error) {
	if state == nil {
		var loadErr error
		state, loadErr = s.flow.State(r.Context(), id)
		if loadErr != nil {
			state = session.NewState(id)
		}
	}

	data := pageData{State: state, Busy: s.flow.Busy(id)}
	status := http.StatusOK
	if err != nil {
		data.Error = err.Error()
		status = statusFor(err)
	}
	s.render(w, status, data)
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		log.Printf("ERROR: Failed to render page: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ContentTypeHTML)
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// sessionID returns the caller's session, issuing a cookie for new visitors
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.New().String()
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if s.opts.SessionTTL > 0 {
		cookie.MaxAge = int(s.opts.SessionTTL.Seconds())
	}
	http.SetCookie(w, cookie)
	// Later lookups in this request see the new session
	r.AddCookie(cookie)
	return id
}

// statusFor maps flow errors onto HTTP status codes. Step failures are
// still rendered as a normal page; only misuse gets a 4xx.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, session.ErrNotFetched), errors.Is(err, session.ErrUnknownResolution):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNothingToDeliver):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusOK
	}
}

// logRequests logs method, path, status and duration of every request
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("INFO: %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
