package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"time"

	"schedboard/internal/config"
	"schedboard/internal/display"
	"schedboard/internal/ics"
	appLog "schedboard/internal/log"
)

// StateReader is the read side of the board.
type StateReader interface {
	Snapshot() display.Snapshot
}

// Server serves the kiosk page and its JSON/ICS/PNG side channels.
type Server struct {
	cfg   *config.Config
	board StateReader
	mux   *http.ServeMux
	now   func() time.Time
}

//go:embed templates/page.html
var pageFS embed.FS

var pageTemplate = template.Must(template.ParseFS(pageFS, "templates/page.html"))

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, board StateReader) *Server {
	s := &Server{
		cfg:   cfg,
		board: board,
		mux:   http.NewServeMux(),
		now:   time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password disables auth.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="schedboard", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Serve listens on cfg.Listen until ctx is cancelled, then shuts down
// gracefully. ready, when non-nil, is closed once the listener is bound.
func (s *Server) Serve(ctx context.Context, ready chan<- struct{}) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Listen, err)
	}
	if ready != nil {
		close(ready)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/state", s.handleState)
	s.mux.HandleFunc("/calendar.ics", s.handleCalendar)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
	s.mux.HandleFunc("/{$}", s.handlePage)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type pageData struct {
	Title        string
	Clock        string
	Content      template.HTML
	Version      uint64
	Ready        bool
	IntervalText string
}

// handlePage renders the kiosk page with the current board inlined, so the
// first paint does not wait for /api/state.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	snap := s.board.Snapshot()
	data := pageData{
		Title:        s.cfg.Display.CornerTitle,
		Clock:        snap.Clock,
		Content:      template.HTML(snap.HTML), // produced by html/template in render
		Version:      snap.Version,
		Ready:        snap.Version > 0,
		IntervalText: IntervalText(snap.Interval),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.Execute(w, data); err != nil {
		appLog.Error("page render failed", err)
	}
}

// stateResponse is the JSON response shape for /api/state.
type stateResponse struct {
	Version         uint64     `json:"version"`
	HTML            string     `json:"html"`
	Clock           string     `json:"clock"`
	IntervalSeconds int        `json:"interval_seconds"`
	IntervalText    string     `json:"interval_text"`
	ItemCount       int        `json:"item_count"`
	LastSuccess     *time.Time `json:"last_success,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	snap := s.board.Snapshot()
	resp := stateResponse{
		Version:         snap.Version,
		HTML:            snap.HTML,
		Clock:           snap.Clock,
		IntervalSeconds: int(snap.Interval / time.Second),
		IntervalText:    IntervalText(snap.Interval),
		ItemCount:       len(snap.Items),
	}
	if !snap.LastSuccess.IsZero() {
		ts := snap.LastSuccess
		resp.LastSuccess = &ts
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
}

// handleCalendar exports the items behind the current board.
func (s *Server) handleCalendar(w http.ResponseWriter, _ *http.Request) {
	snap := s.board.Snapshot()
	body := ics.Export(snap.Items, s.cfg.Display.CornerTitle, s.now())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="schedboard.ics"`)
	_, _ = w.Write([]byte(body))
}

// handlePreview serves the last captured PNG from disk.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Capture.Enabled || s.cfg.Capture.OutputPath == "" {
		writeError(w, http.StatusNotFound, "capture disabled")
		return
	}
	if _, err := os.Stat(s.cfg.Capture.OutputPath); err != nil {
		writeError(w, http.StatusNotFound, "no preview captured yet")
		return
	}
	http.ServeFile(w, r, s.cfg.Capture.OutputPath)
}

// IntervalText is the footer line, e.g. "Reloading every 30s".
func IntervalText(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return fmt.Sprintf("Reloading every %ds", int(d/time.Second))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
