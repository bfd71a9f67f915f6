package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/canwork/internal/canwork"
	"github.com/standardbeagle/canwork/internal/config"
	"github.com/standardbeagle/canwork/internal/debug"
	"github.com/standardbeagle/canwork/internal/version"
)

// UsageText is returned when a request names no file
const UsageText = "Usage: `!canwork <filename>`"

// CheckServer answers canwork queries over HTTP
type CheckServer struct {
	checker         *canwork.Checker
	token           string
	listen          string
	shutdownTimeout time.Duration
	startTime       time.Time
	handler         http.Handler
}

// NewCheckServer creates the server. A configured bot token is required.
func NewCheckServer(cfg *config.Config, checker *canwork.Checker) (*CheckServer, error) {
	if err := cfg.RequireToken(); err != nil {
		return nil, err
	}

	s := &CheckServer{
		checker:         checker,
		token:           cfg.Bot.Token,
		listen:          cfg.Server.Listen,
		shutdownTimeout: time.Duration(cfg.Server.ShutdownTimeoutSec) * time.Second,
		startTime:       time.Now(),
	}

	mux := http.NewServeMux()
	s.registerHandlers(mux)
	s.handler = mux
	return s, nil
}

// Handler returns the routing handler, for embedding or tests
func (s *CheckServer) Handler() http.Handler {
	return s.handler
}

// registerHandlers sets up the endpoints
func (s *CheckServer) registerHandlers(mux *http.ServeMux) {
	mux.Handle("/canwork", s.requireToken(http.HandlerFunc(s.handleCanWork)))
	mux.HandleFunc("/healthz", s.handleHealth)
}

// ListenAndServe listens on the configured address until ctx is done
func (s *CheckServer) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within the configured timeout. ln is closed on return.
func (s *CheckServer) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[canwork] listening on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		debug.LogServer("shutting down (timeout %s)\n", s.shutdownTimeout)
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	log.Printf("[canwork] server stopped")
	return err
}

// requireToken rejects requests without the bot token as bearer credentials
func (s *CheckServer) requireToken(next http.Handler) http.Handler {
	want := []byte("Bearer " + s.token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := []byte(r.Header.Get("Authorization"))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			debug.LogServer("rejected unauthenticated request from %s\n", r.RemoteAddr)
			w.Header().Set("WWW-Authenticate", `Bearer realm="canwork"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleCanWork answers GET /canwork?file=<ref>
func (s *CheckServer) handleCanWork(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file := strings.TrimSpace(r.URL.Query().Get("file"))
	if file == "" {
		http.Error(w, UsageText, http.StatusBadRequest)
		return
	}

	report := s.checker.Check(r.Context(), file)
	debug.LogServer("query '%s' -> %s\n", report.Query, report.Status)

	if wantsJSON(r) {
		if err := writeJSON(w, report); err != nil {
			debug.LogServer("failed to write report for '%s': %v\n", report.Query, err)
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, report.Text())
}

// handleHealth reports liveness and whether the snapshot currently exists
func (s *CheckServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	res := s.checker.Status(r.Context())
	response := HealthResponse{
		Status:          "ok",
		Uptime:          time.Since(s.startTime).Seconds(),
		Version:         version.Version,
		BuildID:         version.BuildID(),
		SnapshotPresent: res.Available(),
		SnapshotEntries: len(res.Snapshot),
	}

	if err := writeJSON(w, response); err != nil {
		debug.LogServer("failed to write health response: %v\n", err)
	}
}

// writeJSON sets the JSON content type and encodes v as the response body.
// The status line may already be sent when it fails.
func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

func wantsJSON(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(strings.TrimSpace(mediaType), "application/json") {
			return true
		}
	}
	return false
}
