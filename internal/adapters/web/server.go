// Package web serves the clustering service over HTTP: account pages, the
// cluster history page and a small JSON API.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mikey/inbox-clusterer/internal/core"
	"github.com/mikey/inbox-clusterer/internal/ports"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Runner runs the clustering pipeline for a user
type Runner interface {
	Run(ctx context.Context, req core.RunRequest) (*core.RunResult, error)
}

// Server is the HTTP frontend of the clustering service
type Server struct {
	runner   Runner
	users    *core.UserService
	clusters core.ClusterRepository
	sessions ports.SessionStore
	logger   *zap.Logger
	addr     string
	ttl      time.Duration
	pages    map[string]*template.Template
	server   *http.Server

	mu          sync.RWMutex
	lastReports map[int64][]core.ReportRow
}

// NewServer creates a new HTTP server
func NewServer(
	runner Runner,
	users *core.UserService,
	clusters core.ClusterRepository,
	sessions ports.SessionStore,
	logger *zap.Logger,
	addr string,
	sessionTTL time.Duration,
) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Server{
		runner:      runner,
		users:       users,
		clusters:    clusters,
		sessions:    sessions,
		logger:      logger,
		addr:        addr,
		ttl:         sessionTTL,
		pages:       pages,
		lastReports: make(map[int64][]core.ReportRow),
	}, nil
}

// parsePages parses every page together with the base layout
func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"date": func(t time.Time) string { return t.Format("2006-01-02") },
		"datetime": func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04 MST")
		},
	}
	pages := make(map[string]*template.Template)
	for _, name := range []string{"login", "sign_up", "home"} {
		tmpl, err := template.New("base.html").Funcs(funcs).ParseFS(templatesFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// Handler returns the HTTP handler with every route registered
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /sign-up", s.handleSignUpPage)
	mux.HandleFunc("POST /sign-up", s.handleSignUp)
	mux.HandleFunc("GET /logout", s.handleLogout)

	mux.HandleFunc("GET /{$}", s.requireUser(s.handleHome))
	mux.HandleFunc("POST /{$}", s.requireUser(s.handleRun))

	mux.HandleFunc("GET /api/clusters", s.requireUser(s.handleAPIClusters))
	mux.HandleFunc("GET /api/report", s.requireUser(s.handleAPIReport))
	mux.HandleFunc("GET /api/health", s.handleHealth)

	return s.loggingMiddleware(mux)
}

// Start starts serving and returns once the listener is bound
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 300 * time.Second, // runs include remote summarization
	}

	s.logger.Info("Web server starting", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Web server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) setLastReport(userID int64, rows []core.ReportRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastReports[userID] = rows
}

func (s *Server) lastReport(userID int64) []core.ReportRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReports[userID]
}
