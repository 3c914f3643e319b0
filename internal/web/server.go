package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/drweldonhawaii/rvu-web-app/internal/rvu"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options configures a Server.
type Options struct {
	// Bind is the host:port address the server listens on.
	Bind string
	// Password is the shared login password.
	Password string
	// Store provides RVU values and edit pairs for scoring.
	Store *rvu.Store
	// RVUTablePath is where uploaded RVU tables are written.
	RVUTablePath string
	Logger       *slog.Logger
}

// Server is the HTTP surface for code scoring and table maintenance.
type Server struct {
	bind         string
	password     string
	store        *rvu.Store
	rvuTablePath string
	logger       *slog.Logger
	sessions     *sessionStore
	templates    *template.Template
	router       chi.Router
	httpServer   *http.Server
}

// NewServer builds a Server and its routes.
func NewServer(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("web: store is required")
	}
	if strings.TrimSpace(opts.Password) == "" {
		return nil, errors.New("web: password is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	funcs := template.FuncMap{
		"join": strings.Join,
	}
	templates, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		bind:         opts.Bind,
		password:     opts.Password,
		store:        opts.Store,
		rvuTablePath: opts.RVUTablePath,
		logger:       logger,
		sessions:     newSessionStore(),
		templates:    templates,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLogin)
	r.Get("/logout", s.handleLogout)

	// API callers get a JSON 401 instead of a redirect.
	r.Post("/breakdown", s.handleBreakdown)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/", s.handleHome)
		r.Post("/", s.handleHome)
		r.Get("/update", s.handleUpdateForm)
		r.Post("/update", s.handleUpdate)
	})

	return r
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until the context is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.bind,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	s.logger.Info("web server listening", "addr", s.bind)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("web server shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.sessions.valid(sessionToken(r)) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("render template", "template", name, "error", err)
	}
}
