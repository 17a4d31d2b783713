package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"athletics/internal/auth"
	"athletics/internal/config"
	"athletics/internal/importer"
	appLog "athletics/internal/log"
	"athletics/internal/store"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 60 * time.Second
	shutdownTimeout = 15 * time.Second
)

// ImportRunner runs a calendar import.
type ImportRunner interface {
	Run(ctx context.Context, req importer.Request) (importer.Result, error)
}

// Deps are the collaborators of Server.
type Deps struct {
	Config   *config.Config
	Secrets  *config.Secrets
	Codec    *auth.Codec
	Stores   *store.Stores
	Importer ImportRunner
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server provides the site's JSON API and, optionally, its static front end.
type Server struct {
	cfg      *config.Config
	secrets  *config.Secrets
	codec    *auth.Codec
	stores   *store.Stores
	importer ImportRunner
	now      func() time.Time

	router *mux.Router
}

// NewServer constructs a Server and registers its routes.
func NewServer(d Deps) *Server {
	s := &Server{
		cfg:      d.Config,
		secrets:  d.Secrets,
		codec:    d.Codec,
		stores:   d.Stores,
		importer: d.Importer,
		now:      d.Now,
		router:   mux.NewRouter(),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.secrets == nil {
		s.secrets = &config.Secrets{}
	}
	s.registerRoutes()
	return s
}

// Handler returns the router wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}
	if s.cfg != nil && len(s.cfg.CORSOrigins) > 0 {
		opts.AllowedOrigins = s.cfg.CORSOrigins
	} else {
		// Same-origin only.
		opts.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(opts).Handler(s.router)
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(loggingMiddleware)
	r.NotFoundHandler = loggingMiddleware(http.NotFoundHandler())

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(noCacheMiddleware)

	api.HandleFunc("/admin-auth", s.handleAdminLogin).Methods(http.MethodPost)
	api.HandleFunc("/admin-auth", s.handleAdminLogout).Methods(http.MethodDelete)
	api.HandleFunc("/page-owner-auth", s.handlePageOwnerLogin).Methods(http.MethodPost)
	api.HandleFunc("/page-owner-auth", s.handlePageOwnerLogout).Methods(http.MethodDelete)
	api.HandleFunc("/session-info", s.handleSessionInfo).Methods(http.MethodGet)

	api.Handle("/page-owners", s.adminOnly(s.handleListPageOwners)).Methods(http.MethodGet)
	api.Handle("/page-owners", s.adminOnly(s.handleSetPageOwner)).Methods(http.MethodPost)
	api.Handle("/page-owners", s.adminOnly(s.handleRemovePageOwner)).Methods(http.MethodDelete)

	api.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	api.Handle("/settings", s.adminOnly(s.handleUpdateSettings)).Methods(http.MethodPost)

	api.HandleFunc("/sports", s.handleGetSports).Methods(http.MethodGet)
	api.HandleFunc("/sports", s.handleUpdateSport).Methods(http.MethodPost)
	api.HandleFunc("/sports/{sport}/schedule", s.handleSportSchedule).Methods(http.MethodGet)
	api.HandleFunc("/upcoming", s.handleUpcoming).Methods(http.MethodGet)

	api.HandleFunc("/import-ical", s.handleImport).Methods(http.MethodPost)

	if s.cfg != nil && s.cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(staticFileServer(s.cfg.StaticDir))
	}
}

// Run serves on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
