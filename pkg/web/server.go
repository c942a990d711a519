package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Lucianogalizia/CronoPUHEROKE/internal/config"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/services"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/db"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/metrics"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var pageNames = []string{"index", "filter", "select_pulling", "hs", "assign"}

const (
	shutdownTimeout = 10 * time.Second
	maxPurgeEvery   = 5 * time.Minute
)

// Options holds the collaborators of the web server
type Options struct {
	Config *config.Config
	Store  db.SessionStore

	// Sheets enables importing wells from the configured sheet (optional)
	Sheets services.WellsReader

	// Recorder receives metrics (optional)
	Recorder metrics.Recorder

	// Gatherer backs the /metrics endpoint (defaults to the global registry)
	Gatherer prometheus.Gatherer

	Logger *zap.Logger
}

// Server serves the step-by-step planning workflow
type Server struct {
	cfg      *config.Config
	store    db.SessionStore
	sheets   services.WellsReader
	recorder metrics.Recorder
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	pages    map[string]*template.Template
	now      func() time.Time
}

// NewServer parses the page templates and wires the collaborators
func NewServer(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Store == nil {
		return nil, errors.New("session store is required")
	}

	s := &Server{
		cfg:      opts.Config,
		store:    opts.Store,
		sheets:   opts.Sheets,
		recorder: opts.Recorder,
		gatherer: opts.Gatherer,
		logger:   opts.Logger,
		now:      time.Now,
	}
	if s.recorder == nil {
		s.recorder = metrics.NewNop()
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	s.pages = pages

	return s, nil
}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"num":      services.FormatNumber,
		"contains": slices.Contains[[]string, string],
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.gohtml", "templates/"+name+".gohtml")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tpl
	}
	return pages, nil
}

// Handler returns the HTTP handler with every route registered
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /{$}", s.handleUpload)
	mux.HandleFunc("POST /import", s.handleImport)
	mux.HandleFunc("GET /filter", s.handleFilterForm)
	mux.HandleFunc("POST /filter", s.handleFilter)
	mux.HandleFunc("GET /select_pulling", s.handleSelectPullingForm)
	mux.HandleFunc("POST /select_pulling", s.handleSelectPulling)
	mux.HandleFunc("GET /hs", s.handleHoursForm)
	mux.HandleFunc("POST /hs", s.handleHours)
	mux.HandleFunc("GET /assign", s.handleAssign)
	mux.HandleFunc("POST /reset", s.handleReset)

	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return requestIDMiddleware(s.loggingMiddleware(mux))
}

// Run serves until the context is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	purgeCtx, stopPurge := context.WithCancel(ctx)
	defer stopPurge()
	go s.purgeLoop(purgeCtx, purgeInterval(s.cfg.Server.SessionTTL))

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Web server listening", zap.String("addr", s.cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down web server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func purgeInterval(ttl time.Duration) time.Duration {
	return min(ttl/4, maxPurgeEvery)
}

// PurgeExpired removes every session past its expiry
func (s *Server) PurgeExpired(ctx context.Context) (int, error) {
	n, err := s.store.PurgeExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	for range n {
		s.recorder.IncrementSessionEvent(eventExpired)
	}
	if n > 0 {
		s.logger.Info("Expired sessions purged", zap.Int("count", n))
	}
	return n, nil
}

func (s *Server) purgeLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PurgeExpired(ctx); err != nil {
				s.logger.Warn("Session purge failed", zap.Error(err))
			}
		}
	}
}

// render executes a page into a buffer so template errors never produce a
// half-written response
func (s *Server) render(w http.ResponseWriter, page string, data *pageData) {
	var buf bytes.Buffer
	if err := s.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("Template error", zap.String("page", page), zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK\n")
}
