package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SebastienMelki/numwindow/internal/observability"
	"github.com/SebastienMelki/numwindow/internal/window"
)

// ReadinessChecker reports whether a dependency is ready to serve.
type ReadinessChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies are the collaborators the server routes requests to.
// Fetcher and Window are required; the rest are optional.
type Dependencies struct {
	Fetcher        NumberFetcher
	Window         window.Merger
	Publisher      EventPublisher
	Readiness      []ReadinessChecker
	Metrics        *observability.Metrics
	MetricsHandler http.Handler
}

// Server is the HTTP gateway.
type Server struct {
	config     Config
	httpServer *http.Server
	handler    http.Handler
	readiness  []ReadinessChecker
	events     *eventQueue
	logger     *slog.Logger
}

// NewServer builds the route table and middleware chain.
func NewServer(cfg Config, deps Dependencies, logger *slog.Logger) (*Server, error) {
	if deps.Fetcher == nil {
		return nil, ErrFetcherRequired
	}
	if deps.Window == nil {
		return nil, ErrWindowRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	serverLogger := logger.With("component", "gateway")

	s := &Server{
		config:    cfg,
		readiness: deps.Readiness,
		logger:    serverLogger,
	}

	var publisher EventPublisher
	if deps.Publisher != nil {
		s.events = newEventQueue(deps.Publisher, cfg.EventQueueSize, deps.Metrics, logger)
		publisher = s.events
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	if deps.MetricsHandler != nil {
		mux.Handle("GET /metrics", deps.MetricsHandler)
	}

	numbersHandler := NewNumbersHandler(deps.Fetcher, deps.Window, publisher, logger)
	numbersHandler.RegisterRoutes(mux)

	// HTTPMetrics sits directly on the mux so it sees the matched pattern;
	// nothing between them may replace the request.
	var inner http.Handler = mux
	if deps.Metrics != nil {
		inner = observability.HTTPMetrics(deps.Metrics)(mux)
	}

	s.handler = chain(inner,
		Recover(serverLogger),
		RequestID(),
		RequestLogger(serverLogger),
		CORS(cfg.CORS),
		RateLimit(cfg.RateLimit, deps.Metrics),
	)

	s.httpServer = &http.Server{
		Addr:           cfg.Addr,
		Handler:        s.handler,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(serverLogger.Handler(), slog.LevelWarn),
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and blocks until the server
// stops. A graceful shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.config.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections, waits for in-flight requests and
// then for queued merge events, all bounded by the configured shutdown
// timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}
	s.logger.Info("shutting down HTTP server")
	err := s.httpServer.Shutdown(ctx)

	if s.events != nil {
		err = errors.Join(err, s.events.Close(ctx))
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	for _, check := range s.readiness {
		if err := check.HealthCheck(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, msgNotReady)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
