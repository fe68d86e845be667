package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/jobtrack-core/internal/audit"
	"github.com/nerrad567/jobtrack-core/internal/auth"
	"github.com/nerrad567/jobtrack-core/internal/infrastructure/config"
	"github.com/nerrad567/jobtrack-core/internal/infrastructure/logging"
	"github.com/nerrad567/jobtrack-core/internal/jobs"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HealthChecker is implemented by every infrastructure client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config        config.APIConfig
	Logger        *logging.Logger
	Gate          *auth.Gate
	Authenticator *auth.Authenticator
	Users         auth.UserRepository
	Jobs          *jobs.Service
	AuditRepo     audit.Repository
	Recorder      *audit.Recorder

	// Database is reported by /health and /metrics. Required.
	Database HealthChecker

	// Optional components; nil entries are skipped by /health.
	MQTT     HealthChecker
	InfluxDB HealthChecker

	// DBStats feeds the database section of /metrics. Optional.
	DBStats DBStatsProvider

	Version string
}

// Server is the HTTP API server.
//
// It is created with New and started with Start. Handler returns the
// routed handler for tests and embedding.
type Server struct {
	cfg           config.APIConfig
	logger        *logging.Logger
	gate          *auth.Gate
	authenticator *auth.Authenticator
	users         auth.UserRepository
	jobs          *jobs.Service
	auditRepo     audit.Repository
	recorder      *audit.Recorder
	database      HealthChecker
	mqtt          HealthChecker
	influx        HealthChecker
	dbStats       DBStatsProvider
	version       string
	startedAt     time.Time
	server        *http.Server
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger is required")
	case deps.Gate == nil:
		return nil, fmt.Errorf("authentication gate is required")
	case deps.Authenticator == nil:
		return nil, fmt.Errorf("authenticator is required")
	case deps.Users == nil:
		return nil, fmt.Errorf("user store is required")
	case deps.Jobs == nil:
		return nil, fmt.Errorf("jobs service is required")
	case deps.Database == nil:
		return nil, fmt.Errorf("database is required")
	}

	return &Server{
		cfg:           deps.Config,
		logger:        deps.Logger,
		gate:          deps.Gate,
		authenticator: deps.Authenticator,
		users:         deps.Users,
		jobs:          deps.Jobs,
		auditRepo:     deps.AuditRepo,
		recorder:      deps.Recorder,
		database:      deps.Database,
		mqtt:          deps.MQTT,
		influx:        deps.InfluxDB,
		dbStats:       deps.DBStats,
		version:       deps.Version,
		startedAt:     time.Now(),
	}, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
