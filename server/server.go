// Package server binds the gateway operations to HTTP. This is the
// reference transport: the library underneath is transport-agnostic.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hadeslabs/paygate"
	"github.com/hadeslabs/paygate/config"
	"github.com/hadeslabs/paygate/logger"
)

const (
	HealthPrefix  = "/health"
	MetricsPrefix = "/metrics"
	V1Prefix      = "/v1"

	IntentPath      = "/intent"
	PayPath         = "/pay"
	PremiumDataPath = "/premium-data"
	StatusPath      = "/status"
)

// Server exposes the gateway over HTTP.
type Server struct {
	*http.Server
	cfg *config.Config
	log logger.Logger
}

// New registers all routes and returns a server ready to listen on the
// configured API host.
func New(cfg *config.Config, pg *paygate.PayGate, log logger.Logger) *Server {
	if log == nil {
		log = logger.NoopLogger{}
	}
	engine := setUpEngine(cfg, log)

	h := &handler{pg: pg, cfg: cfg, log: log}

	engine.GET(HealthPrefix, h.Health)
	engine.GET(MetricsPrefix, gin.WrapH(promhttp.Handler()))

	v1 := engine.Group(V1Prefix)
	v1.POST(IntentPath, h.Intent)
	v1.POST(PayPath, h.Pay)
	v1.GET(PremiumDataPath, h.PremiumData)
	v1.GET(StatusPath, h.Status)

	return &Server{
		Server: &http.Server{
			Addr:    cfg.APIHost,
			Handler: engine,
		},
		cfg: cfg,
		log: log,
	}
}

// setUpEngine creates the gin engine and installs the middleware chain.
func setUpEngine(cfg *config.Config, log logger.Logger) *gin.Engine {
	if !cfg.DemoMode {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		RequestLogger(log),
	)
	return engine
}

// Start blocks serving requests until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.log.Info("server listening", map[string]any{"addr": s.Addr})
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	drainCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	return s.Server.Shutdown(drainCtx)
}
