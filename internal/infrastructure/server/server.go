package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/remotefs/internal/api/http"
	"github.com/GriffinCanCode/remotefs/internal/api/middleware"
	"github.com/GriffinCanCode/remotefs/internal/files"
	"github.com/GriffinCanCode/remotefs/internal/infrastructure/config"
	"github.com/GriffinCanCode/remotefs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/remotefs/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/remotefs/internal/logging"
)

// downloadPrefix is served uncompressed so Content-Length and ranges stay exact.
const downloadPrefix = "/files/dl/"

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	files   *files.Service
	tracer  *tracing.Tracer
	metrics *monitoring.Metrics
	logger  *logging.Logger
	config  *config.Config
}

// NewServer creates a new server instance. cfg must already be validated.
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	logger.Info("Initializing file server",
		zap.String("addr", cfg.Addr()),
		zap.String("base_dir", cfg.Storage.BaseDir),
		zap.Int64("upload_limit", cfg.Storage.UploadLimit),
		zap.Bool("confine_symlinks", cfg.Storage.ConfineSymlinks),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("remotefs", logger.Logger)
	svc := files.NewService(cfg.Storage, logger.Logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(logging.Middleware(logger))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers := apihttp.NewHandlers(svc, apihttp.NewHandlerMetrics(metrics), logger.Logger)
	handlers.Register(router, apihttp.RouteOptions{UploadLimit: cfg.Storage.UploadLimit})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	var handler http.Handler = router
	if cfg.Server.Compression {
		compressed, err := compress(router)
		if err != nil {
			tracer.Close()
			return nil, fmt.Errorf("failed to configure compression: %w", err)
		}
		handler = compressed
	}

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
			ErrorLog:          zap.NewStdLog(logger.Named("http")),
		},
		files:   svc,
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
		config:  cfg,
	}, nil
}

// compress gzips responses except downloads.
func compress(next http.Handler) (http.Handler, error) {
	wrap, err := gzhttp.NewWrapper(gzhttp.MinSize(1024))
	if err != nil {
		return nil, err
	}
	gz := wrap(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, downloadPrefix) {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	}), nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Metrics returns the server's metrics collector.
func (s *Server) Metrics() *monitoring.Metrics {
	return s.metrics
}

// Run listens on the configured address and serves until Shutdown.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown. A clean shutdown returns nil.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections, waits for in-flight requests until ctx
// expires and then flushes traces and logs.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("Graceful shutdown incomplete", zap.Error(err))
	}
	s.tracer.Close()
	_ = s.logger.Sync()

	return err
}
