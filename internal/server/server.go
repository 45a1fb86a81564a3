package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/eyualpha/HealthLink/internal/config"
	v1 "github.com/eyualpha/HealthLink/internal/handler/v1"
	"github.com/eyualpha/HealthLink/internal/middleware"
	"github.com/eyualpha/HealthLink/pkg/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sweepInterval = time.Minute

type Deps struct {
	Handlers *v1.Handlers
	Tokens   middleware.TokenValidator
	Metrics  *metrics.Collector
	Log      *zap.Logger
	// Ping reports storage health. Nil means always healthy.
	Ping func(ctx context.Context) error
}

type Server struct {
	cfg     config.ServerConfig
	http    *http.Server
	limiter *middleware.RateLimiter
	log     *zap.Logger
}

func New(cfg *config.Config, deps Deps) *Server {
	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	return &Server{
		cfg: cfg.Server,
		http: &http.Server{
			Addr:         cfg.Server.Address(),
			Handler:      NewRouter(cfg, deps, limiter),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		limiter: limiter,
		log:     deps.Log,
	}
}

func NewRouter(cfg *config.Config, deps Deps, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(deps.Log),
		middleware.Recovery(deps.Log),
		cors.New(cors.Config{
			AllowOrigins:  cfg.CORS.AllowedOrigins,
			AllowMethods:  cfg.CORS.AllowedMethods,
			AllowHeaders:  cfg.CORS.AllowedHeaders,
			ExposeHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
			MaxAge:        cfg.CORS.MaxAge,
		}),
		middleware.Metrics(deps.Metrics),
		middleware.Tracing(cfg.Tracing.ServiceName),
		limiter.Middleware(deps.Metrics),
	)

	r.GET("/health", func(c *gin.Context) {
		if deps.Ping != nil {
			if err := deps.Ping(c.Request.Context()); err != nil {
				deps.Log.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	v1.Register(r.Group("/api/v1"), deps.Handlers, deps.Tokens)

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests within
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	go s.sweep(ctx)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server", zap.Duration("timeout", s.cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.limiter.Sweep(now); n > 0 {
				s.log.Debug("rate limiter swept idle clients", zap.Int("removed", n))
			}
		}
	}
}
