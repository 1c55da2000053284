// Package server assembles the broker: topic registry, dispatcher, service,
// HTTP routes and the surrounding middlewares.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/pubsub/backend/broker/handlers"
	"github.com/gogotex/pubsub/backend/broker/internal/config"
	"github.com/gogotex/pubsub/backend/broker/internal/dispatch"
	"github.com/gogotex/pubsub/backend/broker/internal/registry"
	"github.com/gogotex/pubsub/backend/broker/internal/topic"
	"github.com/gogotex/pubsub/backend/broker/internal/topic/handler"
	"github.com/gogotex/pubsub/backend/broker/internal/topic/service"
	"github.com/gogotex/pubsub/backend/broker/pkg/metrics"
	"github.com/gogotex/pubsub/backend/broker/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Server owns the long-lived broker state for one process.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	engine     *gin.Engine
	registry   *registry.Registry
	dispatcher *dispatch.HTTPDispatcher
	redis      *redis.Client
	ownsRedis  bool
	httpClient *http.Client
	startTime  time.Time
}

// Option customizes a Server.
type Option func(*Server)

// WithRedis uses an existing client instead of dialing cfg.Redis. The caller
// keeps ownership of the client.
func WithRedis(client *redis.Client) Option {
	return func(s *Server) { s.redis = client }
}

// WithHTTPClient sets the client used for subscriber deliveries.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) { s.httpClient = c }
}

// New builds the server and registers every route. Redis is optional: when
// configured but unreachable the server still starts and /ready reports it.
func New(cfg *config.Config, logger zerolog.Logger, opts ...Option) (*Server, error) {
	s := &Server{cfg: cfg, logger: logger, startTime: time.Now()}
	for _, opt := range opts {
		opt(s)
	}

	if s.redis == nil && cfg.Redis.Host != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.ownsRedis = true
		if err := s.redis.Ping(context.Background()).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", s.redis.Options().Addr).Msg("redis ping failed")
		} else {
			logger.Info().Str("addr", s.redis.Options().Addr).Msg("connected to redis")
		}
	}

	s.registry = registry.New()
	topics, err := topic.NewCollection()
	if err != nil {
		return nil, fmt.Errorf("topic collection: %w", err)
	}
	if err := s.registry.Register(topics); err != nil {
		return nil, err
	}

	s.dispatcher = dispatch.NewHTTPDispatcher(dispatch.Options{
		Timeout:   cfg.Dispatch.Timeout,
		UserAgent: cfg.Dispatch.UserAgent,
		Client:    s.httpClient,
	}, logger.With().Str("component", "dispatch").Logger())

	svc := service.NewService(topics, s.dispatcher, logger.With().Str("component", "service").Logger())

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(cors())
	r.Use(gin.Logger(), gin.Recovery())

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && s.redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(s.redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", s.ready)

	// every server gets its own registry so several can live in one process
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(promReg)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))

	handlers.RegisterSwagger(r)
	handler.RegisterBrokerRoutes(r, svc, logger.With().Str("component", "http").Logger())

	s.engine = r
	return s, nil
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Registry returns the collections owned by this server.
func (s *Server) Registry() *registry.Registry { return s.registry }

// ready returns 200 only when the topic store is registered and, if redis is
// configured, it answers a ping.
func (s *Server) ready(c *gin.Context) {
	ready := true
	deps := map[string]bool{}

	_, err := s.registry.Collection(topic.CollectionName)
	deps["topics"] = err == nil
	if err != nil {
		ready = false
	}

	if s.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		deps["redis"] = s.redis.Ping(ctx).Err() == nil
		if !deps["redis"] {
			ready = false
		}
	} else {
		deps["redis"] = true
	}

	body := gin.H{"deps": deps, "uptime": time.Since(s.startTime).String()}
	if !ready {
		body["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ready"
	c.JSON(http.StatusOK, body)
}

// Run serves until ctx is cancelled, then shuts down gracefully and waits
// for in-flight deliveries within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		shutdownErr = fmt.Errorf("http shutdown: %w", err)
	}

	done := make(chan struct{})
	go func() {
		s.dispatcher.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		s.logger.Warn().Msg("deliveries still in flight at shutdown")
	}

	if s.ownsRedis {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("redis close failed")
		}
	}
	return shutdownErr
}

// cors sets permissive headers and answers preflight requests.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
