package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/khryptorgraphics/nonaxiomatic/internal/config"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/auth"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/reason"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
)

// Server is the HTTP+WebSocket front door onto a running reasoner (spec
// §4.7): task submission, manual cycle stepping, concept inspection, and a
// live event stream, gated by the auth package's JWT/RBAC layer.
type Server struct {
	config *config.Config
	mem    *reason.Memory
	cycle  *reason.Cycle
	reader *term.Reader

	jwtSvc *auth.JWTService
	rbac   *auth.RBAC
	authMW *auth.AuthMiddleware

	logger *slog.Logger
	hub    *EventHub
	server *http.Server
}

// NewServer wires an API server around an already-constructed reasoner. The
// caller owns the Memory/Cycle pair (and any cycle driver goroutine
// advancing it); the server only ever reads from or enqueues into it
// through Memory's own serialized methods.
func NewServer(cfg *config.Config, mem *reason.Memory, cycle *reason.Cycle, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	jwtSvc, err := auth.NewJWTService(&cfg.JWT)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	rbac := auth.NewRBAC()
	if cfg.Auth.Enabled {
		password, err := auth.GenerateBootstrapPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to generate bootstrap admin password: %w", err)
		}
		if _, err := rbac.BootstrapAdmin("admin", password); err != nil {
			return nil, fmt.Errorf("failed to bootstrap admin account: %w", err)
		}
		logger.Warn("bootstrapped admin account with a generated password",
			"username", "admin", "password", password)
	}

	hub := NewEventHub(mem.Bus(), logger)

	return &Server{
		config: cfg,
		mem:    mem,
		cycle:  cycle,
		reader: term.NewReader(),
		jwtSvc: jwtSvc,
		rbac:   rbac,
		authMW: auth.NewAuthMiddleware(jwtSvc, rbac),
		logger: logger,
		hub:    hub,
	}, nil
}

// Start starts the API server and blocks until it stops or fails.
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRouter()

	s.server = &http.Server{
		Addr:         s.config.API.Listen,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.hub.Run()

	s.logger.Info("starting API server",
		"address", s.config.API.Listen,
		"tls_enabled", s.config.API.TLSEnabled)

	if s.config.API.TLSEnabled {
		return s.server.ListenAndServeTLS(s.config.API.CertFile, s.config.API.KeyFile)
	}
	return s.server.ListenAndServe()
}

// Stop gracefully stops the API server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping API server")
	s.hub.Stop()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(s.loggingMiddleware())
	router.Use(gin.Recovery())
	router.Use(s.corsMiddleware())
	router.Use(s.securityMiddleware())
	if s.config.API.RateLimit.Enabled {
		router.Use(s.rateLimitMiddleware())
	}

	router.GET("/health", s.healthHandler)
	router.GET("/metrics", s.metricsHandler)
	router.GET("/ws/events", s.eventsWebsocketHandler)

	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", s.loginHandler)
			authGroup.POST("/refresh", s.refreshTokenHandler)
		}

		tasks := v1.Group("/tasks")
		tasks.Use(s.authMW.RequirePermission(auth.PermissionTaskSubmit))
		{
			tasks.POST("", s.submitTaskHandler)
		}

		cycles := v1.Group("/cycles")
		cycles.Use(s.authMW.RequirePermission(auth.PermissionConceptManage))
		{
			cycles.POST("/step", s.stepCyclesHandler)
		}

		concepts := v1.Group("/concepts")
		concepts.Use(s.authMW.RequirePermission(auth.PermissionConceptRead))
		{
			concepts.GET("/:term", s.getConceptHandler)
		}
	}

	return router
}
