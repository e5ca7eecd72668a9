// Package server builds the HTTP router and its middleware.
package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"snapfeed/backend/internal/security"
)

// Routes is implemented by handlers that mount on both the public and the
// auth-protected groups.
type Routes interface {
	Register(public, protected *gin.RouterGroup)
}

// Options configures NewRouter.
type Options struct {
	ServiceName string
	Tokens      *security.TokenProvider
	// StaticDir, when set, is served under /uploads.
	StaticDir string
	// Health mounts GET /health. Optional.
	Health gin.HandlerFunc
	// Auth mounts the /auth routes on the public group. Optional.
	Auth func(public *gin.RouterGroup)
	// Users mounts the /users routes on the protected group. Optional.
	Users func(protected *gin.RouterGroup)
	// Mount holds the handlers that span both groups (posts, comments).
	Mount []Routes
}

// NewRouter assembles the gin engine: recovery, request logging, tracing,
// static uploads, and the public and bearer-token-protected route groups.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(), otelgin.Middleware(opts.ServiceName))

	if opts.StaticDir != "" {
		router.Static("/uploads", opts.StaticDir)
	}

	public := router.Group("/")
	protected := router.Group("/")
	protected.Use(RequireAuth(opts.Tokens))

	if opts.Health != nil {
		public.GET("/health", opts.Health)
	}
	if opts.Auth != nil {
		opts.Auth(public)
	}
	if opts.Users != nil {
		opts.Users(protected)
	}
	for _, r := range opts.Mount {
		r.Register(public, protected)
	}
	return router
}
