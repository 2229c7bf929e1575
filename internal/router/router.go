package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/sharinglove/sharinglove-api/internal/handler"
	"github.com/sharinglove/sharinglove-api/internal/middleware"
	"github.com/sharinglove/sharinglove-api/internal/service"
	"github.com/sharinglove/sharinglove-api/pkg/logger"
	corsmiddleware "github.com/sharinglove/sharinglove-api/pkg/middleware/cors"
	"github.com/sharinglove/sharinglove-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/sharinglove/sharinglove-api/pkg/middleware/requestid"
)

// Options carries everything the HTTP surface needs.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	CookieName     string
	EnableDocs     bool
	// UploadsDir is served under /uploads when objects are stored on local disk.
	UploadsDir string
	// MaxMultipartMemory bounds the in-memory part of a parsed upload form.
	MaxMultipartMemory int64

	Logger       *zap.Logger
	Metrics      *service.MetricsService
	Verifier     middleware.TokenVerifier
	LoginLimiter *ratelimit.Limiter

	Auth    *handler.AuthHandler
	Posts   *handler.PostHandler
	Uploads *handler.UploadHandler
	Exports *handler.ExportHandler
	Health  *handler.MetricsHandler
}

// New builds the gin engine with every route mounted.
func New(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	r := gin.New()
	if opts.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = opts.MaxMultipartMemory
	}
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))

	r.GET("/health", opts.Health.Health)
	r.GET("/ready", opts.Health.Ready)
	r.GET("/metrics", opts.Health.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if opts.UploadsDir != "" {
		r.Static("/uploads", opts.UploadsDir)
	}

	requireAuth := middleware.RequireAuth(opts.Verifier, opts.CookieName)
	optionalAuth := middleware.OptionalAuth(opts.Verifier, opts.CookieName)

	api := r.Group(opts.APIPrefix)

	auth := api.Group("/auth")
	login := []gin.HandlerFunc{}
	if opts.LoginLimiter != nil {
		login = append(login, opts.LoginLimiter.Middleware())
	}
	auth.POST("/login", append(login, opts.Auth.Login)...)
	auth.POST("/logout", opts.Auth.Logout)
	auth.GET("/me", optionalAuth, opts.Auth.Me)

	posts := api.Group("/posts")
	posts.GET("", optionalAuth, opts.Posts.List)
	posts.GET("/:id", optionalAuth, opts.Posts.Get)
	posts.POST("", requireAuth, opts.Posts.Create)
	posts.PUT("/:id", requireAuth, opts.Posts.Update)
	posts.DELETE("/:id", requireAuth, opts.Posts.Delete)

	api.POST("/upload", requireAuth, opts.Uploads.Upload)

	admin := api.Group("/admin", requireAuth)
	admin.GET("/posts/export", opts.Exports.Posts)

	return r
}
