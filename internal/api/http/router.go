package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/immxrtalbeast/bolao/internal/metrics"
	"github.com/immxrtalbeast/bolao/lib/logger/sl"
)

type RouterOptions struct {
	AllowOrigins []string
	// TrustedProxies may set X-Forwarded-For; nil trusts none.
	TrustedProxies []string
	Tokens         TokenVerifier
	Log            *slog.Logger
	Metrics        metrics.Recorder
	MetricsPath    string
	MetricsHandler http.Handler
	// RateLimiter guards the write endpoints when set.
	RateLimiter *RateLimiter
}

func SetupRouter(poolController *PoolController, userController *UserController, opts RouterOptions) *gin.Engine {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	useJSONFieldNames()

	router := gin.New()
	if err := router.SetTrustedProxies(opts.TrustedProxies); err != nil {
		opts.Log.Error("invalid trusted proxies, trusting none", slog.Any("proxies", opts.TrustedProxies), sl.Err(err))
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery())
	router.Use(RequestLogger(opts.Log, opts.Metrics))

	config := cors.DefaultConfig()
	config.AllowOrigins = opts.AllowOrigins
	config.AllowCredentials = true
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	router.Use(cors.New(config))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if opts.MetricsHandler != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(opts.MetricsHandler))
	}

	requireAuth := RequireAuth(opts.Tokens, opts.Log)
	optionalAuth := OptionalAuth(opts.Tokens, opts.Log)

	limit := func(ctx *gin.Context) { ctx.Next() }
	if opts.RateLimiter != nil {
		limit = opts.RateLimiter.Middleware()
	}

	if poolController != nil {
		pools := router.Group("/pools")
		pools.GET("/count", poolController.CountPools)
		pools.POST("", limit, optionalAuth, poolController.CreatePool)
		pools.POST("/join", limit, requireAuth, poolController.JoinPool)
		pools.GET("", requireAuth, poolController.ListPools)
		pools.GET("/:id", requireAuth, poolController.GetPool)
	}

	if userController != nil {
		users := router.Group("/users")
		users.POST("", limit, userController.CreateUser)
		users.GET("/count", userController.CountUsers)
		users.GET("/:userID", requireAuth, userController.GetUser)

		router.GET("/me", requireAuth, userController.Me)
	}

	return router
}
