package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"jobportal/internal/api"
	"jobportal/internal/auth/handler"
	"jobportal/internal/config"
	"jobportal/internal/guard"
	"jobportal/internal/httpapi"
	"jobportal/internal/logger"
	"jobportal/internal/metrics"
	"jobportal/internal/middleware"
	"jobportal/internal/session"
	"jobportal/internal/tokenstore"
)

// Deps are the collaborators the router needs. Tests build them directly.
type Deps struct {
	API     *api.Client
	Stores  tokenstore.Factory
	Metrics *metrics.Metrics
	// Ready reports backing-store health for /health. Nil means always ready.
	Ready func(context.Context) error
}

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	m := metrics.New()

	client, err := api.New(cfg.APIBaseURL,
		api.WithTimeout(cfg.APITimeout),
		api.WithUserAgent(cfg.ServiceName),
		api.WithHTTPClient(&http.Client{Transport: m.InstrumentTransport(http.DefaultTransport)}),
	)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	deps := Deps{API: client, Metrics: m}
	if infra.Redis != nil {
		deps.Stores = tokenstore.NewRedisFactory(infra.Redis.Client, cfg.SessionTTL)
		deps.Ready = infra.Redis.Ready
	} else {
		deps.Stores = tokenstore.NewMemoryFactory(cfg.SessionTTL)
	}

	return NewRouter(cfg, deps), infra.Close, nil
}

// NewRouter assembles the gateway: public probes, the auth surface and one
// guarded API area per role.
func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	log := logger.L()
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	} else {
		// same-origin deployments
		corsCfg.AllowOriginFunc = func(string) bool { return false }
	}
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept", api.RequestIDHeader}
	corsCfg.ExposeHeaders = []string{api.RequestIDHeader}
	corsCfg.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsCfg))

	// ----------------------------
	// Probes
	// ----------------------------

	router.GET("/health", func(c *gin.Context) {
		if deps.Ready != nil {
			if err := deps.Ready(c.Request.Context()); err != nil {
				httpapi.WriteJSON(c.Writer, http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		httpapi.WriteJSON(c.Writer, http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// ----------------------------
	// Session-bound routes
	// ----------------------------

	cookie := session.CookieOptions{
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   cfg.SessionTTL,
	}

	web := router.Group("/")
	web.Use(middleware.SessionLoader(middleware.SessionLoaderConfig{
		API:      deps.API,
		Stores:   deps.Stores,
		Cookie:   cookie,
		Observer: deps.Metrics,
		Logger:   log,
	}))

	guarded := func(name string, g guard.Guard) gin.HandlerFunc {
		return middleware.RequireGuard(name, g, deps.Metrics)
	}

	handler.NewHandler(deps.API, cookie, log).RegisterRoutes(web, guarded("private", guard.Private))

	resources := httpapi.NewHandler(log)
	resources.RegisterCandidate(web.Group("/api/candidate", guarded("client", guard.ClientRoute)))
	resources.RegisterEmployer(web.Group("/api/employer", guarded("employer", guard.EmployerRoute)))
	resources.RegisterAdmin(web.Group("/api/admin", guarded("admin", guard.AdminRoute)))

	return router
}
