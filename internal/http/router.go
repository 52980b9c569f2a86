package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/muirkirkangling/memberportal/internal/config"
	"github.com/muirkirkangling/memberportal/internal/http/handlers"
	"github.com/muirkirkangling/memberportal/internal/http/middlewares"
	"github.com/muirkirkangling/memberportal/internal/observability"
	"github.com/muirkirkangling/memberportal/internal/session"
	"github.com/muirkirkangling/memberportal/web"
)

// Deps carries everything the router wires together. Tests inject the
// memory members repo and a memory session store here.
type Deps struct {
	Log      *slog.Logger
	Cfg      config.Config
	Members  handlers.MembersStore
	Sessions *session.Manager
	Prom     *observability.Prom
	Registry *prometheus.Registry
	Ping     func() error
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.SetHTMLTemplate(web.Templates())

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(64 << 10)) // form posts only
	r.Use(otelgin.Middleware("memberportal"))

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	// same window the portal always ran with: 100 requests per 15 minutes
	limiter := middlewares.NewRateLimiter(100, 15*time.Minute)
	r.Use(limiter.RateLimiterMiddleware(middlewares.KeyByIP))

	// health + metrics
	h := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	// auth flow
	authHandler := handlers.NewAuthHandler(d.Members, d.Sessions, d.Prom, d.Cfg)
	membersHandler := handlers.NewMembersHandler(d.Members)
	gate := middlewares.NewSessionGate(d.Sessions, handlers.SessionCookie)

	r.GET("/", func(ctx *gin.Context) {
		ctx.Redirect(http.StatusFound, "/login")
	})

	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authHandler.Register)
	r.GET("/logout", authHandler.Logout)

	r.GET("/members", gate.RequireMember(), membersHandler.Dashboard)

	return r
}
