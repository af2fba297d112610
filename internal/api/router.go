package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gorillaHandlers "github.com/gorilla/handlers"

	"github.com/wonny/stockpulse/internal/api/handlers"
	"github.com/wonny/stockpulse/internal/api/middleware"
	"github.com/wonny/stockpulse/internal/dashboard"
	"github.com/wonny/stockpulse/internal/domain/market"
	"github.com/wonny/stockpulse/internal/pkg/config"
	"github.com/wonny/stockpulse/internal/pkg/logger"
	"github.com/wonny/stockpulse/internal/service/quotes"
	"github.com/wonny/stockpulse/internal/service/session"
)

// Deps holds the services the router exposes
type Deps struct {
	Gateway  market.Gateway
	Board    *quotes.Board
	Broker   *quotes.Broker
	Registry *dashboard.Registry
	Sessions *session.Service
}

// Router holds all dependencies for API routing
type Router struct {
	engine *gin.Engine
	config *config.Config

	healthHandler    *handlers.HealthHandler
	stocksHandler    *handlers.StocksHandler
	quotesHandler    *handlers.QuotesHandler
	streamHandler    *handlers.StreamHandler
	dashboardHandler *handlers.DashboardHandler
	authHandler      *handlers.AuthHandler
	sessions         *session.Service
}

// NewRouter creates a new router with all dependencies
func NewRouter(cfg *config.Config, deps Deps, version string) (*Router, error) {
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	tmpl, err := dashboard.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	engine.SetHTMLTemplate(tmpl)

	r := &Router{
		engine:           engine,
		config:           cfg,
		healthHandler:    handlers.NewHealthHandler(deps.Board, deps.Broker, version, cfg.Dashboard.RefreshInterval),
		stocksHandler:    handlers.NewStocksHandler(deps.Gateway),
		quotesHandler:    handlers.NewQuotesHandler(deps.Board),
		streamHandler:    handlers.NewStreamHandler(deps.Board, deps.Broker, cfg.Server.AllowedOrigins),
		dashboardHandler: handlers.NewDashboardHandler(deps.Registry, deps.Sessions),
		authHandler:      handlers.NewAuthHandler(deps.Sessions, cfg.Google.RedirectURL),
		sessions:         deps.Sessions,
	}

	r.setupMiddlewares()
	r.setupRoutes()

	return r, nil
}

// setupMiddlewares configures all global middlewares
func (r *Router) setupMiddlewares() {
	// Recovery must be first
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	accessLogger := logger.NewAccessLogger(logger.Config{
		FileEnabled:   r.config.Logging.FileEnabled,
		FilePath:      r.config.Logging.FilePath,
		RotationSize:  r.config.Logging.RotationSize,
		RetentionDays: r.config.Logging.RetentionDays,
	})
	r.engine.Use(middleware.Logging(middleware.LoggingConfig{
		AccessLogger: &accessLogger,
		SkipPaths:    []string{"/health", "/health/ready"},
	}))
}

// setupRoutes configures all routes
func (r *Router) setupRoutes() {
	// Health checks (no /api prefix, no session)
	r.engine.GET("/health", r.healthHandler.Health)
	r.engine.GET("/health/ready", r.healthHandler.Ready)

	withSession := r.engine.Group("/", middleware.Session(middleware.SessionConfig{
		Sessions: r.sessions,
		TTL:      r.config.Server.SessionTTL,
		Secure:   strings.HasPrefix(r.config.Google.RedirectURL, "https://"),
	}))
	{
		withSession.GET("/", r.dashboardHandler.Page)

		auth := withSession.Group("/auth")
		{
			auth.GET("/login", r.authHandler.Login)
			auth.GET("/callback", r.authHandler.Callback)
			auth.POST("/logout", r.authHandler.Logout)
		}

		withSession.GET("/api/me", r.authHandler.Me)
	}

	api := r.engine.Group("/api")
	{
		api.GET("/health/detailed", r.healthHandler.Detailed)

		stocks := api.Group("/stocks")
		{
			stocks.GET("/bars", r.stocksHandler.Bars)
			stocks.GET("/snapshot", r.stocksHandler.Snapshot)
		}

		api.GET("/quotes", r.quotesHandler.List)
		api.GET("/quotes/:symbol", r.quotesHandler.Get)

		api.GET("/stream/quotes", r.streamHandler.SSE)
		api.GET("/ws/quotes", r.streamHandler.WebSocket)
	}
}

// Engine returns the underlying Gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Handler returns the engine wrapped with CORS for the allowed origins
func (r *Router) Handler() http.Handler {
	return gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(r.config.Server.AllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Accept", "Content-Type", "X-Request-ID"}),
		gorillaHandlers.ExposedHeaders([]string{"X-Request-ID"}),
		gorillaHandlers.AllowCredentials(),
	)(r.engine)
}
