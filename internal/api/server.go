// internal/api/server.go
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"listing-service/internal/catalog"
	"listing-service/internal/common/logger"
	"listing-service/internal/common/observability"
	"listing-service/internal/dashboard"
	"listing-service/internal/favorites"
	"listing-service/internal/inquiry"
	"listing-service/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Deps are the services behind the routes. Favorites may be nil, which
// leaves the favorites routes unregistered.
type Deps struct {
	Catalog       *catalog.Service
	Listings      repository.Repository
	Dashboard     *dashboard.Service
	Inquiries     *inquiry.Service
	Favorites     *favorites.Store
	Observability *observability.Observability
	Checks        map[string]Check
	PageSize      int
}

type handlers struct {
	deps   Deps
	logger logger.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Deps, log logger.Logger) *gin.Engine {
	h := &handlers{deps: deps, logger: log.WithFields(map[string]interface{}{"component": "api"})}

	router := gin.New()
	router.Use(recovery(h), requestID(), cors(), tracing(deps.Observability), requestLogger(h.logger))

	router.GET("/health", h.health)
	router.GET("/ready", h.ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	agent := h.requireIdentity(HeaderAgentID, ctxAgentID)
	user := h.requireIdentity(HeaderUserID, ctxUserID)

	props := router.Group("/api/properties")
	{
		props.GET("", h.listProperties)
		props.GET("/search", h.searchProperties)
		props.GET("/detail/:id", h.getProperty)
		props.POST("/refresh", h.refreshProperties)
		props.POST("/create", agent, h.createProperty)
		props.PUT("/update/:id", agent, h.updateProperty)
		props.DELETE("/delete/:id", agent, h.deleteProperty)
		props.GET("/inquiries/:id", agent, h.propertyInquiries)
	}

	inquiries := router.Group("/api/inquiries", user)
	{
		inquiries.GET("", h.listInquiries)
		inquiries.POST("/create", h.createInquiry)
		inquiries.GET("/detail/:id", h.getInquiry)
		inquiries.DELETE("/delete/:id", h.deleteInquiry)
	}

	dash := router.Group("/api/agent", agent)
	{
		dash.GET("/dashboard", h.dashboard)
		dash.GET("/properties", h.myProperties)
		dash.GET("/inquiries", h.agentInquiries)
	}

	if deps.Favorites != nil {
		favs := router.Group("/api/favorites", user)
		{
			favs.GET("", h.listFavorites)
			favs.POST("/add", h.addFavorite)
			favs.DELETE("/remove/:id", h.removeFavorite)
			favs.GET("/check/:id", h.checkFavorite)
		}
	}

	return router
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server runs the router until shut down.
type Server struct {
	srv    *http.Server
	logger logger.Logger
}

func NewServer(cfg ServerConfig, handler http.Handler, log logger.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         cfg.Address,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: log,
	}
}

// Start blocks serving requests. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{"address": s.srv.Addr})
	if err := s.srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
