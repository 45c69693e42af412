package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/config"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/ratelimit"
	middleware "github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/middlewares"
	v1 "github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/routes/v1"
)

type HTTPServer struct {
	engine    *gin.Engine
	v1Route   *v1.V1Route
	rateStore ratelimit.Store
	config    *config.Config
}

func NewHTTPServer(
	v1Route *v1.V1Route,
	rateStore ratelimit.Store,
	log zerolog.Logger,
	cfg *config.Config,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	server := HTTPServer{
		engine:    gin.New(),
		v1Route:   v1Route,
		rateStore: rateStore,
		config:    cfg,
	}
	server.engine.Use(middleware.RequestID())
	server.engine.Use(middleware.TracingMiddleware(cfg.ServiceName))
	server.engine.Use(middleware.LoggingMiddleware(log))
	server.engine.Use(middleware.MetricsMiddleware())
	server.engine.Use(middleware.CORSMiddleware())

	server.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	server.engine.GET("/readyz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	return &server
}

func (httpServer *HTTPServer) Run() error {
	root := httpServer.engine.Group("/")
	root.Use(middleware.RateLimitMiddleware(httpServer.rateStore))

	httpServer.v1Route.RegisterRouter(root)

	// only the read side is bounded here; streaming responses manage their
	// own per-frame write deadlines
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", httpServer.config.HTTPPort),
		Handler:           httpServer.engine,
		ReadHeaderTimeout: httpServer.config.HTTPTimeout,
	}
	return server.ListenAndServe()
}
