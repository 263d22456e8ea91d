package server

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"greeting/internal/config"
	"greeting/internal/handlers"
	"greeting/internal/middleware"
	"greeting/internal/monitoring"
)

// Routes fixes, relatives au base path
const (
	GreetingRoute = config.GreetingPath
	ReadyRoute    = config.ReadyPath
	LiveRoute     = config.LivePath
)

// NewRouter configure le routeur Gin du service
func NewRouter(
	cfg *config.Config,
	logger *logrus.Logger,
	metrics *monitoring.Metrics,
	tel *monitoring.Telemetry,
	greetingHandler *handlers.GreetingHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	router := gin.New()

	// Middleware globaux
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger, tel.ServiceName()))
	router.Use(middleware.Recovery(logger, tel.ServiceName()))
	router.Use(middleware.CORS())
	router.Use(otelgin.Middleware(
		tel.ServiceName(),
		otelgin.WithTracerProvider(tel.TracerProvider()),
		otelgin.WithPropagators(tel.Propagator()),
	))
	router.Use(metrics.Middleware())

	base := router.Group(cfg.Server.BasePath)
	{
		base.GET(GreetingRoute, greetingHandler.GetGreeting)

		// Routes de santé
		base.GET(cfg.Monitoring.HealthPath, healthHandler.HealthCheck)
		base.GET(ReadyRoute, healthHandler.ReadinessCheck)
		base.GET(LiveRoute, healthHandler.LivenessCheck)

		// Métriques Prometheus
		base.GET(cfg.Monitoring.MetricsPath, gin.WrapH(metrics.Handler()))
	}

	logger.WithFields(logrus.Fields{
		"base_path":    cfg.Server.BasePath,
		"health_path":  cfg.Monitoring.HealthPath,
		"metrics_path": cfg.Monitoring.MetricsPath,
	}).Debug("Routes registered")

	return router
}
