package main

import (
	"context"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"greeting/internal/config"
	"greeting/internal/handlers"
	"greeting/internal/monitoring"
	"greeting/internal/server"
	"greeting/internal/version"
)

// CLI flags de ligne de commande
var CLI struct {
	ConfigDir string           `short:"c" help:"Additional directory searched for config.yaml" type:"path"`
	EnvFile   []string         `short:"e" help:"Env files loaded before reading configuration (default: .env, .env.local)" type:"path"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("greeting"),
		kong.Description("Greeting service returning its configured letter"),
		kong.Vars{"version": version.Version},
	)

	// Charger les fichiers .env
	if err := config.LoadEnvFiles(CLI.EnvFile...); err != nil {
		logrus.WithError(err).Fatal("Failed to load env files")
	}

	// Charger la configuration
	var configDirs []string
	if CLI.ConfigDir != "" {
		configDirs = append(configDirs, CLI.ConfigDir)
	}
	cfg, err := config.LoadConfig(configDirs...)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := newLogger(cfg)

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.WithFields(logrus.Fields{
		"service":     cfg.Telemetry.ServiceName,
		"version":     version.Version,
		"commit":      version.GitCommit,
		"build_time":  version.BuildTime,
		"environment": cfg.Server.Environment,
		"letter":      cfg.Greeting.Letter,
	}).Info("Starting greeting service")

	app := fx.New(
		appOptions(cfg, logger),
		fx.StopTimeout(cfg.Server.ShutdownTimeout),
	)

	// Démarrer l'application
	startCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		logger.WithError(err).Fatal("Failed to start application")
	}

	// Attendre SIGINT/SIGTERM
	sig := <-app.Done()
	logger.WithField("signal", sig.String()).Info("Shutdown signal received")

	stopCtx, cancelStop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
		return
	}

	logger.Info("Greeting service stopped")
}

// appOptions assemble le graphe de dépendances du service
func appOptions(cfg *config.Config, logger *logrus.Logger) fx.Option {
	return fx.Options(
		fx.Provide(
			func() *config.Config { return cfg },
			func() *logrus.Logger { return logger },
			// Observabilité
			monitoring.NewMetrics,
			newTelemetry,
			newGreetingMetrics,
			// Domaine
			config.NewGreetingProvider,
			newGreetingHandler,
			newHealthHandler,
			// HTTP
			server.NewRouter,
			server.NewServer,
		),
		fx.Invoke(server.Register),
	)
}

// newTelemetry construit les providers OpenTelemetry et les flush à l'arrêt
func newTelemetry(lc fx.Lifecycle, cfg *config.Config, metrics *monitoring.Metrics, logger *logrus.Logger) (*monitoring.Telemetry, error) {
	tel, err := monitoring.NewTelemetry(context.Background(), cfg.Telemetry, metrics, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: tel.Shutdown,
	})

	return tel, nil
}

func newGreetingMetrics(tel *monitoring.Telemetry) (*monitoring.GreetingMetrics, error) {
	return monitoring.NewGreetingMetrics(tel.Meter())
}

func newGreetingHandler(letters *config.GreetingProvider, counter *monitoring.GreetingMetrics, tel *monitoring.Telemetry) *handlers.GreetingHandler {
	return handlers.NewGreetingHandler(letters, counter, tel.Tracer())
}

func newHealthHandler(letters *config.GreetingProvider, tel *monitoring.Telemetry, logger *logrus.Logger) *handlers.HealthHandler {
	return handlers.NewHealthHandler(tel.ServiceName(), letters, logger)
}

// newLogger configure le logger selon la configuration
func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Format JSON imposé en production
	if cfg.Server.IsProduction() || strings.EqualFold(cfg.Logging.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
