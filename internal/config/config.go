package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Valeurs par défaut
const (
	DefaultServerPort      = 8080
	DefaultServerTimeout   = 30 * time.Second
	DefaultExportInterval  = 60 * time.Second
	DefaultServiceName     = "greeting"
	DefaultMetricsPath     = "/metrics"
	DefaultHealthPath      = "/actuator/health"
	EnvironmentProduction  = "production"
	EnvironmentDevelopment = "development"
)

// Routes fixes du service, relatives au base path
const (
	GreetingPath = "/greeting"
	ReadyPath    = "/ready"
	LivePath     = "/live"
)

// ErrMissingLetter est retournée quand GREETING_LETTER est absente ou vide
var ErrMissingLetter = errors.New("GREETING_LETTER is required")

// Config structure principale de configuration
type Config struct {
	Greeting   GreetingConfig   `mapstructure:"greeting"`
	Server     ServerConfig     `mapstructure:"server"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// GreetingConfig contient la lettre servie par le service
type GreetingConfig struct {
	Letter string `mapstructure:"letter"`
}

// ServerConfig configuration du serveur HTTP
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	BasePath        string        `mapstructure:"base_path"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// TelemetryConfig configuration OpenTelemetry
type TelemetryConfig struct {
	ServiceName    string        `mapstructure:"service_name"`
	OTLPEndpoint   string        `mapstructure:"otlp_endpoint"`
	OTLPInsecure   bool          `mapstructure:"otlp_insecure"`
	ExportInterval time.Duration `mapstructure:"export_interval"`
}

// MonitoringConfig configuration du monitoring
type MonitoringConfig struct {
	MetricsPath string `mapstructure:"metrics_path"`
	HealthPath  string `mapstructure:"health_path"`
}

// LoggingConfig configuration des logs
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// envBindings associe chaque clé de configuration à sa variable d'environnement
var envBindings = map[string]string{
	"greeting.letter": "GREETING_LETTER",

	"server.host":             "SERVER_HOST",
	"server.port":             "SERVER_PORT",
	"server.environment":      "SERVER_ENVIRONMENT",
	"server.base_path":        "SERVER_BASE_PATH",
	"server.read_timeout":     "SERVER_READ_TIMEOUT",
	"server.write_timeout":    "SERVER_WRITE_TIMEOUT",
	"server.shutdown_timeout": "SERVER_SHUTDOWN_TIMEOUT",

	"telemetry.service_name":    "OTEL_SERVICE_NAME",
	"telemetry.otlp_endpoint":   "OTEL_EXPORTER_OTLP_ENDPOINT",
	"telemetry.otlp_insecure":   "OTEL_EXPORTER_OTLP_INSECURE",
	"telemetry.export_interval": "TELEMETRY_EXPORT_INTERVAL",

	"monitoring.metrics_path": "MONITORING_METRICS_PATH",
	"monitoring.health_path":  "MONITORING_HEALTH_PATH",

	"logging.level":  "LOG_LEVEL",
	"logging.format": "LOG_FORMAT",
}

// defaultConfig retourne la configuration par défaut
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            DefaultServerPort,
			Environment:     EnvironmentDevelopment,
			ReadTimeout:     DefaultServerTimeout,
			WriteTimeout:    DefaultServerTimeout,
			ShutdownTimeout: DefaultServerTimeout,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    DefaultServiceName,
			OTLPInsecure:   true,
			ExportInterval: DefaultExportInterval,
		},
		Monitoring: MonitoringConfig{
			MetricsPath: DefaultMetricsPath,
			HealthPath:  DefaultHealthPath,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig charge la configuration depuis les variables d'environnement
// et, s'il existe, depuis un fichier config.yaml. Les répertoires passés en
// paramètre sont consultés avant les emplacements standards.
func LoadConfig(configDirs ...string) (*Config, error) {
	config := defaultConfig()

	v := viper.New()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range configDirs {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/greeting/")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate valide la configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Greeting.Letter) == "" {
		return ErrMissingLetter
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if bp := c.Server.BasePath; bp != "" && (!strings.HasPrefix(bp, "/") || strings.HasSuffix(bp, "/")) {
		return fmt.Errorf("base path must start with / and not end with /: %q", bp)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}

	if c.Telemetry.ServiceName == "" {
		return fmt.Errorf("telemetry service name is required")
	}
	if c.Telemetry.ExportInterval <= 0 {
		return fmt.Errorf("telemetry export interval must be positive")
	}

	if err := c.Monitoring.validatePaths(); err != nil {
		return err
	}

	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}

	return nil
}

// validatePaths rejette les chemins relatifs ou déjà occupés par une autre route
func (m *MonitoringConfig) validatePaths() error {
	taken := map[string]string{
		GreetingPath: "greeting",
		ReadyPath:    "readiness",
		LivePath:     "liveness",
	}

	for _, p := range []struct{ name, path string }{
		{"metrics", m.MetricsPath},
		{"health", m.HealthPath},
	} {
		if !strings.HasPrefix(p.path, "/") {
			return fmt.Errorf("%s path must start with /: %q", p.name, p.path)
		}
		if owner, ok := taken[p.path]; ok {
			return fmt.Errorf("%s path %q already used by the %s route", p.name, p.path, owner)
		}
		taken[p.path] = p.name
	}

	return nil
}

// IsProduction indique si le service tourne en production
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// Addr retourne l'adresse d'écoute du serveur
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
