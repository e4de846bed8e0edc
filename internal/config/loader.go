package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "taskapproval.yaml"

// EnvTimeoutMonths overrides the approval window. It is consulted at every
// orchestration start, not only at load time.
const EnvTimeoutMonths = "APPROVAL_TIMEOUT_MONTHS"

var knownEmailProviders = map[string]bool{"smtp": true, "mock": true}

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// LoadWithCLI loads the config and applies CLI flag overrides on top.
func LoadWithCLI(args []string) (*Config, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, fmt.Errorf("config flags: %w", err)
	}

	path := DefaultConfigFile
	if flags.ConfigPath != nil {
		path = *flags.ConfigPath
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, path); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}
	loadEnv(&cfg)
	ApplyCLI(&cfg, flags)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}
	return &cfg, nil
}

// TimeoutSetting returns a lookup for the raw approval window setting:
// the environment wins over the loaded value.
func (c *Config) TimeoutSetting() func() string {
	fallback := c.Approval.TimeoutMonths
	return func() string {
		if v := os.Getenv(EnvTimeoutMonths); v != "" {
			return v
		}
		return fallback
	}
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "TASKAPPROVAL_PORT")
	setString(&cfg.Server.CORSOrigin, "TASKAPPROVAL_CORS_ORIGIN")
	setInt64(&cfg.Server.BodyLimit, "TASKAPPROVAL_BODY_LIMIT")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "TASKAPPROVAL_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "TASKAPPROVAL_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "TASKAPPROVAL_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "TASKAPPROVAL_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "TASKAPPROVAL_PG_HEALTH_CHECK")

	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.NATS.Stream, "TASKAPPROVAL_NATS_STREAM")

	setString(&cfg.Temporal.HostPort, "TEMPORAL_HOST_PORT")
	setString(&cfg.Temporal.Namespace, "TEMPORAL_NAMESPACE")
	setString(&cfg.Temporal.TaskQueue, "TEMPORAL_TASK_QUEUE")
	setDuration(&cfg.Temporal.ActivityTimeout, "TASKAPPROVAL_ACTIVITY_TIMEOUT")
	setInt32(&cfg.Temporal.ActivityMaxAttempts, "TASKAPPROVAL_ACTIVITY_MAX_ATTEMPTS")
	setDuration(&cfg.Temporal.ActivityInitialInterval, "TASKAPPROVAL_ACTIVITY_INITIAL_INTERVAL")

	// Kept raw; parsing happens per orchestration.
	setString(&cfg.Approval.TimeoutMonths, EnvTimeoutMonths)

	setString(&cfg.Email.Provider, "TASKAPPROVAL_EMAIL_PROVIDER")
	setString(&cfg.Email.SMTP.Host, "TASKAPPROVAL_SMTP_HOST")
	setInt(&cfg.Email.SMTP.Port, "TASKAPPROVAL_SMTP_PORT")
	setString(&cfg.Email.SMTP.From, "TASKAPPROVAL_SMTP_FROM")
	setString(&cfg.Email.SMTP.Password, "TASKAPPROVAL_SMTP_PASSWORD")

	setString(&cfg.Logging.Level, "TASKAPPROVAL_LOG_LEVEL")
	setString(&cfg.Logging.Service, "TASKAPPROVAL_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "TASKAPPROVAL_LOG_ASYNC")

	setInt(&cfg.Breaker.MaxFailures, "TASKAPPROVAL_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "TASKAPPROVAL_BREAKER_TIMEOUT")

	setString(&cfg.Idempotency.Bucket, "TASKAPPROVAL_IDEMPOTENCY_BUCKET")
	setDuration(&cfg.Idempotency.TTL, "TASKAPPROVAL_IDEMPOTENCY_TTL")
	setInt64(&cfg.Idempotency.L1MaxSizeMB, "TASKAPPROVAL_IDEMPOTENCY_L1_SIZE_MB")

	setBool(&cfg.OTel.Enabled, "TASKAPPROVAL_OTEL_ENABLED")
	setString(&cfg.OTel.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&cfg.OTel.Insecure, "TASKAPPROVAL_OTEL_INSECURE")
	setString(&cfg.OTel.ServiceName, "OTEL_SERVICE_NAME")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if cfg.Temporal.HostPort == "" {
		return errors.New("temporal.host_port is required")
	}
	if cfg.Temporal.TaskQueue == "" {
		return errors.New("temporal.task_queue is required")
	}
	if cfg.Temporal.ActivityMaxAttempts < 1 {
		return errors.New("temporal.activity_max_attempts must be >= 1")
	}
	if !knownEmailProviders[cfg.Email.Provider] {
		return fmt.Errorf("email.provider %q is not supported", cfg.Email.Provider)
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	return nil
}

// CLIFlags holds overrides given on the command line. Nil fields were not set.
type CLIFlags struct {
	ConfigPath   *string
	Port         *string
	LogLevel     *string
	DSN          *string
	NatsURL      *string
	TemporalHost *string
}

// ParseFlags parses command line overrides.
func ParseFlags(args []string) (*CLIFlags, error) {
	fs := flag.NewFlagSet("taskapproval", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var configPath, port, logLevel, dsn, natsURL, temporalHost string
	fs.StringVar(&configPath, "config", "", "path to YAML config")
	fs.StringVar(&configPath, "c", "", "path to YAML config (shorthand)")
	fs.StringVar(&port, "port", "", "HTTP port")
	fs.StringVar(&port, "p", "", "HTTP port (shorthand)")
	fs.StringVar(&logLevel, "log-level", "", "log level")
	fs.StringVar(&dsn, "dsn", "", "PostgreSQL DSN")
	fs.StringVar(&natsURL, "nats-url", "", "NATS URL")
	fs.StringVar(&temporalHost, "temporal", "", "Temporal frontend host:port")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	flags := &CLIFlags{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "config", "c":
			flags.ConfigPath = &configPath
		case "port", "p":
			flags.Port = &port
		case "log-level":
			flags.LogLevel = &logLevel
		case "dsn":
			flags.DSN = &dsn
		case "nats-url":
			flags.NatsURL = &natsURL
		case "temporal":
			flags.TemporalHost = &temporalHost
		}
	})
	return flags, nil
}

// ApplyCLI overlays set flags onto cfg.
func ApplyCLI(cfg *Config, flags *CLIFlags) {
	if flags == nil {
		return
	}
	if flags.Port != nil {
		cfg.Server.Port = *flags.Port
	}
	if flags.LogLevel != nil {
		cfg.Logging.Level = *flags.LogLevel
	}
	if flags.DSN != nil {
		cfg.Postgres.DSN = *flags.DSN
	}
	if flags.NatsURL != nil {
		cfg.NATS.URL = *flags.NatsURL
	}
	if flags.TemporalHost != nil {
		cfg.Temporal.HostPort = *flags.TemporalHost
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
