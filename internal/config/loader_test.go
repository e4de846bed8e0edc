package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Temporal.TaskQueue != "task-approval" {
		t.Errorf("expected task queue task-approval, got %s", cfg.Temporal.TaskQueue)
	}
	if cfg.Approval.TimeoutMonths != "6" {
		t.Errorf("expected timeout_months 6, got %q", cfg.Approval.TimeoutMonths)
	}
	if cfg.Breaker.Timeout != 30*time.Second {
		t.Errorf("expected breaker timeout 30s, got %v", cfg.Breaker.Timeout)
	}
	if err := validate(&cfg); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
server:
  port: "9090"
temporal:
  namespace: "approvals"
  activity_timeout: 2m
approval:
  timeout_months: "3"
email:
  provider: "mock"
logging:
  level: "debug"
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Temporal.Namespace != "approvals" {
		t.Errorf("expected namespace approvals, got %s", cfg.Temporal.Namespace)
	}
	if cfg.Temporal.ActivityTimeout != 2*time.Minute {
		t.Errorf("expected activity timeout 2m, got %v", cfg.Temporal.ActivityTimeout)
	}
	if cfg.Approval.TimeoutMonths != "3" {
		t.Errorf("expected timeout_months 3, got %q", cfg.Approval.TimeoutMonths)
	}
	if cfg.Email.Provider != "mock" {
		t.Errorf("expected provider mock, got %s", cfg.Email.Provider)
	}
	// Unchanged fields keep defaults
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("expected default NATS URL, got %s", cfg.NATS.URL)
	}
}

func TestLoadYAMLMissing(t *testing.T) {
	cfg := Defaults()
	err := loadYAML(&cfg, "/nonexistent/path.yaml")
	if err != nil {
		t.Errorf("missing YAML should not error, got %v", err)
	}
}

func TestLoadYAMLInvalid(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(yamlPath, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err == nil {
		t.Error("expected parse error for invalid YAML")
	}
}

func TestEnvOverride(t *testing.T) {
	cfg := Defaults()

	t.Setenv("TASKAPPROVAL_PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://test:test@db:5432/test")
	t.Setenv("TASKAPPROVAL_PG_MAX_CONNS", "25")
	t.Setenv("TEMPORAL_HOST_PORT", "temporal:7233")
	t.Setenv("TASKAPPROVAL_ACTIVITY_MAX_ATTEMPTS", "9")
	t.Setenv("TASKAPPROVAL_LOG_ASYNC", "true")
	t.Setenv("TASKAPPROVAL_BREAKER_TIMEOUT", "1m")

	loadEnv(&cfg)

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port 7070, got %s", cfg.Server.Port)
	}
	if cfg.Postgres.DSN != "postgres://test:test@db:5432/test" {
		t.Errorf("unexpected DSN: %s", cfg.Postgres.DSN)
	}
	if cfg.Postgres.MaxConns != 25 {
		t.Errorf("expected max_conns 25, got %d", cfg.Postgres.MaxConns)
	}
	if cfg.Temporal.HostPort != "temporal:7233" {
		t.Errorf("expected temporal:7233, got %s", cfg.Temporal.HostPort)
	}
	if cfg.Temporal.ActivityMaxAttempts != 9 {
		t.Errorf("expected 9 attempts, got %d", cfg.Temporal.ActivityMaxAttempts)
	}
	if !cfg.Logging.Async {
		t.Error("expected async logging enabled")
	}
	if cfg.Breaker.Timeout != time.Minute {
		t.Errorf("expected breaker timeout 1m, got %v", cfg.Breaker.Timeout)
	}
}

func TestEnvInvalidIgnored(t *testing.T) {
	cfg := Defaults()

	t.Setenv("TASKAPPROVAL_PG_MAX_CONNS", "not-a-number")
	t.Setenv("TASKAPPROVAL_BREAKER_TIMEOUT", "forever")
	t.Setenv("TASKAPPROVAL_OTEL_ENABLED", "maybe")

	loadEnv(&cfg)

	if cfg.Postgres.MaxConns != 10 {
		t.Errorf("invalid env should keep default, got %d", cfg.Postgres.MaxConns)
	}
	if cfg.Breaker.Timeout != 30*time.Second {
		t.Errorf("invalid env should keep default, got %v", cfg.Breaker.Timeout)
	}
	if cfg.OTel.Enabled {
		t.Error("invalid bool should keep default")
	}
}

func TestTimeoutMonthsKeptRaw(t *testing.T) {
	cfg := Defaults()
	t.Setenv(EnvTimeoutMonths, "abc")

	loadEnv(&cfg)

	if cfg.Approval.TimeoutMonths != "abc" {
		t.Errorf("expected raw value abc, got %q", cfg.Approval.TimeoutMonths)
	}
	if err := validate(&cfg); err != nil {
		t.Errorf("unparseable timeout must not fail validation, got %v", err)
	}
}

func TestTimeoutSetting(t *testing.T) {
	cfg := Defaults()
	cfg.Approval.TimeoutMonths = "4"
	lookup := cfg.TimeoutSetting()

	t.Setenv(EnvTimeoutMonths, "")
	if got := lookup(); got != "4" {
		t.Errorf("expected config value 4, got %q", got)
	}

	t.Setenv(EnvTimeoutMonths, "12")
	if got := lookup(); got != "12" {
		t.Errorf("expected env value 12, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty port", func(c *Config) { c.Server.Port = "" }, true},
		{"empty dsn", func(c *Config) { c.Postgres.DSN = "" }, true},
		{"empty nats", func(c *Config) { c.NATS.URL = "" }, true},
		{"empty temporal host", func(c *Config) { c.Temporal.HostPort = "" }, true},
		{"empty task queue", func(c *Config) { c.Temporal.TaskQueue = "" }, true},
		{"zero attempts", func(c *Config) { c.Temporal.ActivityMaxAttempts = 0 }, true},
		{"unknown provider", func(c *Config) { c.Email.Provider = "carrier-pigeon" }, true},
		{"zero max conns", func(c *Config) { c.Postgres.MaxConns = 0 }, true},
		{"zero breaker failures", func(c *Config) { c.Breaker.MaxFailures = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := validate(&cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFrom_FullHierarchy(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "taskapproval.yaml")
	content := `
server:
  port: "9000"
nats:
  stream: "YAML_STREAM"
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASKAPPROVAL_PORT", "9100")

	cfg, err := LoadFrom(yamlPath)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9100" {
		t.Errorf("env should win over yaml, got %s", cfg.Server.Port)
	}
	if cfg.NATS.Stream != "YAML_STREAM" {
		t.Errorf("yaml should win over defaults, got %s", cfg.NATS.Stream)
	}
}

func TestParseFlags(t *testing.T) {
	flags, err := ParseFlags([]string{"-c", "/etc/ta.yaml", "--port", "1234", "--temporal", "t:7233"})
	if err != nil {
		t.Fatal(err)
	}
	if flags.ConfigPath == nil || *flags.ConfigPath != "/etc/ta.yaml" {
		t.Errorf("unexpected config path: %v", flags.ConfigPath)
	}
	if flags.Port == nil || *flags.Port != "1234" {
		t.Errorf("unexpected port: %v", flags.Port)
	}
	if flags.TemporalHost == nil || *flags.TemporalHost != "t:7233" {
		t.Errorf("unexpected temporal host: %v", flags.TemporalHost)
	}
	if flags.DSN != nil {
		t.Error("unset flag should be nil")
	}
}

func TestParseFlagsUnknown(t *testing.T) {
	if _, err := ParseFlags([]string{"--bogus"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestApplyCLI(t *testing.T) {
	cfg := Defaults()
	level := "debug"
	ApplyCLI(&cfg, &CLIFlags{LogLevel: &level})

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug, got %s", cfg.Logging.Level)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("unset flag must not change port, got %s", cfg.Server.Port)
	}

	ApplyCLI(&cfg, nil)
}
