package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the whole service configuration. Keys are the lower-case
// mapstructure names, e.g. ledger.lock_timeout.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Event     EventConfig     `mapstructure:"event"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // postgres or sqlite
	Path            string `mapstructure:"path"`   // sqlite file, ":memory:" for a throwaway database
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret                 string        `mapstructure:"secret"`
	RefreshSecret          string        `mapstructure:"refresh_secret"`
	AccessTokenExpiration  time.Duration `mapstructure:"access_token_expiration"`
	RefreshTokenExpiration time.Duration `mapstructure:"refresh_token_expiration"`
	Issuer                 string        `mapstructure:"issuer"`
	MaxRefreshCount        int           `mapstructure:"max_refresh_count"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, or file path
}

type HTTPConfig struct {
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes   int           `mapstructure:"max_header_bytes"`
	MaxBodySize      int64         `mapstructure:"max_body_size"`
	CORSAllowOrigins []string      `mapstructure:"cors_allow_origins"`
	TrustedProxies   []string      `mapstructure:"trusted_proxies"`
}

// LedgerConfig tunes stock ledger writes
type LedgerConfig struct {
	LockBackend          string        `mapstructure:"lock_backend"` // memory or redis
	LockTimeout          time.Duration `mapstructure:"lock_timeout"` // how long a write waits for a product lock
	LockTTL              time.Duration `mapstructure:"lock_ttl"`     // expiry of redis locks
	MaxRetries           int           `mapstructure:"max_retries"`  // retries of a conflicting top-level write
	RetryBackoff         time.Duration `mapstructure:"retry_backoff"`
	DefaultWarehouseCode string        `mapstructure:"default_warehouse_code"`
}

// EventConfig covers the outbox processor and the broker it feeds
type EventConfig struct {
	Broker           string        `mapstructure:"broker"` // memory, kafka or rabbitmq
	KafkaBrokers     []string      `mapstructure:"kafka_brokers"`
	KafkaTopic       string        `mapstructure:"kafka_topic"`
	RabbitMQURL      string        `mapstructure:"rabbitmq_url"`
	RabbitMQExchange string        `mapstructure:"rabbitmq_exchange"`
	ProcessorEnabled bool          `mapstructure:"processor_enabled"`
	BatchSize        int           `mapstructure:"batch_size"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	MaxRetries       int           `mapstructure:"max_retries"`
	CleanupRetention time.Duration `mapstructure:"cleanup_retention"`
	IdempotencyTTL   time.Duration `mapstructure:"idempotency_ttl"` // how long consumers remember handled event ids
}

type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"`
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"` // defaults to app.name
	Insecure          bool          `mapstructure:"insecure"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`
	LogsEnabled       bool          `mapstructure:"logs_enabled"` // tee zap into OTLP logs

	ProfilingEnabled  bool     `mapstructure:"profiling_enabled"`
	ProfilingAddress  string   `mapstructure:"profiling_server_address"`
	ProfilingUser     string   `mapstructure:"profiling_user"`
	ProfilingPassword string   `mapstructure:"profiling_password"`
	ProfilingTypes    []string `mapstructure:"profiling_types"`
}

// DiscoveryConfig controls the Consul registration
type DiscoveryConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	ConsulAddr      string        `mapstructure:"consul_addr"`
	ServiceID       string        `mapstructure:"service_id"` // defaults to app.name
	ServiceAddress  string        `mapstructure:"service_address"`
	CheckInterval   time.Duration `mapstructure:"check_interval"`
	DeregisterAfter time.Duration `mapstructure:"deregister_after"`
}

// defaults lists every key. Viper only resolves ERP_ variables during
// Unmarshal for keys it already knows, so keys without a useful default
// are listed with their zero value.
var defaults = map[string]any{
	"app.name": "erp-backoffice",
	"app.env":  "development",
	"app.port": "8080",

	"database.driver":             "postgres",
	"database.path":               "erp.db",
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "erp",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"jwt.secret":                   "",
	"jwt.refresh_secret":           "",
	"jwt.access_token_expiration":  15 * time.Minute,
	"jwt.refresh_token_expiration": 7 * 24 * time.Hour,
	"jwt.issuer":                   "erp-backoffice",
	"jwt.max_refresh_count":        10,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":       15 * time.Second,
	"http.write_timeout":      15 * time.Second,
	"http.idle_timeout":       time.Minute,
	"http.max_header_bytes":   1 << 20,
	"http.max_body_size":      10 << 20,
	"http.cors_allow_origins": []string{},
	"http.trusted_proxies":    []string{},

	"ledger.lock_backend":           "memory",
	"ledger.lock_timeout":           5 * time.Second,
	"ledger.lock_ttl":               30 * time.Second,
	"ledger.max_retries":            3,
	"ledger.retry_backoff":          20 * time.Millisecond,
	"ledger.default_warehouse_code": "MAIN",

	"event.broker":            "memory",
	"event.kafka_brokers":     []string{},
	"event.kafka_topic":       "erp.domain-events",
	"event.rabbitmq_url":      "",
	"event.rabbitmq_exchange": "erp.events",
	"event.processor_enabled": true,
	"event.batch_size":        100,
	"event.poll_interval":     5 * time.Second,
	"event.max_retries":       5,
	"event.cleanup_retention": 7 * 24 * time.Hour,
	"event.idempotency_ttl":   24 * time.Hour,

	"telemetry.enabled":                  false,
	"telemetry.collector_endpoint":       "localhost:4317",
	"telemetry.sampling_ratio":           1.0,
	"telemetry.service_name":             "",
	"telemetry.insecure":                 false,
	"telemetry.metrics_interval":         30 * time.Second,
	"telemetry.db_trace_enabled":         false,
	"telemetry.db_log_full_sql":          false,
	"telemetry.db_slow_query_threshold":  200 * time.Millisecond,
	"telemetry.logs_enabled":             false,
	"telemetry.profiling_enabled":        false,
	"telemetry.profiling_server_address": "http://localhost:4040",
	"telemetry.profiling_user":           "",
	"telemetry.profiling_password":       "",
	"telemetry.profiling_types":          []string{"cpu", "alloc_space", "inuse_space", "goroutines"},

	"discovery.enabled":          false,
	"discovery.consul_addr":      "localhost:8500",
	"discovery.service_id":       "",
	"discovery.service_address":  "",
	"discovery.check_interval":   10 * time.Second,
	"discovery.deregister_after": time.Minute,
}

// Load reads config.toml from ., ./config or /app and applies the ERP_
// environment overrides (ERP_DATABASE_PASSWORD wins over database.password).
// A missing file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper decodes an already prepared viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("ERP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Discovery.ServiceID == "" {
		cfg.Discovery.ServiceID = cfg.App.Name
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Ledger.LockBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("ledger.lock_backend must be memory or redis, got %q", c.Ledger.LockBackend)
	}
	if c.Ledger.MaxRetries < 0 {
		return fmt.Errorf("ledger.max_retries cannot be negative")
	}

	switch c.Event.Broker {
	case "memory":
	case "kafka":
		if len(c.Event.KafkaBrokers) == 0 {
			return fmt.Errorf("event.kafka_brokers is required for the kafka broker")
		}
	case "rabbitmq":
		if c.Event.RabbitMQURL == "" {
			return fmt.Errorf("event.rabbitmq_url is required for the rabbitmq broker")
		}
	default:
		return fmt.Errorf("event.broker must be memory, kafka or rabbitmq, got %q", c.Event.Broker)
	}

	if c.App.Env == "production" {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Driver == "postgres" && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.Driver == "postgres" && c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilingAddress == "" {
		return fmt.Errorf("telemetry.profiling_server_address is required when profiling is enabled")
	}
	return nil
}

// DSN returns the connection string for the configured driver
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
