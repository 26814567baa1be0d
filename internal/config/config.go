package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration of the API
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logger    LoggerConfig    `yaml:"logger"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	S3        S3Config        `yaml:"s3"`
	JWT       JWTConfig       `yaml:"jwt"`
	Invite    InviteConfig    `yaml:"invite"`
	Ordering  OrderingConfig  `yaml:"ordering"`
	Jobs      JobsConfig      `yaml:"jobs"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Upload    UploadConfig    `yaml:"upload"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	BasePath        string        `yaml:"base_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig selects between postgres (production) and sqlite (local runs)
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	URL             string        `yaml:"url"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"ssl_mode"`
	SQLitePath      string        `yaml:"sqlite_path"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// GetDSN returns the connection string for the configured driver
func (d DatabaseConfig) GetDSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// InviteConfig controls workspace invite links
type InviteConfig struct {
	Secret      string        `yaml:"secret"`
	TTL         time.Duration `yaml:"ttl"`
	FrontendURL string        `yaml:"frontend_url"`
}

// OrderingConfig controls the per-container locks around position changes
type OrderingConfig struct {
	LockBackend string        `yaml:"lock_backend"`
	LockWait    time.Duration `yaml:"lock_wait"`
	LockTTL     time.Duration `yaml:"lock_ttl"`
}

type JobsConfig struct {
	Enabled                bool   `yaml:"enabled"`
	FileCleanupSchedule    string `yaml:"file_cleanup_schedule"`
	PositionRepairSchedule string `yaml:"position_repair_schedule"`
}

type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

type UploadConfig struct {
	MaxFileSize int64 `yaml:"max_file_size"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Mode:            "debug",
			BasePath:        "/api",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Logger: LoggerConfig{Level: "info"},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Name:            "itrun",
			SSLMode:         "disable",
			SQLitePath:      "itrun.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			AutoMigrate:     true,
		},
		S3: S3Config{Region: "eu-central-1"},
		Invite: InviteConfig{
			TTL:         24 * time.Hour,
			FrontendURL: "http://localhost:3000",
		},
		Ordering: OrderingConfig{
			LockBackend: "local",
			LockWait:    3 * time.Second,
			LockTTL:     10 * time.Second,
		},
		Jobs: JobsConfig{
			Enabled:                true,
			FileCleanupSchedule:    "*/10 * * * *",
			PositionRepairSchedule: "0 * * * *",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     20,
			Burst:   40,
		},
		Tracing: TracingConfig{
			Endpoint:    "localhost:4317",
			ServiceName: "itrun-api",
		},
		Upload: UploadConfig{MaxFileSize: 10 << 20},
	}
}

// Load reads defaults, then the yaml file at path (if present), then environment overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Ordering.LockBackend {
	case "local", "redis":
	default:
		return fmt.Errorf("unsupported lock backend %q", c.Ordering.LockBackend)
	}
	if c.Ordering.LockWait <= 0 {
		return fmt.Errorf("ordering.lock_wait must be positive")
	}
	if c.Invite.Secret == "" {
		c.Invite.Secret = c.JWT.Secret
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Mode, "GIN_MODE")
	setString(&cfg.Server.BasePath, "SERVER_BASE_PATH")
	setString(&cfg.Logger.Level, "LOG_LEVEL")
	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSL_MODE")
	setString(&cfg.Database.SQLitePath, "SQLITE_PATH")
	setBool(&cfg.Database.AutoMigrate, "DB_AUTO_MIGRATE")

	setString(&cfg.Redis.URL, "REDIS_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	setString(&cfg.S3.Bucket, "S3_BUCKET")
	setString(&cfg.S3.Region, "S3_REGION")
	setString(&cfg.S3.Endpoint, "S3_ENDPOINT")
	setString(&cfg.S3.AccessKey, "S3_ACCESS_KEY")
	setString(&cfg.S3.SecretKey, "S3_SECRET_KEY")

	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Invite.Secret, "INVITE_SECRET")
	setString(&cfg.Invite.FrontendURL, "FRONTEND_URL")
	setDuration(&cfg.Invite.TTL, "INVITE_TTL")

	setString(&cfg.Ordering.LockBackend, "LOCK_BACKEND")
	setDuration(&cfg.Ordering.LockWait, "LOCK_WAIT")
	setDuration(&cfg.Ordering.LockTTL, "LOCK_TTL")

	setBool(&cfg.Jobs.Enabled, "JOBS_ENABLED")
	setBool(&cfg.RateLimit.Enabled, "RATE_LIMIT_ENABLED")

	setBool(&cfg.Tracing.Enabled, "TRACING_ENABLED")
	setString(&cfg.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.Tracing.ServiceName, "OTEL_SERVICE_NAME")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
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
