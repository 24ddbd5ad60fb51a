package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	Dataset     DatasetConfig
	Dashboard   DashboardConfig
	Redis       RedisConfig
	Postgres    PostgresConfig
	Minio       MinioConfig
	Kafka       KafkaConfig
	Exports     ExportsConfig
	Scheduler   SchedulerConfig
	API         APIConfig
	HealthCheck HealthCheckConfig
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Env             string        `mapstructure:"env"`
	LogLevel        string        `mapstructure:"log_level"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatasetConfig struct {
	DailyPath      string        `mapstructure:"daily_path"`
	HourlyPath     string        `mapstructure:"hourly_path"`
	DateLayout     string        `mapstructure:"date_layout"`
	ReloadInterval time.Duration `mapstructure:"reload_interval"`
}

type DashboardConfig struct {
	CatalogPath string        `mapstructure:"catalog_path"`
	PreviewRows int           `mapstructure:"preview_rows"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	ChartFormat string        `mapstructure:"chart_format"`
	ChartWidth  int           `mapstructure:"chart_width"`
	ChartHeight int           `mapstructure:"chart_height"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type PostgresConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConnections    int           `mapstructure:"max_connections"`
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout"`
}

type MinioConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Endpoint  string        `mapstructure:"endpoint"`
	AccessKey string        `mapstructure:"access_key"`
	SecretKey string        `mapstructure:"secret_key"`
	Bucket    string        `mapstructure:"bucket"`
	UseSSL    bool          `mapstructure:"use_ssl"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Broker       string `mapstructure:"broker"`
	DatasetTopic string `mapstructure:"dataset_topic"`
	EventsTopic  string `mapstructure:"events_topic"`
	GroupID      string `mapstructure:"group_id"`
	RequiredAcks int16  `mapstructure:"required_acks"`
	MaxRetries   int    `mapstructure:"max_retries"`
}

type ExportsConfig struct {
	RetentionDays int           `mapstructure:"retention_days"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

type SchedulerConfig struct {
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type APIConfig struct {
	BasePath           string        `mapstructure:"base_path"`
	EnableSwagger      bool          `mapstructure:"enable_swagger"`
	CorsAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	RateLimit          int           `mapstructure:"rate_limit"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
}

type HealthCheckConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	Interval      time.Duration `mapstructure:"interval"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

// ExportsEnabled reports whether both backends needed for workbook exports
// are configured.
func (c *Config) ExportsEnabled() bool {
	return c.Postgres.Enabled && c.Minio.Enabled
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/bike-dashboard/")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	overrideFromEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "bike-dashboard")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.shutdown_timeout", "30s")

	v.SetDefault("dataset.daily_path", "./data/data_day.csv")
	v.SetDefault("dataset.hourly_path", "./data/data_hour.csv")
	v.SetDefault("dataset.date_layout", "2006-01-02")
	v.SetDefault("dataset.reload_interval", "0s")

	v.SetDefault("dashboard.catalog_path", "")
	v.SetDefault("dashboard.preview_rows", 5)
	v.SetDefault("dashboard.cache_ttl", "10m")
	v.SetDefault("dashboard.chart_format", "svg")
	v.SetDefault("dashboard.chart_width", 800)
	v.SetDefault("dashboard.chart_height", 400)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "redis")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.timeout", "5s")

	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.host", "postgres")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "bike_user")
	v.SetDefault("postgres.password", "bike_pass")
	v.SetDefault("postgres.database", "bike_dashboard")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_connections", 10)
	v.SetDefault("postgres.connection_timeout", "30s")

	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", "minio:9000")
	v.SetDefault("minio.access_key", "minioadmin")
	v.SetDefault("minio.secret_key", "minioadmin")
	v.SetDefault("minio.bucket", "bike-dashboard-exports")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.timeout", "30s")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.broker", "kafka:9093")
	v.SetDefault("kafka.dataset_topic", "bike-dataset-events")
	v.SetDefault("kafka.events_topic", "bike-dashboard-events")
	v.SetDefault("kafka.group_id", "bike-dashboard-group")
	v.SetDefault("kafka.required_acks", 1)
	v.SetDefault("kafka.max_retries", 3)

	v.SetDefault("exports.retention_days", 7)
	v.SetDefault("exports.cache_ttl", "1h")

	v.SetDefault("scheduler.cleanup_interval", "24h")
	v.SetDefault("scheduler.timeout", "10m")

	v.SetDefault("api.base_path", "/api/v1")
	v.SetDefault("api.enable_swagger", true)
	v.SetDefault("api.cors_allowed_origins", []string{"*"})
	v.SetDefault("api.rate_limit", 100)
	v.SetDefault("api.rate_limit_window", "1s")

	v.SetDefault("healthcheck.timeout", "10s")
	v.SetDefault("healthcheck.interval", "30s")
	v.SetDefault("healthcheck.startup_delay", "5s")
	v.SetDefault("healthcheck.retry_interval", "2s")
	v.SetDefault("healthcheck.max_retries", 5)
}

func overrideFromEnv(v *viper.Viper) {
	if path := os.Getenv("DATASET_DAILY_PATH"); path != "" {
		v.Set("dataset.daily_path", path)
	}
	if path := os.Getenv("DATASET_HOURLY_PATH"); path != "" {
		v.Set("dataset.hourly_path", path)
	}

	if host := os.Getenv("REDIS_HOST"); host != "" {
		v.Set("redis.host", host)
		v.Set("redis.enabled", true)
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		v.Set("redis.password", password)
	}

	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		v.Set("postgres.host", host)
		v.Set("postgres.enabled", true)
	}
	if user := os.Getenv("POSTGRES_USER"); user != "" {
		v.Set("postgres.user", user)
	}
	if password := os.Getenv("POSTGRES_PASSWORD"); password != "" {
		v.Set("postgres.password", password)
	}

	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		v.Set("minio.endpoint", endpoint)
		v.Set("minio.enabled", true)
	}
	if accessKey := os.Getenv("MINIO_ACCESS_KEY"); accessKey != "" {
		v.Set("minio.access_key", accessKey)
	}
	if secretKey := os.Getenv("MINIO_SECRET_KEY"); secretKey != "" {
		v.Set("minio.secret_key", secretKey)
	}
	if bucket := os.Getenv("MINIO_BUCKET"); bucket != "" {
		v.Set("minio.bucket", bucket)
	}

	if broker := os.Getenv("KAFKA_BROKER"); broker != "" {
		v.Set("kafka.broker", broker)
		v.Set("kafka.enabled", true)
	}
	if groupID := os.Getenv("KAFKA_GROUP_ID"); groupID != "" {
		v.Set("kafka.group_id", groupID)
	}

	if env := os.Getenv("APP_ENV"); env != "" {
		v.Set("app.env", env)
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		v.Set("app.log_level", logLevel)
	}
}

func validateConfig(cfg *Config) error {
	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		return fmt.Errorf("app port must be between 1 and 65535")
	}
	if cfg.Dataset.DailyPath == "" {
		return fmt.Errorf("daily dataset path cannot be empty")
	}
	if cfg.Dataset.HourlyPath == "" {
		return fmt.Errorf("hourly dataset path cannot be empty")
	}
	if cfg.Dataset.DateLayout == "" {
		return fmt.Errorf("dataset date layout cannot be empty")
	}
	if cfg.Dataset.ReloadInterval < 0 {
		return fmt.Errorf("dataset reload interval cannot be negative")
	}
	if cfg.Dashboard.PreviewRows <= 0 {
		return fmt.Errorf("preview rows must be positive")
	}
	if cfg.Dashboard.CacheTTL <= 0 {
		return fmt.Errorf("dashboard cache TTL must be positive")
	}
	if cfg.Dashboard.ChartFormat != "svg" && cfg.Dashboard.ChartFormat != "png" {
		return fmt.Errorf("chart format must be svg or png")
	}
	if cfg.Dashboard.ChartWidth <= 0 || cfg.Dashboard.ChartHeight <= 0 {
		return fmt.Errorf("chart dimensions must be positive")
	}

	if cfg.Redis.Enabled && cfg.Redis.Host == "" {
		return fmt.Errorf("Redis host cannot be empty")
	}
	if cfg.Postgres.Enabled {
		if cfg.Postgres.Host == "" {
			return fmt.Errorf("PostgreSQL host cannot be empty")
		}
		if cfg.Postgres.User == "" {
			return fmt.Errorf("PostgreSQL user cannot be empty")
		}
	}
	if cfg.Minio.Enabled {
		if cfg.Minio.Endpoint == "" {
			return fmt.Errorf("Minio endpoint cannot be empty")
		}
		if cfg.Minio.Bucket == "" {
			return fmt.Errorf("Minio bucket cannot be empty")
		}
	}
	if cfg.Kafka.Enabled {
		if cfg.Kafka.Broker == "" {
			return fmt.Errorf("Kafka broker cannot be empty")
		}
		if cfg.Kafka.DatasetTopic == "" || cfg.Kafka.EventsTopic == "" {
			return fmt.Errorf("Kafka topics cannot be empty")
		}
	}

	if cfg.ExportsEnabled() && cfg.Exports.RetentionDays <= 0 {
		return fmt.Errorf("export retention must be positive")
	}
	if cfg.Scheduler.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup interval must be positive")
	}
	if cfg.API.RateLimit <= 0 || cfg.API.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit and window must be positive")
	}

	return nil
}
