// Package config loads service configuration from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Search   SearchConfig   `mapstructure:"search"`
	Vision   VisionConfig   `mapstructure:"vision"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORS         CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// CatalogConfig selects where the product catalog is loaded from at startup.
type CatalogConfig struct {
	Source    string `mapstructure:"source"` // builtin, file, database, object
	Path      string `mapstructure:"path"`
	ObjectKey string `mapstructure:"object_key"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres
	Path            string        `mapstructure:"path"`
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the connection string for the configured driver. An explicit URL wins.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
	return c.Path
}

type StorageConfig struct {
	Type      string `mapstructure:"type"` // minio, s3, r2, s3compatible
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

type SearchConfig struct {
	Strategy         string        `mapstructure:"strategy"` // heuristic, features
	MaxResults       int           `mapstructure:"max_results"`
	SimulatedLatency time.Duration `mapstructure:"simulated_latency"`
	Timeout          time.Duration `mapstructure:"timeout"`
	Seed             uint64        `mapstructure:"seed"` // 0 seeds from the clock
}

type VisionConfig struct {
	Provider    string        `mapstructure:"provider"` // random, remote
	Dimensions  int           `mapstructure:"dimensions"`
	Endpoint    string        `mapstructure:"endpoint"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RetryCount  int           `mapstructure:"retry_count"`
	Concurrency int           `mapstructure:"concurrency"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets and connection strings are usually injected by the platform.
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("database.password", "DATABASE_PASSWORD")
	_ = v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	_ = v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	_ = v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	_ = v.BindEnv("vision.api_key", "VISION_API_KEY")
	_ = v.BindEnv("server.port", "PORT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})

	v.SetDefault("catalog.source", "builtin")
	v.SetDefault("catalog.path", "./data/products.yaml")
	v.SetDefault("catalog.object_key", "catalog/products.yaml")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/vismatch.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("storage.type", "")
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.bucket", "vismatch")

	v.SetDefault("search.strategy", "heuristic")
	v.SetDefault("search.max_results", 20)
	v.SetDefault("search.simulated_latency", time.Duration(0))
	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("search.seed", 0)

	v.SetDefault("vision.provider", "random")
	v.SetDefault("vision.dimensions", 128)
	v.SetDefault("vision.endpoint", "https://api.jina.ai/v1/embeddings")
	v.SetDefault("vision.model", "jina-clip-v2")
	v.SetDefault("vision.timeout", 10*time.Second)
	v.SetDefault("vision.retry_count", 2)
	v.SetDefault("vision.concurrency", 1)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case "builtin", "database":
	case "file":
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for the file source")
		}
	case "object":
		if c.Catalog.ObjectKey == "" {
			return fmt.Errorf("catalog.object_key is required for the object source")
		}
	default:
		return fmt.Errorf("unknown catalog.source %q", c.Catalog.Source)
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}

	switch c.Search.Strategy {
	case "heuristic", "features":
	default:
		return fmt.Errorf("unknown search.strategy %q", c.Search.Strategy)
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be positive")
	}
	if c.Search.SimulatedLatency < 0 {
		return fmt.Errorf("search.simulated_latency must not be negative")
	}

	switch c.Vision.Provider {
	case "random":
	case "remote":
		if c.Vision.APIKey == "" {
			return fmt.Errorf("vision.api_key (VISION_API_KEY) is required for the remote provider")
		}
	default:
		return fmt.Errorf("unknown vision.provider %q", c.Vision.Provider)
	}
	if c.Vision.Dimensions <= 0 {
		return fmt.Errorf("vision.dimensions must be positive")
	}
	if c.Vision.Concurrency <= 0 {
		return fmt.Errorf("vision.concurrency must be positive")
	}
	return nil
}
