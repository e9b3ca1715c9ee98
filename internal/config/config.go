package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Search    SearchConfig    `mapstructure:"search"`
	AI        AIConfig        `mapstructure:"ai"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Plan      PlanConfig      `mapstructure:"plan"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Timeout   TimeoutConfig   `mapstructure:"timeout"`

	// Runtime flags, set from the command line rather than the file.
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SearchConfig points at the managed search service holding the four
// document indexes (content, plans, profiles, reports).
type SearchConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	APIVersion string `mapstructure:"api_version"`
}

// AIConfig points at the hosted generative-model service. Deployments are
// addressed by name, Azure style.
type AIConfig struct {
	Endpoint            string  `mapstructure:"endpoint"`
	APIKey              string  `mapstructure:"api_key"`
	APIVersion          string  `mapstructure:"api_version"`
	ChatDeployment      string  `mapstructure:"chat_deployment"`
	EmbeddingDeployment string  `mapstructure:"embedding_deployment"`
	ImageDeployment     string  `mapstructure:"image_deployment"`
	Temperature         float64 `mapstructure:"temperature"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioUseSSL   bool   `mapstructure:"minio_use_ssl"`
}

// PlanConfig tunes the generation pipeline.
type PlanConfig struct {
	RetrievalCount     int    `mapstructure:"retrieval_count"`      // content items fetched per plan
	PromptContentLimit int    `mapstructure:"prompt_content_limit"` // items serialized into the prompt
	TrackerBackend     string `mapstructure:"tracker_backend"`      // memory | redis
	TaskTTLMinutes     int    `mapstructure:"task_ttl_minutes"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// TimeoutConfig holds the request deadlines. Plan creation gets a longer
// budget than ordinary reads.
type TimeoutConfig struct {
	DefaultSeconds      int `mapstructure:"default_seconds"`
	PlanCreationSeconds int `mapstructure:"plan_creation_seconds"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("LEARNING_COPILOT")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Search index
	viper.BindEnv("search.endpoint", "SEARCH_ENDPOINT")
	viper.BindEnv("search.api_key", "SEARCH_API_KEY")
	viper.BindEnv("search.api_version", "SEARCH_API_VERSION")

	// Model service
	viper.BindEnv("ai.endpoint", "AI_ENDPOINT")
	viper.BindEnv("ai.api_key", "AI_API_KEY")
	viper.BindEnv("ai.chat_deployment", "AI_CHAT_DEPLOYMENT")
	viper.BindEnv("ai.embedding_deployment", "AI_EMBEDDING_DEPLOYMENT")
	viper.BindEnv("ai.image_deployment", "AI_IMAGE_DEPLOYMENT")

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	viper.SetDefault("search.api_version", "2023-11-01")
	viper.SetDefault("ai.api_version", "2024-02-01")
	viper.SetDefault("ai.temperature", 0.7)
	viper.SetDefault("plan.retrieval_count", 10)
	viper.SetDefault("plan.prompt_content_limit", 10)
	viper.SetDefault("plan.tracker_backend", "memory")
	viper.SetDefault("plan.task_ttl_minutes", 60)
	viper.SetDefault("timeout.default_seconds", 30)
	viper.SetDefault("timeout.plan_creation_seconds", 300)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// Release mode refuses weak JWT secrets.
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}
