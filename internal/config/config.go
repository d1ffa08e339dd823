package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the catalog API. Values come from
// the environment (optionally seeded by a .env file) with sensible
// defaults for local development.
type Config struct {
	Addr string `mapstructure:"addr"`

	MongoURI         string        `mapstructure:"mongo_uri"`
	MongoDatabase    string        `mapstructure:"mongo_database"`
	StoreCollection  string        `mapstructure:"store_collection"`
	ReviewCollection string        `mapstructure:"review_collection"`
	UserCollection   string        `mapstructure:"user_collection"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout"`

	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	JWTSecret   string `mapstructure:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`

	PageSize              int     `mapstructure:"page_size"`
	NearMaxDistanceMeters float64 `mapstructure:"near_max_distance_meters"`
	NearLimit             int     `mapstructure:"near_limit"`
	SearchLimit           int     `mapstructure:"search_limit"`
	TopLimit              int     `mapstructure:"top_limit"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present so local runs need no exported
// variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_database", "tastemap")
	v.SetDefault("store_collection", "stores")
	v.SetDefault("review_collection", "reviews")
	v.SetDefault("user_collection", "users")
	v.SetDefault("connect_timeout", "10s")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cache_ttl", "5m")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("jwt_issuer", "")
	v.SetDefault("jwt_audience", "")

	v.SetDefault("allowed_origins", []string{"*"})

	v.SetDefault("page_size", 4)
	v.SetDefault("near_max_distance_meters", 16600)
	v.SetDefault("near_limit", 10)
	v.SetDefault("search_limit", 5)
	v.SetDefault("top_limit", 10)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.PageSize < 1 {
		return errors.New("page_size must be positive")
	}
	return nil
}
