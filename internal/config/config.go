package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	Env            string   `yaml:"env"`
	APIPrefix      string   `yaml:"api_prefix"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver"` // postgres, mysql, sqlite
	DSN          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	AutoMigrate  bool   `yaml:"auto_migrate"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	Issuer     string `yaml:"issuer"`
	Audience   string `yaml:"audience"`
	TTLMinutes int    `yaml:"ttl_minutes"`
}

type StorageConfig struct {
	Type      string `yaml:"type"`      // database, local, s3
	BasePath  string `yaml:"base_path"` // For local storage
	Bucket    string `yaml:"bucket"`    // For S3
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"` // custom S3-compatible endpoint
}

type ImagesConfig struct {
	MaxSize           int64    `yaml:"max_size"`
	AllowedTypes      []string `yaml:"allowed_types"`
	MentorPlaceholder string   `yaml:"mentor_placeholder"`
	MenteePlaceholder string   `yaml:"mentee_placeholder"`
	CacheMaxAge       int      `yaml:"cache_max_age"` // seconds
}

type RateLimitConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Requests      int           `yaml:"requests"`
	Window        time.Duration `yaml:"window"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Storage   StorageConfig   `yaml:"storage"`
	Images    ImagesConfig    `yaml:"images"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

const defaultConfigPath = "config/config.yaml"

var ErrMissingJWTSecret = errors.New("jwt secret must be set outside development")

// Load собирает конфигурацию: .env -> YAML (CONFIG_PATH) -> переменные окружения -> значения по умолчанию.
func Load() (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	cfg := &Config{}

	configPath := os.Getenv("CONFIG_PATH")
	explicit := configPath != ""
	if !explicit {
		configPath = defaultConfigPath
	}

	if err := loadFile(cfg, configPath); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Host, "SERVER_HOST")
	setString(&cfg.Server.Env, "SERVER_ENV")
	setString(&cfg.Server.APIPrefix, "API_PREFIX")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Database.DSN, "DATABASE_URL")

	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.JWT.Issuer, "JWT_ISSUER")
	setString(&cfg.JWT.Audience, "JWT_AUDIENCE")

	setString(&cfg.Storage.Type, "STORAGE_TYPE")
	setString(&cfg.Storage.BasePath, "STORAGE_BASE_PATH")
	setString(&cfg.Storage.Bucket, "STORAGE_BUCKET")
	setString(&cfg.Storage.Region, "STORAGE_REGION")
	setString(&cfg.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "STORAGE_SECRET_KEY")
	setString(&cfg.Storage.Endpoint, "STORAGE_ENDPOINT")

	setString(&cfg.RateLimit.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RateLimit.RedisPassword, "REDIS_PASSWORD")

	ints := []struct {
		dst *int
		key string
	}{
		{&cfg.Server.Port, "SERVER_PORT"},
		{&cfg.Database.MaxOpenConns, "DATABASE_MAX_OPEN_CONNS"},
		{&cfg.JWT.TTLMinutes, "JWT_TTL_MINUTES"},
		{&cfg.RateLimit.Requests, "RATE_LIMIT_REQUESTS"},
		{&cfg.RateLimit.RedisDB, "REDIS_DB"},
	}
	for _, item := range ints {
		if err := setInt(item.dst, item.key); err != nil {
			return err
		}
	}

	for key, dst := range map[string]*bool{
		"DATABASE_AUTO_MIGRATE": &cfg.Database.AutoMigrate,
		"RATE_LIMIT_ENABLED":    &cfg.RateLimit.Enabled,
	} {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = b
		}
	}

	if v := os.Getenv("RATE_LIMIT_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
		}
		cfg.RateLimit.Window = d
	}
	return nil
}

// ApplyDefaults заполняет пустые поля значениями по умолчанию.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3001
	}
	if c.Server.Env == "" {
		c.Server.Env = "development"
	}
	if c.Server.APIPrefix == "" {
		c.Server.APIPrefix = "/api"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}

	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "mentor-mentee-app"
	}
	if c.JWT.Audience == "" {
		c.JWT.Audience = "mentor-mentee-app"
	}
	if c.JWT.TTLMinutes == 0 {
		c.JWT.TTLMinutes = 60
	}
	if c.JWT.Secret == "" && c.IsDevelopment() {
		c.JWT.Secret = "dev-secret-change-me"
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "database"
	}
	if c.Storage.BasePath == "" {
		c.Storage.BasePath = "./uploads"
	}

	if c.Images.MaxSize == 0 {
		c.Images.MaxSize = 1 << 20
	}
	if len(c.Images.AllowedTypes) == 0 {
		c.Images.AllowedTypes = []string{"image/jpeg", "image/png"}
	}
	if c.Images.MentorPlaceholder == "" {
		c.Images.MentorPlaceholder = "https://placehold.co/500x500.jpg?text=MENTOR"
	}
	if c.Images.MenteePlaceholder == "" {
		c.Images.MenteePlaceholder = "https://placehold.co/500x500.jpg?text=MENTEE"
	}
	if c.Images.CacheMaxAge == 0 {
		c.Images.CacheMaxAge = 3600
	}

	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 100
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = 15 * time.Minute
	}
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return ErrMissingJWTSecret
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Storage.Type {
	case "database", "local":
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("storage.bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type %q", c.Storage.Type)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.TTLMinutes) * time.Minute
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
