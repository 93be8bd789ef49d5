// Package config loads the YAML runtime configuration with defaults and
// light normalization.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort     = 2350
	defaultEnv      = "development"
	defaultMongoURI = "mongodb://localhost:27017"
	defaultMongoDB  = "santiyer"
	defaultRedisURL = "redis://localhost:6379/0"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int         `yaml:"port"`
	Env            string      `yaml:"env"` // "development" | "production"
	AllowedOrigins []string    `yaml:"allowed_origins"`
	JWTSecret      string      `yaml:"jwt_secret"`
	Mongo          MongoConfig `yaml:"mongo"`
	RedisURL       string      `yaml:"redis_url"`
	S3             S3Config    `yaml:"s3"`
	Media          MediaConfig `yaml:"media"`
	Cache          CacheConfig `yaml:"cache"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type S3Config struct {
	Endpoint      string `yaml:"endpoint"`
	Region        string `yaml:"region"`
	Bucket        string `yaml:"bucket"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	PublicBaseURL string `yaml:"public_base_url"`
	PathStyle     bool   `yaml:"path_style"`
}

type MediaConfig struct {
	MaxSizeMB        float64 `yaml:"max_size_mb"`
	MaxWidthOrHeight int     `yaml:"max_dimension"`
}

type CacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

// Load reads and normalizes the config file. A missing file yields the
// defaults, so a bare development start works without any config.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := &AppConfig{}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		dec := yaml.NewDecoder(strings.NewReader(string(raw)))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case os.IsNotExist(err) && path == DefaultConfigPath:
		// defaults only
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

func (c *AppConfig) normalize() {
	if c.Port <= 0 || c.Port > 65535 {
		c.Port = defaultPort
	}
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env == "" {
		c.Env = defaultEnv
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = defaultMongoURI
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = defaultMongoDB
	}
	if c.RedisURL == "" {
		c.RedisURL = defaultRedisURL
	}
	if c.Media.MaxSizeMB <= 0 {
		c.Media.MaxSizeMB = 1
	}
	if c.Media.MaxWidthOrHeight <= 0 {
		c.Media.MaxWidthOrHeight = 1920
	}
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = 15
	}

	origins := make([]string, 0, len(c.AllowedOrigins))
	for _, o := range c.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, strings.TrimRight(o, "/"))
		}
	}
	c.AllowedOrigins = origins
}

// IsProduction reports whether the app runs with production settings.
func (c *AppConfig) IsProduction() bool { return c.Env == "production" }

// Addr is the listen address derived from Port.
func (c *AppConfig) Addr() string { return fmt.Sprintf(":%d", c.Port) }
