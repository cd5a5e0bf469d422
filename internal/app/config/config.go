package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

var drivers = []string{DriverMongo, DriverPostgres, DriverRedis, DriverMemory}

type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
	CORS   CORSConfig   `yaml:"cors"`
	DNS    DNSConfig    `yaml:"dns"`
	GeoIP  GeoIPConfig  `yaml:"geoip"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"             env:"HOST"                    env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"PORT"                    env-default:"3001"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type StoreConfig struct {
	Driver          string `yaml:"driver"           env:"STORE_DRIVER"     env-default:"mongo"`
	MongoURI        string `yaml:"mongo_uri"        env:"MONGO_URI"        env-default:"mongodb://127.0.0.1:27017/ipdb"`
	MongoCollection string `yaml:"mongo_collection" env:"MONGO_COLLECTION" env-default:"ipentries"`
	PostgresDSN     string `yaml:"postgres_dsn"     env:"POSTGRES_DSN"     env-default:"postgres://localhost:5432/ipdb?sslmode=disable"`
	RedisURL        string `yaml:"redis_url"        env:"REDIS_URL"        env-default:"redis://127.0.0.1:6379/0"`
	RedisKey        string `yaml:"redis_key"        env:"REDIS_KEY"        env-default:"ipentries"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	AllowedMethods string `yaml:"allowed_methods" env:"CORS_ALLOWED_METHODS" env-default:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders string `yaml:"allowed_headers" env:"CORS_ALLOWED_HEADERS" env-default:"Content-Type"`
}

type DNSConfig struct {
	ResolvConf string        `yaml:"resolv_conf" env:"DNS_RESOLV_CONF" env-default:"/etc/resolv.conf"`
	Server     string        `yaml:"server"      env:"DNS_SERVER"`
	Timeout    time.Duration `yaml:"timeout"     env:"DNS_TIMEOUT"     env-default:"2s"`
}

type GeoIPConfig struct {
	DBPath string `yaml:"db_path" env:"GEOIP_DB_PATH"`
}

// Load reads an optional .env file, then a YAML file named by CONFIG_PATH if
// set, then the environment. Environment values win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load: error reading .env: %w", err)
	}

	var cfg Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("load: error reading %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("load: error reading env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}

	if !slices.Contains(drivers, c.Store.Driver) {
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}

	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.MongoURI == "" || c.Store.MongoCollection == "" {
			errs = append(errs, errors.New("mongo driver requires MONGO_URI and MONGO_COLLECTION"))
		}
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			errs = append(errs, errors.New("postgres driver requires POSTGRES_DSN"))
		}
	case DriverRedis:
		if c.Store.RedisURL == "" || c.Store.RedisKey == "" {
			errs = append(errs, errors.New("redis driver requires REDIS_URL and REDIS_KEY"))
		}
	}

	if c.DNS.Timeout <= 0 {
		errs = append(errs, errors.New("dns timeout must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validate: %w", errors.Join(errs...))
	}
	return nil
}
