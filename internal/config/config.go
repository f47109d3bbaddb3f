package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. TECHNOTES_POSTGRES_HOST
const EnvPrefix = "TECHNOTES_"

// this is a pointer so that if someone attempts to use it before loading it will
// panic and force them to load it first.
// it is also private so that it cannot be modified after loading.
var _loaded *Config

// Config is the main configuration structure
type Config struct {
	Common Common `yaml:"common"`
}

// Load applies defaults, then the config file, then environment variables
func Load() error {
	cfg := defaultConfig

	configFile := os.Getenv(EnvPrefix + "CONFIG_FILE")
	if configFile == "" {
		configFile = "technotes.yaml"
	}

	if err := mergeFile(&cfg, configFile); err != nil {
		log.Printf("Failed to load config file: %v, using defaults", err)
	} else {
		log.Printf("Loaded config from file: %s", configFile)
	}

	if err := applyEnv(&cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	_loaded = &cfg
	return nil
}

// LoadDefault installs the defaults without reading the file or environment
func LoadDefault() {
	cfg := defaultConfig
	_loaded = &cfg
}

// LoadFromFile loads configuration from a YAML file merged over defaults
func LoadFromFile(filename string) error {
	cfg := defaultConfig
	if err := mergeFile(&cfg, filename); err != nil {
		return err
	}
	_loaded = &cfg
	return nil
}

func mergeFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// applyEnv only touches fields whose variable is set
func applyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// Validate rejects values the server cannot start with
func (c *Config) Validate() error {
	switch c.Common.Directory.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("directory.store must be %q or %q, got %q", StorePostgres, StoreMemory, c.Common.Directory.Store)
	}
	if c.Common.Http.Port <= 0 || c.Common.Http.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.Common.Http.Port)
	}
	return nil
}

// set sane defaults for all of the config options. when loading the config from
// the file, any options that are not set will be set to these defaults.
var defaultConfig = Config{
	Common: Common{
		Log: logConfig{
			Level:  "info",
			Format: "json",
		},
		Http: httpConfig{
			Host:           "0.0.0.0",
			Port:           3500,
			MaxRequestSize: 1048576,
			AllowedOrigins: []string{"*"},
		},
		Postgres: postgresConfig{
			User:               "postgres",
			Password:           "postgres",
			Host:               "localhost",
			Port:               5432,
			Database:           "technotes",
			MaxOpenConnections: 10,
		},
		Redis: redisConfig{
			Enabled:  false,
			Host:     "localhost",
			Port:     6379,
			Database: 0,
			TTL:      300,
		},
		Security: securityConfig{
			BcryptCost: 10,
		},
		Directory: directoryConfig{
			Store: StorePostgres,
		},
	},
}

// Supported directory backends
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Common struct {
	Log       logConfig       `yaml:"log" envPrefix:"LOG_"`
	Http      httpConfig      `yaml:"http" envPrefix:"HTTP_"`
	Postgres  postgresConfig  `yaml:"postgres" envPrefix:"POSTGRES_"`
	Redis     redisConfig     `yaml:"redis" envPrefix:"REDIS_"`
	Security  securityConfig  `yaml:"security" envPrefix:"SECURITY_"`
	Directory directoryConfig `yaml:"directory" envPrefix:"DIRECTORY_"`
}

type logConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

type httpConfig struct {
	Host           string   `yaml:"host" env:"HOST"`
	Port           int      `yaml:"port" env:"PORT"`
	MaxRequestSize int64    `yaml:"max_request_size" env:"MAX_REQUEST_SIZE"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
}

func (c httpConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

type postgresConfig struct {
	User               string `yaml:"user" env:"USER"`
	Password           string `yaml:"password" env:"PASSWORD"`
	Host               string `yaml:"host" env:"HOST"`
	Port               int    `yaml:"port" env:"PORT"`
	Database           string `yaml:"database" env:"DATABASE"`
	MaxOpenConnections int    `yaml:"max_open_connections" env:"MAX_OPEN_CONNECTIONS"`
}

func (c postgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

type redisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	Password string `yaml:"password" env:"PASSWORD"`
	Database int    `yaml:"database" env:"DATABASE"`
	TTL      int    `yaml:"ttl_seconds" env:"TTL_SECONDS"` // list cache lifetime
}

func (c redisConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

type securityConfig struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST"`
}

type directoryConfig struct {
	Store          string               `yaml:"store" env:"STORE"`
	BootstrapAdmin bootstrapAdminConfig `yaml:"bootstrap_admin" envPrefix:"BOOTSTRAP_ADMIN_"`
}

// bootstrapAdminConfig is created on first start when the directory is empty
type bootstrapAdminConfig struct {
	Username string `yaml:"username" env:"USERNAME"`
	Password string `yaml:"password" env:"PASSWORD"`
}

// there should be a getter for each top level field in the config struct.
// these getters will panic if the config has not been loaded.

func Logger() logConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Log
}

func Http() httpConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Http
}

func Postgres() postgresConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Postgres
}

func Redis() redisConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Redis
}

func Security() securityConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Security
}

func Directory() directoryConfig {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded.Common.Directory
}

func Get() *Config {
	if _loaded == nil {
		panic("config not loaded - call Load() first")
	}
	return _loaded
}
