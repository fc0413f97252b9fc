package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// CatalogConfig configures the remote exercise catalog. An empty APIKey
// disables it and only the bundled catalog is used.
type CatalogConfig struct {
	APIKey            string   `yaml:"api_key"`
	Host              string   `yaml:"host"`
	BaseURL           string   `yaml:"base_url"`
	CacheTTL          Duration `yaml:"cache_ttl"`
	SweepInterval     Duration `yaml:"sweep_interval"`
	CacheSizeMB       int      `yaml:"cache_size_mb"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	Burst             int      `yaml:"burst"`
	Timeout           Duration `yaml:"timeout"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Duration is a time.Duration written as a string such as "50m".
type Duration time.Duration

// UnmarshalYAML parses the value with time.ParseDuration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// D returns the value as a time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// CacheSizeBytes returns the cache size in bytes.
func (c CatalogConfig) CacheSizeBytes() int {
	return c.CacheSizeMB * 1024 * 1024
}

// Default returns the configuration used for fields a file leaves unset.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Host: "127.0.0.1", Port: 8080},
		Database: DatabaseConfig{Driver: DriverSQLite, Path: "gymapp.db"},
		Catalog: CatalogConfig{
			CacheTTL:          Duration(50 * time.Minute),
			SweepInterval:     Duration(10 * time.Minute),
			CacheSizeMB:       16,
			RequestsPerSecond: 2,
			Burst:             5,
			Timeout:           Duration(10 * time.Second),
		},
		Tailscale: TailscaleConfig{Hostname: "gymapp", StateDir: "tsnet-state"},
		Metrics:   MetricsConfig{Enabled: true},
	}
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. Env vars use the prefix GYMAPP_:
//
//	GYMAPP_SERVER_HOST, GYMAPP_SERVER_PORT,
//	GYMAPP_DB_DRIVER, GYMAPP_DB_PATH,
//	GYMAPP_DB_HOST, GYMAPP_DB_PORT, GYMAPP_DB_NAME,
//	GYMAPP_DB_USER, GYMAPP_DB_PASSWORD, GYMAPP_DB_SSLMODE,
//	GYMAPP_AUTH_API_KEY, GYMAPP_CATALOG_API_KEY, GYMAPP_CATALOG_BASE_URL,
//	GYMAPP_TAILSCALE_ENABLED, GYMAPP_TAILSCALE_HOSTNAME
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("GYMAPP_SERVER_HOST", &cfg.Server.Host)
	setInt("GYMAPP_SERVER_PORT", &cfg.Server.Port)
	setString("GYMAPP_DB_DRIVER", &cfg.Database.Driver)
	setString("GYMAPP_DB_PATH", &cfg.Database.Path)
	setString("GYMAPP_DB_HOST", &cfg.Database.Host)
	setInt("GYMAPP_DB_PORT", &cfg.Database.Port)
	setString("GYMAPP_DB_NAME", &cfg.Database.Name)
	setString("GYMAPP_DB_USER", &cfg.Database.User)
	setString("GYMAPP_DB_PASSWORD", &cfg.Database.Password)
	setString("GYMAPP_DB_SSLMODE", &cfg.Database.SSLMode)
	setString("GYMAPP_AUTH_API_KEY", &cfg.Auth.APIKey)
	setString("GYMAPP_CATALOG_API_KEY", &cfg.Catalog.APIKey)
	setString("GYMAPP_CATALOG_BASE_URL", &cfg.Catalog.BaseURL)
	setString("GYMAPP_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)
	if v := os.Getenv("GYMAPP_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	default:
		return fmt.Errorf("database.driver %q is not one of %s, %s", c.Database.Driver, DriverSQLite, DriverPostgres)
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Catalog.CacheTTL <= 0 {
		return fmt.Errorf("catalog.cache_ttl must be positive")
	}
	if c.Catalog.SweepInterval <= 0 {
		return fmt.Errorf("catalog.sweep_interval must be positive")
	}
	if c.Catalog.CacheSizeMB <= 0 {
		return fmt.Errorf("catalog.cache_size_mb must be positive")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
