package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig selects the persistence backend. Host/Port/... are only
// read by the postgres driver, SQLitePath only by the sqlite driver.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Schema          string        `mapstructure:"schema"`
	SSLMode         string        `mapstructure:"sslmode"`
	SQLitePath      string        `mapstructure:"sqlite_path"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN builds the key/value connection string understood by pgx.
func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.Username, d.Password, d.Database, d.Port, d.SSLMode)
	if d.Schema != "" {
		dsn += " search_path=" + d.Schema
	}
	return dsn
}

// AuthConfig describes how session tokens minted by the identity provider
// are verified.
type AuthConfig struct {
	Secret     string `mapstructure:"secret"`
	CookieName string `mapstructure:"cookie_name"`
	Issuer     string `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// envBindings maps config keys to the environment variables that override
// them. The BLUEPRINT_DB_* names are kept for existing deployments.
var envBindings = map[string]string{
	"server.port":                "PORT",
	"server.allowed_origins":     "CORS_ALLOWED_ORIGINS",
	"server.read_timeout":        "SERVER_READ_TIMEOUT",
	"server.write_timeout":       "SERVER_WRITE_TIMEOUT",
	"server.idle_timeout":        "SERVER_IDLE_TIMEOUT",
	"database.driver":            "DB_DRIVER",
	"database.host":              "BLUEPRINT_DB_HOST",
	"database.port":              "BLUEPRINT_DB_PORT",
	"database.database":          "BLUEPRINT_DB_DATABASE",
	"database.username":          "BLUEPRINT_DB_USERNAME",
	"database.password":          "BLUEPRINT_DB_PASSWORD",
	"database.schema":            "BLUEPRINT_DB_SCHEMA",
	"database.sslmode":           "BLUEPRINT_DB_SSLMODE",
	"database.sqlite_path":       "DB_SQLITE_PATH",
	"database.auto_migrate":      "DB_AUTO_MIGRATE",
	"database.max_idle_conns":    "DB_MAX_IDLE_CONNS",
	"database.max_open_conns":    "DB_MAX_OPEN_CONNS",
	"database.conn_max_lifetime": "DB_CONN_MAX_LIFETIME",
	"auth.secret":                "AUTH_SECRET",
	"auth.cookie_name":           "AUTH_COOKIE_NAME",
	"auth.issuer":                "AUTH_ISSUER",
	"log.level":                  "LOG_LEVEL",
	"log.format":                 "LOG_FORMAT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	// Same-origin only unless origins are listed explicitly.
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", time.Minute)

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.database", "tudu")
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.schema", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "tudu.db")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.cookie_name", "session")
	v.SetDefault("auth.issuer", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads configuration from defaults, the optional config file at path,
// and environment variables, in increasing priority. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	for _, origin := range c.Server.AllowedOrigins {
		switch strings.TrimSpace(origin) {
		case "*", "http://*", "https://*":
			return fmt.Errorf("wildcard CORS origin %q is not allowed with cookie sessions, list origins explicitly", origin)
		}
	}
	if c.Auth.Secret == "" {
		return errors.New("AUTH_SECRET must be set")
	}
	if c.Auth.CookieName == "" {
		return errors.New("auth cookie name must not be empty")
	}
	return nil
}
