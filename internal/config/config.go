// Package config holds server configuration sourced from flags and environment.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/urfave/cli/v2"

	"github.com/and161185/notes-keeper/internal/errs"
	"github.com/and161185/notes-keeper/internal/token"
)

// Config is read once at startup and treated as immutable afterwards.
type Config struct {
	HTTPAddr          string
	CORSAllowedOrigin string
	Dev               bool

	DB    DB
	Token Token
}

// DB selects and addresses the storage backend.
type DB struct {
	Driver   string // postgres | sqlite
	DSN      string // overrides the parts below when set
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

// Token configures the session token issuer.
type Token struct {
	Secret   string
	Issuer   string
	Audience string
}

// Defaults returns a Config populated with default values.
func Defaults() Config {
	return Config{
		HTTPAddr:          ":8080",
		CORSAllowedOrigin: "http://localhost:3000",
		DB: DB{
			Driver:  "postgres",
			Host:    "localhost",
			Port:    "5432",
			Name:    "notes",
			User:    "notes",
			SSLMode: "disable",
		},
		Token: Token{
			Issuer:   "NotesAppBackend",
			Audience: "NotesAppBackendUsers",
		},
	}
}

// Flags binds cfg fields to command-line flags with environment fallbacks.
// Values already in cfg act as defaults.
func Flags(cfg *Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "http-addr", Usage: "listen address", EnvVars: []string{"HTTP_ADDR"}, Value: cfg.HTTPAddr, Destination: &cfg.HTTPAddr},
		&cli.StringFlag{Name: "cors-origin", Usage: "allowed CORS origin", EnvVars: []string{"CORS_ALLOWED_ORIGIN"}, Value: cfg.CORSAllowedOrigin, Destination: &cfg.CORSAllowedOrigin},
		&cli.BoolFlag{Name: "dev", Usage: "development logging", EnvVars: []string{"DEV"}, Value: cfg.Dev, Destination: &cfg.Dev},

		&cli.StringFlag{Name: "db-driver", Usage: "postgres or sqlite", EnvVars: []string{"DB_DRIVER"}, Value: cfg.DB.Driver, Destination: &cfg.DB.Driver},
		&cli.StringFlag{Name: "db-dsn", Usage: "full connection string", EnvVars: []string{"DATABASE_DSN"}, Value: cfg.DB.DSN, Destination: &cfg.DB.DSN},
		&cli.StringFlag{Name: "db-host", EnvVars: []string{"DB_HOST"}, Value: cfg.DB.Host, Destination: &cfg.DB.Host},
		&cli.StringFlag{Name: "db-port", EnvVars: []string{"DB_PORT"}, Value: cfg.DB.Port, Destination: &cfg.DB.Port},
		&cli.StringFlag{Name: "db-name", EnvVars: []string{"DB_NAME"}, Value: cfg.DB.Name, Destination: &cfg.DB.Name},
		&cli.StringFlag{Name: "db-user", EnvVars: []string{"DB_USER"}, Value: cfg.DB.User, Destination: &cfg.DB.User},
		&cli.StringFlag{Name: "db-password", EnvVars: []string{"DB_PASSWORD"}, Value: cfg.DB.Password, Destination: &cfg.DB.Password},
		&cli.StringFlag{Name: "db-sslmode", EnvVars: []string{"DB_SSLMODE"}, Value: cfg.DB.SSLMode, Destination: &cfg.DB.SSLMode},

		&cli.StringFlag{Name: "jwt-secret", Usage: "token signing secret (>= 16 bytes)", EnvVars: []string{"JWT_SECRET"}, Value: cfg.Token.Secret, Destination: &cfg.Token.Secret},
		&cli.StringFlag{Name: "jwt-issuer", EnvVars: []string{"JWT_ISSUER"}, Value: cfg.Token.Issuer, Destination: &cfg.Token.Issuer},
		&cli.StringFlag{Name: "jwt-audience", EnvVars: []string{"JWT_AUDIENCE"}, Value: cfg.Token.Audience, Destination: &cfg.Token.Audience},
	}
}

// Validate normalizes cfg and reports the first unusable setting as *errs.ConfigError.
func (c *Config) Validate() error {
	c.Token.Secret = strings.TrimSpace(c.Token.Secret)
	switch {
	case c.Token.Secret == "":
		return &errs.ConfigError{Key: "JWT_SECRET", Reason: "is required"}
	case len(c.Token.Secret) < token.MinSecretLen:
		return &errs.ConfigError{Key: "JWT_SECRET", Reason: fmt.Sprintf("must be at least %d bytes", token.MinSecretLen)}
	case strings.TrimSpace(c.Token.Issuer) == "":
		return &errs.ConfigError{Key: "JWT_ISSUER", Reason: "is required"}
	case strings.TrimSpace(c.Token.Audience) == "":
		return &errs.ConfigError{Key: "JWT_AUDIENCE", Reason: "is required"}
	}
	return c.ValidateDB()
}

// ValidateDB checks only the storage settings; used by commands that do not issue tokens.
func (c *Config) ValidateDB() error {
	switch c.DB.Driver {
	case "postgres":
		if c.DB.DSN == "" && (c.DB.Host == "" || c.DB.Name == "") {
			return &errs.ConfigError{Key: "DB_HOST", Reason: "host and database name are required without DATABASE_DSN"}
		}
	case "sqlite":
		if c.DB.DSN == "" {
			return &errs.ConfigError{Key: "DATABASE_DSN", Reason: "is required for sqlite"}
		}
	default:
		return &errs.ConfigError{Key: "DB_DRIVER", Reason: fmt.Sprintf("unsupported value %q", c.DB.Driver)}
	}
	return nil
}

// TokenConfig converts the token section for token.NewManager.
func (c *Config) TokenConfig() token.Config {
	return token.Config{
		Secret:   []byte(c.Token.Secret),
		Issuer:   c.Token.Issuer,
		Audience: c.Token.Audience,
	}
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DB.DSN != "" || c.DB.Driver != "postgres" {
		return c.DB.DSN
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.DB.Host, c.DB.Port),
		Path:   "/" + c.DB.Name,
	}
	if c.DB.Password != "" {
		u.User = url.UserPassword(c.DB.User, c.DB.Password)
	} else if c.DB.User != "" {
		u.User = url.User(c.DB.User)
	}
	if c.DB.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.DB.SSLMode}}.Encode()
	}
	return u.String()
}

// SafeDSN describes the storage target without credentials, for logging.
func (c *Config) SafeDSN() string {
	dsn := c.DSN()
	if c.DB.Driver != "postgres" {
		// sqlite DSNs are file paths; drop query options.
		path, _, _ := strings.Cut(dsn, "?")
		return "sqlite " + path
	}
	pc, err := pgconn.ParseConfig(dsn)
	if err != nil {
		return "postgres (unparseable dsn)"
	}
	return fmt.Sprintf("postgres host=%s port=%d db=%s", pc.Host, pc.Port, pc.Database)
}
