// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"bodymetrics/internal/domain"

	"github.com/joho/godotenv"
)

// History storage backends.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// OIDC holds the optional single sign-on provider settings.
type OIDC struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether an issuer is configured.
func (o OIDC) Enabled() bool { return o.Issuer != "" }

// Config is the complete runtime configuration.
type Config struct {
	Addr          string
	WebDir        string
	HistoryStore  string
	HistoryFile   string
	DatabaseURL   string
	ActivityLevel domain.ActivityLevel
	LogFormat     string
	LogLevel      string

	OwnerUsername     string
	OwnerPasswordHash string
	OwnerEmail        string
	OIDC              OIDC
	DisableAuth       bool
}

// Load reads a .env file when present, then the environment, applying
// defaults for anything unset.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Addr:              env("ADDR", ":8080"),
		WebDir:            env("WEB_DIR", ""),
		HistoryStore:      strings.ToLower(env("HISTORY_STORE", StoreFile)),
		HistoryFile:       env("HISTORY_FILE", "bmi_history.json"),
		DatabaseURL:       env("DATABASE_URL", ""),
		LogFormat:         env("LOG_FORMAT", "text"),
		LogLevel:          env("LOG_LEVEL", "info"),
		OwnerUsername:     env("OWNER_USERNAME", "owner"),
		OwnerPasswordHash: env("OWNER_PASSWORD_HASH", ""),
		OwnerEmail:        env("OWNER_EMAIL", ""),
		OIDC: OIDC{
			Issuer:       env("OIDC_ISSUER", ""),
			ClientID:     env("OIDC_CLIENT_ID", ""),
			ClientSecret: env("OIDC_CLIENT_SECRET", ""),
			RedirectURL:  env("OIDC_REDIRECT_URL", ""),
		},
	}

	level, err := domain.ParseActivityLevel(env("ACTIVITY_LEVEL", ""))
	if err != nil {
		return Config{}, fmt.Errorf("ACTIVITY_LEVEL: %w", err)
	}
	cfg.ActivityLevel = level

	if v := env("DISABLE_AUTH", ""); v != "" {
		cfg.DisableAuth, err = strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("DISABLE_AUTH: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.HistoryStore {
	case StoreFile:
		if c.HistoryFile == "" {
			return errors.New("HISTORY_FILE is required for the file store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("HISTORY_STORE: unknown backend %q", c.HistoryStore)
	}

	if c.OIDC.Enabled() {
		if c.OIDC.ClientID == "" || c.OIDC.RedirectURL == "" {
			return errors.New("OIDC_CLIENT_ID and OIDC_REDIRECT_URL are required with OIDC_ISSUER")
		}
		if c.OwnerEmail == "" {
			return errors.New("OWNER_EMAIL is required with OIDC_ISSUER")
		}
	}
	if !c.DisableAuth && c.OwnerPasswordHash == "" && !c.OIDC.Enabled() {
		return errors.New("set OWNER_PASSWORD_HASH or OIDC_ISSUER, or DISABLE_AUTH=true")
	}
	return nil
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
