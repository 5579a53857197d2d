// Package config reads server settings from flags, the environment and an optional .env file.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultSource       = "./data/sublimations.json"
	DefaultFetchTimeout = 10 * time.Second
)

// Config holds the server settings
type Config struct {
	Port           string
	DBPath         string
	Source         string // sublimations JSON, URL or file path
	ReferenceURL   string // external page pattern, {id} is replaced by the item id
	FetchTimeout   time.Duration
	AllowedOrigins []string
	StaticDir      string
}

// Load reads .env when present, then parses args with env-backed defaults.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()
	return Parse(args)
}

// Parse builds a Config from args; every flag defaults to its environment variable.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg := &Config{}
	var origins, timeout string

	fs.StringVar(&cfg.Port, "port", getEnv("PORT", "8080"), "Server port")
	fs.StringVar(&cfg.DBPath, "db", getEnv("DB_PATH", "./wakfudex.db"), "SQLite database path")
	fs.StringVar(&cfg.Source, "source", getEnv("SUBLIMATIONS_SOURCE", DefaultSource), "Sublimations JSON URL or file")
	fs.StringVar(&cfg.ReferenceURL, "reference-url", getEnv("REFERENCE_URL", ""), "Reference page pattern with {id}")
	fs.StringVar(&timeout, "fetch-timeout", getEnv("FETCH_TIMEOUT", DefaultFetchTimeout.String()), "HTTP fetch timeout, 0 disables")
	fs.StringVar(&origins, "origins", getEnv("ALLOWED_ORIGINS", "*"), "Comma-separated CORS origins for /api")
	fs.StringVar(&cfg.StaticDir, "static", getEnv("STATIC_DIR", "./static"), "Static files directory")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	d, err := time.ParseDuration(timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid fetch timeout %q: %w", timeout, err)
	}
	if d < 0 {
		return nil, fmt.Errorf("invalid fetch timeout %q: negative", timeout)
	}
	cfg.FetchTimeout = d

	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
