// Package config holds the application configuration: durable-store
// location and backend, stroke retention, persistence debounce, and the
// HTTP/cookie settings. Values come from environment variables layered over
// defaults; main loads a .env file beforehand so deployments can keep them
// in one place.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// StoreFile persists sessions to a single JSON file (the default).
	StoreFile = "file"
	// StoreSQLite persists sessions to a SQLite database file.
	StoreSQLite = "sqlite"
)

// Config is the full application configuration.
type Config struct {
	Host string
	Port int

	// DataDir is the directory holding durable state.
	DataDir string
	// SessionsFile is the durable store location (JSON file or SQLite
	// database, depending on StoreBackend).
	SessionsFile string
	// StoreBackend selects the durable store implementation.
	StoreBackend string

	// StrokeLimit bounds distinct strokes retained per session; zero
	// disables the bound.
	StrokeLimit int
	// PersistDebounce is the window in which repeated saves coalesce into
	// one durable write.
	PersistDebounce time.Duration

	// StaticDir is where the client assets live.
	StaticDir string
	// CookieName is the session id cookie.
	CookieName string
	// CookieMaxAge is the session cookie lifetime.
	CookieMaxAge time.Duration
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Host:            "localhost",
		Port:            3000,
		DataDir:         "data",
		SessionsFile:    "", // derived from DataDir unless set explicitly
		StoreBackend:    StoreFile,
		StrokeLimit:     300,
		PersistDebounce: 100 * time.Millisecond,
		StaticDir:       "frontend",
		CookieName:      "sketchboard.sid",
		CookieMaxAge:    30 * 24 * time.Hour,
	}
}

// Load builds the configuration from environment variables over defaults
// and validates it.
func Load() (*Config, error) {
	c := Default()

	if v := os.Getenv("HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("SESSIONS_FILE"); v != "" {
		c.SessionsFile = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		c.StoreBackend = v
	}
	if v := os.Getenv("STROKE_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid STROKE_LIMIT %q: %w", v, err)
		}
		c.StrokeLimit = limit
	}
	if v := os.Getenv("PERSIST_DEBOUNCE_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PERSIST_DEBOUNCE_MS %q: %w", v, err)
		}
		c.PersistDebounce = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		c.StaticDir = v
	}
	if v := os.Getenv("SESSION_COOKIE"); v != "" {
		c.CookieName = v
	}
	if v := os.Getenv("SESSION_COOKIE_MAX_AGE"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_COOKIE_MAX_AGE %q: %w", v, err)
		}
		c.CookieMaxAge = time.Duration(secs) * time.Second
	}

	c.applyDerived()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyDerived fills values computed from others.
func (c *Config) applyDerived() {
	if c.SessionsFile == "" {
		name := "sessions.json"
		if c.StoreBackend == StoreSQLite {
			name = "sessions.db"
		}
		c.SessionsFile = filepath.Join(c.DataDir, name)
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.StoreBackend != StoreFile && c.StoreBackend != StoreSQLite {
		return fmt.Errorf("unknown store backend %q (want %q or %q)", c.StoreBackend, StoreFile, StoreSQLite)
	}
	if c.SessionsFile == "" {
		return fmt.Errorf("sessions file path is required")
	}
	if c.StrokeLimit < 0 {
		return fmt.Errorf("stroke limit must not be negative, got %d", c.StrokeLimit)
	}
	if c.PersistDebounce <= 0 {
		return fmt.Errorf("persist debounce must be positive, got %v", c.PersistDebounce)
	}
	if c.CookieName == "" {
		return fmt.Errorf("cookie name is required")
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
