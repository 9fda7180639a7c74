package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	c := Default()
	c.applyDerived()

	if c.StrokeLimit != 300 {
		t.Errorf("expected default stroke limit 300, got %d", c.StrokeLimit)
	}
	if c.PersistDebounce != 100*time.Millisecond {
		t.Errorf("expected default debounce 100ms, got %v", c.PersistDebounce)
	}
	if c.StoreBackend != StoreFile {
		t.Errorf("expected file backend by default, got %q", c.StoreBackend)
	}
	if c.SessionsFile != filepath.Join("data", "sessions.json") {
		t.Errorf("unexpected derived sessions file: %q", c.SessionsFile)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DATA_DIR", "/var/lib/sketchboard")
	t.Setenv("STROKE_LIMIT", "50")
	t.Setenv("PERSIST_DEBOUNCE_MS", "250")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SESSION_COOKIE_MAX_AGE", "3600")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Port != 8081 {
		t.Errorf("expected port 8081, got %d", c.Port)
	}
	if c.StrokeLimit != 50 {
		t.Errorf("expected stroke limit 50, got %d", c.StrokeLimit)
	}
	if c.PersistDebounce != 250*time.Millisecond {
		t.Errorf("expected debounce 250ms, got %v", c.PersistDebounce)
	}
	if c.SessionsFile != filepath.Join("/var/lib/sketchboard", "sessions.db") {
		t.Errorf("expected sqlite file under data dir, got %q", c.SessionsFile)
	}
	if c.CookieMaxAge != time.Hour {
		t.Errorf("expected cookie max age 1h, got %v", c.CookieMaxAge)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", "PORT", "abc"},
		{"port out of range", "PORT", "70000"},
		{"non-numeric stroke limit", "STROKE_LIMIT", "many"},
		{"negative stroke limit", "STROKE_LIMIT", "-1"},
		{"unknown backend", "STORE_BACKEND", "redis"},
		{"zero debounce", "PERSIST_DEBOUNCE_MS", "0"},
		{"non-numeric cookie max age", "SESSION_COOKIE_MAX_AGE", "forever"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected Load to reject %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestStrokeLimitZeroMeansUnbounded(t *testing.T) {
	t.Setenv("STROKE_LIMIT", "0")
	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.StrokeLimit != 0 {
		t.Errorf("expected stroke limit 0 to be accepted, got %d", c.StrokeLimit)
	}
}
