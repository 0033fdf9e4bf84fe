package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	EnvHTTPAddr, EnvDBPath, EnvWeatherAPIKey, EnvWeatherBaseURL, EnvWeatherTimeout,
	EnvCacheTTL, EnvTimezone, EnvWeekStart, EnvLocale, EnvConfigFile,
}

// clearEnv blanks every variable Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPAddr != ":8080" || cfg.DBPath != "calendar.db" {
			t.Fatalf("unexpected defaults: %+v", cfg)
		}
		if cfg.WeatherTimeout != 10*time.Second || cfg.CacheTTL != 5*time.Minute {
			t.Fatalf("unexpected default durations: %s / %s", cfg.WeatherTimeout, cfg.CacheTTL)
		}
		if cfg.Location != time.UTC || cfg.WeekStart != time.Monday || cfg.Locale != "es" {
			t.Fatalf("unexpected calendar defaults: %+v", cfg)
		}
		if err := cfg.RequireWeather(); err == nil || !strings.Contains(err.Error(), EnvWeatherAPIKey) {
			t.Fatalf("expected missing API key to be reported, got %v", err)
		}
	})

	t.Run("parses every variable", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvHTTPAddr, "127.0.0.1:9090")
		t.Setenv(EnvDBPath, "/tmp/calendar.db")
		t.Setenv(EnvWeatherAPIKey, "key")
		t.Setenv(EnvWeatherBaseURL, "https://weather.example.com/v1/")
		t.Setenv(EnvWeatherTimeout, "3s")
		t.Setenv(EnvCacheTTL, "1m")
		t.Setenv(EnvTimezone, "Europe/Madrid")
		t.Setenv(EnvWeekStart, "Sunday")
		t.Setenv(EnvLocale, "EN")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.WeatherBaseURL != "https://weather.example.com/v1" {
			t.Fatalf("expected trailing slash to be trimmed, got %q", cfg.WeatherBaseURL)
		}
		if cfg.WeatherTimeout != 3*time.Second || cfg.CacheTTL != time.Minute {
			t.Fatalf("unexpected durations: %s / %s", cfg.WeatherTimeout, cfg.CacheTTL)
		}
		if cfg.Location.String() != "Europe/Madrid" || cfg.WeekStart != time.Sunday || cfg.Locale != "en" {
			t.Fatalf("unexpected calendar settings: %+v", cfg)
		}
		if err := cfg.RequireWeather(); err != nil {
			t.Fatalf("RequireWeather returned error: %v", err)
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvWeatherTimeout, "soon")
		t.Setenv(EnvTimezone, "Mars/Olympus")
		t.Setenv(EnvWeekStart, "friday")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "valores de configuración no válidos: CALENDAR_WEATHER_TIMEOUT, CALENDAR_TIMEZONE, CALENDAR_WEEK_START"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}

func TestLoader_ConfigFile(t *testing.T) {

	writeFile := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "calendar.yaml")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
		return path
	}

	t.Run("environment overrides file values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvConfigFile, writeFile(t, strings.Join([]string{
			"http_addr: \":7070\"",
			"db_path: /var/lib/calendar.db",
			"weather:",
			"  api_key: from-file",
			"  timeout: 2s",
			"locale: en",
		}, "\n")))
		t.Setenv(EnvLocale, "es")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPAddr != ":7070" || cfg.DBPath != "/var/lib/calendar.db" || cfg.WeatherAPIKey != "from-file" {
			t.Fatalf("expected file values, got %+v", cfg)
		}
		if cfg.WeatherTimeout != 2*time.Second {
			t.Fatalf("expected timeout from file, got %s", cfg.WeatherTimeout)
		}
		if cfg.Locale != "es" {
			t.Fatalf("expected environment to override the file locale, got %q", cfg.Locale)
		}
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvConfigFile, writeFile(t, "http_port: 8080\n"))

		if _, err := Load(); err == nil {
			t.Fatalf("expected unknown key to be rejected")
		}
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvConfigFile, writeFile(t, ""))

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTPAddr != ":8080" {
			t.Fatalf("expected default address, got %q", cfg.HTTPAddr)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "absent.yaml"))

		if _, err := Load(); err == nil {
			t.Fatalf("expected missing file to be reported")
		}
	})
}
