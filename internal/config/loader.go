package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvHTTPAddr       = "CALENDAR_HTTP_ADDR"
	EnvDBPath         = "CALENDAR_DB_PATH"
	EnvWeatherAPIKey  = "CALENDAR_WEATHER_API_KEY"
	EnvWeatherBaseURL = "CALENDAR_WEATHER_BASE_URL"
	EnvWeatherTimeout = "CALENDAR_WEATHER_TIMEOUT"
	EnvCacheTTL       = "CALENDAR_CACHE_TTL"
	EnvTimezone       = "CALENDAR_TIMEZONE"
	EnvWeekStart      = "CALENDAR_WEEK_START"
	EnvLocale         = "CALENDAR_LOCALE"
	EnvConfigFile     = "CALENDAR_CONFIG_FILE"
)

// Config captures the settings of the calendar service.
type Config struct {
	HTTPAddr       string
	DBPath         string
	WeatherAPIKey  string
	WeatherBaseURL string
	WeatherTimeout time.Duration
	CacheTTL       time.Duration
	Timezone       string
	Location       *time.Location
	WeekStart      time.Weekday
	Locale         string
}

// fileConfig mirrors the optional YAML file named by CALENDAR_CONFIG_FILE.
type fileConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	DBPath   string `yaml:"db_path"`
	Weather  struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"weather"`
	CacheTTL  string `yaml:"cache_ttl"`
	Timezone  string `yaml:"timezone"`
	WeekStart string `yaml:"week_start"`
	Locale    string `yaml:"locale"`
}

func (f fileConfig) values() map[string]string {
	return map[string]string{
		EnvHTTPAddr:       f.HTTPAddr,
		EnvDBPath:         f.DBPath,
		EnvWeatherAPIKey:  f.Weather.APIKey,
		EnvWeatherBaseURL: f.Weather.BaseURL,
		EnvWeatherTimeout: f.Weather.Timeout,
		EnvCacheTTL:       f.CacheTTL,
		EnvTimezone:       f.Timezone,
		EnvWeekStart:      f.WeekStart,
		EnvLocale:         f.Locale,
	}
}

// Load reads the configuration file named by CALENDAR_CONFIG_FILE, if any,
// and then the process environment, which takes precedence. Defaults apply
// to everything left unset. All invalid values are reported together.
func Load() (Config, error) {
	raw := make(map[string]string)

	if path := strings.TrimSpace(os.Getenv(EnvConfigFile)); path != "" {
		file, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		for key, value := range file.values() {
			if value = strings.TrimSpace(value); value != "" {
				raw[key] = value
			}
		}
	}

	for _, key := range []string{
		EnvHTTPAddr, EnvDBPath, EnvWeatherAPIKey, EnvWeatherBaseURL, EnvWeatherTimeout,
		EnvCacheTTL, EnvTimezone, EnvWeekStart, EnvLocale,
	} {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			raw[key] = value
		}
	}

	return parse(raw)
}

func parse(raw map[string]string) (Config, error) {
	cfg := Config{
		HTTPAddr:       ":8080",
		DBPath:         "calendar.db",
		WeatherBaseURL: "http://api.weatherapi.com/v1",
		WeatherTimeout: 10 * time.Second,
		CacheTTL:       5 * time.Minute,
		Timezone:       "UTC",
		Location:       time.UTC,
		WeekStart:      time.Monday,
		Locale:         "es",
	}

	invalid := make([]string, 0, 2)

	if value, ok := raw[EnvHTTPAddr]; ok {
		cfg.HTTPAddr = value
	}
	if value, ok := raw[EnvDBPath]; ok {
		cfg.DBPath = value
	}
	if value, ok := raw[EnvWeatherAPIKey]; ok {
		cfg.WeatherAPIKey = value
	}
	if value, ok := raw[EnvWeatherBaseURL]; ok {
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			invalid = append(invalid, EnvWeatherBaseURL)
		} else {
			cfg.WeatherBaseURL = strings.TrimRight(value, "/")
		}
	}

	if value, ok := raw[EnvWeatherTimeout]; ok {
		timeout, err := time.ParseDuration(value)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, EnvWeatherTimeout)
		} else {
			cfg.WeatherTimeout = timeout
		}
	}

	if value, ok := raw[EnvCacheTTL]; ok {
		ttl, err := time.ParseDuration(value)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, EnvCacheTTL)
		} else {
			cfg.CacheTTL = ttl
		}
	}

	if value, ok := raw[EnvTimezone]; ok {
		loc, err := time.LoadLocation(value)
		if err != nil {
			invalid = append(invalid, EnvTimezone)
		} else {
			cfg.Timezone = value
			cfg.Location = loc
		}
	}

	if value, ok := raw[EnvWeekStart]; ok {
		switch strings.ToLower(value) {
		case "monday":
			cfg.WeekStart = time.Monday
		case "sunday":
			cfg.WeekStart = time.Sunday
		default:
			invalid = append(invalid, EnvWeekStart)
		}
	}

	if value, ok := raw[EnvLocale]; ok {
		switch locale := strings.ToLower(value); locale {
		case "es", "en":
			cfg.Locale = locale
		default:
			invalid = append(invalid, EnvLocale)
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("valores de configuración no válidos: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// RequireWeather reports the settings the weather proxy cannot run without.
func (c Config) RequireWeather() error {
	if strings.TrimSpace(c.WeatherAPIKey) == "" {
		return fmt.Errorf("faltan variables de entorno obligatorias: %s", EnvWeatherAPIKey)
	}
	return nil
}

func readFile(path string) (fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	var file fileConfig
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return fileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return file, nil
}
