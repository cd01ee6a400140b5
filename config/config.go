// Package config loads runtime settings from an optional JSON file, a .env file and
// the environment, in increasing order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"weather-page/datasource"
	"weather-page/models"
	"weather-page/route"
	"weather-page/search"
)

const (
	defaultPort        = 8080
	defaultHTTPTimeout = 10 * time.Second
	defaultAssetsDir   = "assets"
)

// Config holds runtime configuration
type Config struct {
	APIKey         string
	BaseURL        string
	Port           int
	HTTPTimeout    time.Duration
	SearchDebounce time.Duration
	// Home is the device location; nil means it is unavailable.
	Home      *models.Coordinates
	Fallback  models.Coordinates
	AssetsDir string
}

// fileConfig is the JSON file layout. Every field is optional.
type fileConfig struct {
	OpenWeatherMap struct {
		APIKey  string `json:"apiKey"`
		BaseURL string `json:"baseUrl"`
	} `json:"openWeatherMap"`
	Port           int                 `json:"port"`
	HTTPTimeout    string              `json:"httpTimeout"`
	SearchDebounce string              `json:"searchDebounce"`
	Home           *models.Coordinates `json:"home"`
	Fallback       *models.Coordinates `json:"fallback"`
	AssetsDir      string              `json:"assetsDir"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		BaseURL:        datasource.DefaultBaseURL,
		Port:           defaultPort,
		HTTPTimeout:    defaultHTTPTimeout,
		SearchDebounce: search.DefaultDelay,
		Fallback:       route.DefaultFallback.Coords,
		AssetsDir:      defaultAssetsDir,
	}
}

// Load reads configuration from path (skipped when empty or missing), then .env,
// then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	_ = godotenv.Load(".env")

	if err := cfg.loadEnv(); err != nil {
		return cfg, err
	}
	if cfg.APIKey == "" {
		return cfg, errors.New("OPENWEATHER_API_KEY is required")
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var fc fileConfig
	if err := json.NewDecoder(file).Decode(&fc); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	if fc.OpenWeatherMap.APIKey != "" {
		c.APIKey = fc.OpenWeatherMap.APIKey
	}
	if fc.OpenWeatherMap.BaseURL != "" {
		c.BaseURL = fc.OpenWeatherMap.BaseURL
	}
	if fc.Port != 0 {
		c.Port = fc.Port
	}
	if fc.HTTPTimeout != "" {
		if c.HTTPTimeout, err = parseDuration("httpTimeout", fc.HTTPTimeout); err != nil {
			return err
		}
	}
	if fc.SearchDebounce != "" {
		if c.SearchDebounce, err = parseDuration("searchDebounce", fc.SearchDebounce); err != nil {
			return err
		}
	}
	if fc.Home != nil {
		home := *fc.Home
		c.Home = &home
	}
	if fc.Fallback != nil {
		c.Fallback = *fc.Fallback
	}
	if fc.AssetsDir != "" {
		c.AssetsDir = fc.AssetsDir
	}
	return nil
}

func (c *Config) loadEnv() error {
	if v := env("OPENWEATHER_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := env("OPENWEATHER_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := env("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid PORT: %q", v)
		}
		c.Port = port
	}

	var err error
	if v := env("HTTP_TIMEOUT"); v != "" {
		if c.HTTPTimeout, err = parseDuration("HTTP_TIMEOUT", v); err != nil {
			return err
		}
	}
	if v := env("SEARCH_DEBOUNCE"); v != "" {
		if c.SearchDebounce, err = parseDuration("SEARCH_DEBOUNCE", v); err != nil {
			return err
		}
	}

	home, err := coordinatesFromEnv("HOME_LAT", "HOME_LON")
	if err != nil {
		return err
	}
	if home != nil {
		c.Home = home
	}

	fallback, err := coordinatesFromEnv("FALLBACK_LAT", "FALLBACK_LON")
	if err != nil {
		return err
	}
	if fallback != nil {
		c.Fallback = *fallback
	}

	if v := env("ASSETS_DIR"); v != "" {
		c.AssetsDir = v
	}
	return nil
}

// Addr is the listen address for the HTTP server
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func parseDuration(name, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", name)
	}
	return d, nil
}

// coordinatesFromEnv reads a lat/lon pair. Both unset is not an error; one without
// the other is.
func coordinatesFromEnv(latKey, lonKey string) (*models.Coordinates, error) {
	latStr, lonStr := env(latKey), env(lonKey)
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, fmt.Errorf("%s and %s must be set together", latKey, lonKey)
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return nil, fmt.Errorf("invalid %s: %q", latKey, latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return nil, fmt.Errorf("invalid %s: %q", lonKey, lonStr)
	}
	return &models.Coordinates{Lat: lat, Lon: lon}, nil
}
