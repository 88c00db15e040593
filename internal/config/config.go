package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

type AppConfig struct {
	// BackendBaseURL is the root of the weather backend REST API.
	BackendBaseURL string
	// HTTPTimeout is the fixed connection timeout for backend calls.
	HTTPTimeout time.Duration

	// Circuit breaker around backend calls.
	BreakerMaxFailures int
	BreakerTimeout     time.Duration

	// Durable client state.
	StorageDriver string // sqlite, file or memory
	StoragePath   string

	// Fallback is the active selection at startup and after unpinning it.
	Fallback weather.Location

	// AlertRefreshInterval controls the periodic alert refresh (0 disables it).
	AlertRefreshInterval time.Duration

	DefaultDays   int
	DefaultUnits  weather.Unit
	PredictedUnit weather.Unit
	OfficialUnit  weather.Unit

	DatasetID string
	StationID string

	GeocoderAPIKey string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.BackendBaseURL = strings.TrimRight(getenvDefault("BACKEND_BASE_URL", "http://127.0.0.1:8000/api"), "/")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.Port = getenvDefault("PORT", "8080")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.BreakerTimeout, err = getenvDuration("BREAKER_TIMEOUT", "2m"); err != nil {
		return nil, err
	}
	if cfg.BreakerMaxFailures, err = getenvInt("BREAKER_MAX_FAILURES", 5); err != nil {
		return nil, err
	}
	if cfg.BreakerMaxFailures < 1 {
		return nil, fmt.Errorf("invalid BREAKER_MAX_FAILURES %d: must be at least 1", cfg.BreakerMaxFailures)
	}

	// Alert refresh: default 5 minutes.
	if cfg.AlertRefreshInterval, err = getenvDuration("ALERT_REFRESH_INTERVAL", "5m"); err != nil {
		return nil, err
	}

	cfg.StorageDriver = getenvDefault("STORAGE_DRIVER", "sqlite")
	switch cfg.StorageDriver {
	case "sqlite":
		cfg.StoragePath = getenvDefault("STORAGE_PATH", "data/dashboard.db")
	case "file":
		cfg.StoragePath = getenvDefault("STORAGE_PATH", "data")
	case "memory":
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q: want sqlite, file or memory", cfg.StorageDriver)
	}

	if cfg.DefaultDays, err = getenvInt("DEFAULT_DAYS", 7); err != nil {
		return nil, err
	}
	if cfg.DefaultDays < 1 || cfg.DefaultDays > 16 {
		return nil, fmt.Errorf("invalid DEFAULT_DAYS %d: must be 1-16", cfg.DefaultDays)
	}
	if cfg.DefaultUnits, err = getenvUnit("DEFAULT_UNITS", "imperial"); err != nil {
		return nil, err
	}
	if cfg.PredictedUnit, err = getenvUnit("PREDICTED_UNITS", "metric"); err != nil {
		return nil, err
	}
	if cfg.OfficialUnit, err = getenvUnit("OFFICIAL_UNITS", "imperial"); err != nil {
		return nil, err
	}

	cfg.DatasetID = getenvDefault("DATASET_ID", "GHCND")
	cfg.StationID = getenvDefault("STATION_ID", "GHCND:USW00013881")

	fallback, err := loadFallbackLocation()
	if err != nil {
		return nil, err
	}
	cfg.Fallback = fallback

	return cfg, nil
}

func loadFallbackLocation() (weather.Location, error) {
	lat, err := strconv.ParseFloat(getenvDefault("FALLBACK_LOCATION_LAT", "35.2271"), 64)
	if err != nil {
		return weather.Location{}, fmt.Errorf("invalid FALLBACK_LOCATION_LAT: %w", err)
	}
	lon, err := strconv.ParseFloat(getenvDefault("FALLBACK_LOCATION_LON", "-80.8431"), 64)
	if err != nil {
		return weather.Location{}, fmt.Errorf("invalid FALLBACK_LOCATION_LON: %w", err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return weather.Location{}, fmt.Errorf("fallback coordinates out of range: %f,%f", lat, lon)
	}

	return weather.Location{
		ID:      getenvDefault("FALLBACK_LOCATION_ID", "CITY:US370016"),
		Name:    getenvDefault("FALLBACK_LOCATION_NAME", "Charlotte"),
		State:   getenvDefault("FALLBACK_LOCATION_STATE", "NC"),
		Country: getenvDefault("FALLBACK_LOCATION_COUNTRY", "US"),
		Lat:     &lat,
		Lon:     &lon,
	}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}

func getenvUnit(key, def string) (weather.Unit, error) {
	u, err := weather.ParseUnit(getenvDefault(key, def))
	if err != nil {
		return "", fmt.Errorf("invalid %s: %w", key, err)
	}
	return u, nil
}
