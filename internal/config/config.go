package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultFeedURL = "https://nasa-public-data.s3.amazonaws.com/iss-coords/current/ISS_OEM/ISS.OEM_J2K_EPH.xml"

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// FeedURL is the upstream OEM ephemeris document, fetched with plain
	// HTTP GET and no auth.
	FeedURL     string
	FeedTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// CacheTTL of zero stores the dataset without expiry.
	CacheTTL time.Duration

	GeocoderURL     string
	GeocoderTimeout time.Duration
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	feedURL := strings.TrimSpace(os.Getenv("FEED_URL"))
	if feedURL == "" {
		feedURL = defaultFeedURL
	}
	if _, err := url.ParseRequestURI(feedURL); err != nil {
		return Config{}, fmt.Errorf("invalid FEED_URL %q: %w", feedURL, err)
	}

	feedTimeout, err := durationEnv("FEED_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}

	redisAddr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")

	redisDBStr := strings.TrimSpace(os.Getenv("REDIS_DB"))
	if redisDBStr == "" {
		redisDBStr = "0"
	}
	redisDB, err := strconv.Atoi(redisDBStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid REDIS_DB %q: %w", redisDBStr, err)
	}

	cacheTTL, err := durationEnv("CACHE_TTL", 0)
	if err != nil {
		return Config{}, err
	}
	if cacheTTL < 0 {
		return Config{}, fmt.Errorf("invalid CACHE_TTL %q: must not be negative", os.Getenv("CACHE_TTL"))
	}

	geocoderURL := strings.TrimSpace(os.Getenv("GEOCODER_URL"))
	if geocoderURL == "" {
		geocoderURL = "https://nominatim.openstreetmap.org"
	}
	if _, err := url.ParseRequestURI(geocoderURL); err != nil {
		return Config{}, fmt.Errorf("invalid GEOCODER_URL %q: %w", geocoderURL, err)
	}

	geocoderTimeout, err := durationEnv("GEOCODER_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:          appEnv,
		LogLevel:        level,
		HTTPAddr:        httpAddr,
		FeedURL:         feedURL,
		FeedTimeout:     feedTimeout,
		RedisAddr:       redisAddr,
		RedisPassword:   redisPassword,
		RedisDB:         redisDB,
		CacheTTL:        cacheTTL,
		GeocoderURL:     geocoderURL,
		GeocoderTimeout: geocoderTimeout,
	}, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(name))
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
