package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration, loaded from the environment.
type Config struct {
	Port         string
	DatabasePath string
	MediaDir     string

	// Browser automation
	BrowserPath string // explicit browser binary, optional
	Headless    bool
	Proxy       string
	WaitTimeout time.Duration // per-element explicit wait
	RenderDelay time.Duration // fixed wait after the video element appears

	// Static page fetching and video download
	FetchTimeout time.Duration

	// Background worker
	WorkerInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		DatabasePath:   getEnv("DATABASE_PATH", "data/linkvid.db"),
		MediaDir:       getEnv("MEDIA_DIR", "data/media"),
		BrowserPath:    os.Getenv("BROWSER_PATH"),
		Headless:       getBool("BROWSER_HEADLESS", true),
		Proxy:          os.Getenv("HTTP_PROXY"),
		WaitTimeout:    getDuration("WAIT_TIMEOUT", 15*time.Second),
		RenderDelay:    getDuration("RENDER_DELAY", 5*time.Second),
		FetchTimeout:   getDuration("FETCH_TIMEOUT", 10*time.Second),
		WorkerInterval: getDuration("WORKER_INTERVAL", time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
