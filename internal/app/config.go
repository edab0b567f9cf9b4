package app

import "time"

// Config holds all configurable parameters for the application.
type Config struct {
	SeedDir    string
	Port       int
	PathPrefix string
	TraceSize  int
	LogLevel   string

	RateLimiterTTL  time.Duration
	WatcherDebounce time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	DefaultEngine string // empty means placeholder
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SeedDir:    "",
		Port:       8080,
		PathPrefix: "/api",
		TraceSize:  200,
		LogLevel:   "debug",

		RateLimiterTTL:  10 * time.Minute,
		WatcherDebounce: 500 * time.Millisecond,

		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}
