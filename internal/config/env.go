package config

import "os"

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TASKER_FILE"); v != "" {
		cfg.TasksFile = v
	}

	// Logging configuration
	if v := os.Getenv("TASKER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKER_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TASKER_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
	}
	if v := os.Getenv("TASKER_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
	}

	// Output. NO_COLOR disables color whatever its value (https://no-color.org).
	if v := os.Getenv("TASKER_COLOR"); v != "" {
		cfg.Color = boolFromString(v)
	}
	if v := os.Getenv("NO_COLOR"); v != "" {
		cfg.Color = false
	}
}
