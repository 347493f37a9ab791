package config

import "flag"

// parseFlags defines the global flags on fs and parses args.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("tasker", flag.ContinueOnError)
	}

	// Paths
	fs.StringVar(&cfg.TasksFile, "file", cfg.TasksFile, "Path to task file")
	fs.StringVar(&cfg.TasksFile, "f", cfg.TasksFile, "Path to task file (shorthand)")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	// Output
	noColor := fs.Bool("no-color", !cfg.Color, "Disable colored output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Color = !*noColor
	return nil
}
