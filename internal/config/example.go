package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasker configuration file
# Values can be overridden by environment variables or CLI flags

# Task file (supports ~ and $VAR expansion)
tasks_file = "tasks.json"

# Logging: debug, info, warn, error
log_level = "warn"

# Log format: text, json, logfmt
log_format = "text"

# Show timestamps and caller location in log lines
log_timestamps = false
log_caller = false

# Colored console output (NO_COLOR in the environment also disables it)
color = true
`
}
