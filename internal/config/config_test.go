// Package config tests configuration loading.
package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate points every config source at empty temp locations so the
// developer's own files and environment do not leak into a test.
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	work = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, key := range []string{
		"TASKER_FILE", "TASKER_LOG_LEVEL", "TASKER_LOG_FORMAT",
		"TASKER_LOG_TIMESTAMPS", "TASKER_LOG_CALLER", "TASKER_COLOR", "NO_COLOR",
	} {
		t.Setenv(key, "")
	}
	// os.Chdir with a restoring cleanup stands in for t.Chdir (Go 1.24+).
	prevDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevDir) })
	return home, work
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("tasker", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.TasksFile != DefaultTasksFile {
		t.Errorf("TasksFile: got %q, want %q", cfg.TasksFile, DefaultTasksFile)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel: got %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.LogFormat != DefaultLogFormat {
		t.Errorf("LogFormat: got %q, want %q", cfg.LogFormat, DefaultLogFormat)
	}
	if !cfg.Color {
		t.Error("Color: got false, want true")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TasksFile != DefaultTasksFile {
		t.Errorf("TasksFile: got %q, want %q", cfg.TasksFile, DefaultTasksFile)
	}
	if len(cfg.Files) != 0 {
		t.Errorf("Files: got %v, want none", cfg.Files)
	}
}

func TestLoadLeavesPositionalArgs(t *testing.T) {
	isolate(t)

	fs := newFlagSet()
	_, err := Load(fs, []string{"--file", "x.json", "add", "buy milk", "--priority", "high"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := []string{"add", "buy milk", "--priority", "high"}
	if got := fs.Args(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Args: got %v, want %v", got, want)
	}
}

func TestLoadUserConfigFile(t *testing.T) {
	home, _ := isolate(t)
	writeFile(t, filepath.Join(home, ".tasker", ConfigFileName), `
tasks_file = "/tmp/user-tasks.json"
log_level = "debug"
`)

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TasksFile != "/tmp/user-tasks.json" {
		t.Errorf("TasksFile: got %q", cfg.TasksFile)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want debug", cfg.LogLevel)
	}
	if len(cfg.Files) != 1 {
		t.Errorf("Files: got %v, want one entry", cfg.Files)
	}
}

func TestLoadXDGConfigFile(t *testing.T) {
	home, _ := isolate(t)
	writeFile(t, filepath.Join(home, ".config", "tasker", ConfigFileName), `log_format = "json"`)

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: got %q, want json", cfg.LogFormat)
	}
}

func TestLoadPrecedence(t *testing.T) {
	home, work := isolate(t)
	writeFile(t, filepath.Join(home, ".tasker", ConfigFileName), `
tasks_file = "user.json"
log_level = "debug"
log_format = "json"
color = false
`)
	writeFile(t, filepath.Join(work, ConfigFileName), `
tasks_file = "project.json"
log_level = "info"
`)

	t.Run("project file overrides user file", func(t *testing.T) {
		cfg, err := Load(newFlagSet(), nil)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.TasksFile != "project.json" {
			t.Errorf("TasksFile: got %q, want project.json", cfg.TasksFile)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("LogLevel: got %q, want info", cfg.LogLevel)
		}
		// Not set in the project file, so the user value stays.
		if cfg.LogFormat != "json" {
			t.Errorf("LogFormat: got %q, want json", cfg.LogFormat)
		}
		if cfg.Color {
			t.Error("Color: got true, want false")
		}
		if len(cfg.Files) != 2 {
			t.Errorf("Files: got %v, want two entries", cfg.Files)
		}
	})

	t.Run("environment overrides files", func(t *testing.T) {
		t.Setenv("TASKER_FILE", "env.json")
		t.Setenv("TASKER_LOG_LEVEL", "error")

		cfg, err := Load(newFlagSet(), nil)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.TasksFile != "env.json" {
			t.Errorf("TasksFile: got %q, want env.json", cfg.TasksFile)
		}
		if cfg.LogLevel != "error" {
			t.Errorf("LogLevel: got %q, want error", cfg.LogLevel)
		}
	})

	t.Run("flags override environment", func(t *testing.T) {
		t.Setenv("TASKER_FILE", "env.json")

		cfg, err := Load(newFlagSet(), []string{"--file", "flag.json", "--log-level", "WARN"})
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.TasksFile != "flag.json" {
			t.Errorf("TasksFile: got %q, want flag.json", cfg.TasksFile)
		}
		if cfg.LogLevel != "warn" {
			t.Errorf("LogLevel: got %q, want warn", cfg.LogLevel)
		}
	})
}

func TestLoadDotfileProjectConfig(t *testing.T) {
	_, work := isolate(t)
	writeFile(t, filepath.Join(work, "."+ConfigFileName), `tasks_file = "dot.json"`)

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TasksFile != "dot.json" {
		t.Errorf("TasksFile: got %q, want dot.json", cfg.TasksFile)
	}
}

func TestLoadUnknownKeys(t *testing.T) {
	_, work := isolate(t)
	writeFile(t, filepath.Join(work, ConfigFileName), `
tasks_file = "a.json"
todo_file = "b.json"
`)

	_, err := Load(newFlagSet(), nil)
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "todo_file") {
		t.Errorf("error should name the key: %v", err)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	_, work := isolate(t)
	writeFile(t, filepath.Join(work, ConfigFileName), `tasks_file = `)

	if _, err := Load(newFlagSet(), nil); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestLoadColor(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
		want bool
	}{
		{name: "default", want: true},
		{name: "NO_COLOR", env: map[string]string{"NO_COLOR": "1"}, want: false},
		{name: "TASKER_COLOR off", env: map[string]string{"TASKER_COLOR": "false"}, want: false},
		{name: "flag", args: []string{"--no-color"}, want: false},
		{name: "flag re-enables", env: map[string]string{"NO_COLOR": "1"}, args: []string{"--no-color=false"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load(newFlagSet(), tt.args)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.Color != tt.want {
				t.Errorf("Color: got %v, want %v", cfg.Color, tt.want)
			}
		})
	}
}

func TestLoadExpandsHome(t *testing.T) {
	home, _ := isolate(t)

	cfg, err := Load(newFlagSet(), []string{"--file", "~/tasks/todo.json"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := filepath.Join(home, "tasks", "todo.json")
	if cfg.TasksFile != want {
		t.Errorf("TasksFile: got %q, want %q", cfg.TasksFile, want)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := isolate(t)
	t.Setenv("TASKER_DATA", "/srv/tasks")

	tests := []struct {
		in   string
		want string
	}{
		{"tasks.json", "tasks.json"},
		{"~", home},
		{"~/todo.json", filepath.Join(home, "todo.json")},
		{"$TASKER_DATA/tasks.json", "/srv/tasks/tasks.json"},
		{"${TASKER_DATA}/tasks.json", "/srv/tasks/tasks.json"},
		{"~other/tasks.json", "~other/tasks.json"},
		{"%TASKER_DATA%/tasks.json", "%TASKER_DATA%/tasks.json"},
	}

	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	_, work := isolate(t)
	t.Setenv("TASKER_DATA", work)
	writeFile(t, filepath.Join(work, ConfigFileName), `tasks_file = "$TASKER_DATA/tasks.json"`)

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if want := filepath.Join(work, "tasks.json"); cfg.TasksFile != want {
		t.Errorf("TasksFile: got %q, want %q", cfg.TasksFile, want)
	}
}

func TestLoadEmptyTasksFile(t *testing.T) {
	isolate(t)

	if _, err := Load(newFlagSet(), []string{"--file", "  "}); err == nil {
		t.Fatal("expected error for empty tasks file")
	}
}

func TestBoolFromString(t *testing.T) {
	for _, s := range []string{"1", "true", "TRUE", "yes", "on", " On "} {
		if !boolFromString(s) {
			t.Errorf("boolFromString(%q): got false, want true", s)
		}
	}
	for _, s := range []string{"", "0", "false", "no", "off", "maybe"} {
		if boolFromString(s) {
			t.Errorf("boolFromString(%q): got true, want false", s)
		}
	}
}

func TestExampleConfigDecodes(t *testing.T) {
	_, work := isolate(t)
	writeFile(t, filepath.Join(work, ConfigFileName), ExampleConfig())

	cfg, err := Load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("example config does not load: %v", err)
	}
	if cfg.TasksFile != DefaultTasksFile {
		t.Errorf("TasksFile: got %q, want %q", cfg.TasksFile, DefaultTasksFile)
	}
}
