// Package cmd implements the CLI command structure for tasker.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasker-go/internal/config"
	"github.com/nibzard/tasker-go/internal/logging"
	"github.com/nibzard/tasker-go/internal/todo"
	"github.com/nibzard/tasker-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the tasker CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

// ReportError writes a failed command's error to w without styling, so it
// reads the same whatever the color settings are.
func ReportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
}

// app carries what every subcommand needs.
type app struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
	logger *log.Logger
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tasker", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	remainingArgs := fs.Args()
	if len(remainingArgs) == 0 {
		printUsage(fs, stdout)
		return nil
	}
	subcommand := remainingArgs[0]
	remainingArgs = remainingArgs[1:]

	a := &app{
		cfg:    cfg,
		stdout: stdout,
		stderr: stderr,
		logger: logging.FromConfig(stderr, cfg),
	}
	if len(cfg.Files) > 0 {
		a.logger.Debug("Loaded config", "files", cfg.Files)
	}

	err = a.runCommand(ctx, fs, subcommand, remainingArgs)
	if errors.Is(err, flag.ErrHelp) {
		// The subcommand flag set already printed its usage.
		return nil
	}
	return err
}

// runCommand dispatches to the named subcommand.
func (a *app) runCommand(ctx context.Context, fs *flag.FlagSet, subcommand string, remainingArgs []string) error {
	switch subcommand {
	case "add":
		return a.addCommand(remainingArgs)
	case "list", "ls":
		return a.listCommand(remainingArgs)
	case "complete", "done":
		return a.completeCommand(remainingArgs)
	case "delete", "rm":
		return a.deleteCommand(remainingArgs)
	case "search":
		return a.searchCommand(remainingArgs)
	case "export":
		return a.exportCommand(remainingArgs)
	case "tui":
		return a.tuiCommand(ctx, remainingArgs)
	case "version":
		return versionCommand(a.stdout)
	case "help":
		printUsage(fs, a.stdout)
		return nil
	default:
		fmt.Fprintf(a.stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, a.stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func (a *app) openStore() *todo.Store {
	return todo.Open(a.cfg.TasksFile, todo.WithLogger(a.logger))
}

func (a *app) renderer() *ui.Renderer {
	return ui.NewRenderer(a.stdout, ui.WithColor(a.cfg.Color))
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("tasker "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// addCommand adds a task.
func (a *app) addCommand(args []string) error {
	fs := a.newFlagSet("add")
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")
	priority := fs.String("priority", string(todo.DefaultPriority), "Task priority (low|medium|high)")
	category := fs.String("category", "", "Task category")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		return &todo.ValidationError{Path: "description", Err: errors.New("add requires a task description")}
	}
	if len(positional) > 1 {
		return fmt.Errorf("unexpected arguments: %v", positional[1:])
	}

	store := a.openStore()
	task, err := store.Add(todo.AddInput{
		Description: positional[0],
		DueDate:     *due,
		Priority:    *priority,
		Category:    *category,
	})
	if err != nil {
		return err
	}
	a.renderer().Success("Task #%d added successfully!", task.ID)
	return nil
}

// listCommand prints tasks, pending first.
func (a *app) listCommand(args []string) error {
	fs := a.newFlagSet("list")
	pendingOnly := fs.Bool("pending-only", false, "Show only pending tasks")
	completedOnly := fs.Bool("completed-only", false, "Show only completed tasks")
	category := fs.String("category", "", "Filter by category")
	priority := fs.String("priority", "", "Filter by priority (low|medium|high)")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("unexpected arguments: %v", positional)
	}
	if *priority != "" {
		if _, err := todo.ParsePriority(*priority); err != nil {
			return err
		}
	}

	opts := todo.DefaultListOptions()
	opts.ShowCompleted = !*pendingOnly
	opts.CompletedOnly = *completedOnly
	opts.Category = *category
	opts.Priority = *priority

	store := a.openStore()
	a.renderer().RenderList(store.List(opts))
	return nil
}

// completeCommand marks a task as completed.
func (a *app) completeCommand(args []string) error {
	id, err := a.parseIDArg("complete", args)
	if err != nil {
		return err
	}

	store := a.openStore()
	_, changed, err := store.Complete(id)
	if err != nil {
		return err
	}
	r := a.renderer()
	if !changed {
		r.Warn("Task #%d is already completed!", id)
		return nil
	}
	r.Success("Task #%d marked as complete!", id)
	return nil
}

// deleteCommand removes a task.
func (a *app) deleteCommand(args []string) error {
	id, err := a.parseIDArg("delete", args)
	if err != nil {
		return err
	}

	store := a.openStore()
	if _, err := store.Delete(id); err != nil {
		return err
	}
	a.renderer().Success("Task #%d deleted successfully!", id)
	return nil
}

// searchCommand finds tasks whose description contains the query.
func (a *app) searchCommand(args []string) error {
	fs := a.newFlagSet("search")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return &todo.ValidationError{Path: "query", Err: errors.New("search requires exactly one query")}
	}

	store := a.openStore()
	a.renderer().RenderSearch(positional[0], store.Search(positional[0]))
	return nil
}

// exportCommand writes the collection to stdout in a structured format.
func (a *app) exportCommand(args []string) error {
	fs := a.newFlagSet("export")
	format := fs.String("format", todo.FormatJSON, "Output format ("+strings.Join(todo.ExportFormats(), "|")+")")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("unexpected arguments: %v", positional)
	}

	store := a.openStore()
	return store.Export(a.stdout, *format)
}

// tuiCommand launches the interactive browser.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("tui")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("unexpected arguments: %v", positional)
	}

	store := a.openStore()
	return ui.RunTUI(ctx, store, ui.WithTUIColor(a.cfg.Color))
}

// parseIDArg reads the single task ID argument of complete and delete.
func (a *app) parseIDArg(name string, args []string) (int, error) {
	fs := a.newFlagSet(name)
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return 0, err
	}
	if len(positional) != 1 {
		return 0, &todo.ValidationError{Path: "id", Err: fmt.Errorf("%s requires exactly one task ID", name)}
	}
	id, err := strconv.Atoi(positional[0])
	if err != nil {
		return 0, &todo.ValidationError{Path: "id", Err: fmt.Errorf("invalid task ID %q", positional[0])}
	}
	return id, nil
}

// parseInterspersed parses fs from args, allowing flags to follow
// positional arguments. Arguments after "--" and negative numbers are
// always positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for len(args) > 0 {
		if isNegativeNumber(args[0]) {
			positional = append(positional, args[0])
			args = args[1:]
			continue
		}
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
	return positional, nil
}

func isNegativeNumber(s string) bool {
	if !strings.HasPrefix(s, "-") {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "tasker version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Tasker - Manage your tasks from the command line")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasker [options] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add <description>   Add a new task")
	fmt.Fprintln(w, "  list                View tasks")
	fmt.Fprintln(w, "  complete <id>       Mark a task as complete")
	fmt.Fprintln(w, "  delete <id>         Delete a task")
	fmt.Fprintln(w, "  search <query>      Search task descriptions")
	fmt.Fprintln(w, "  export              Write all tasks to stdout")
	fmt.Fprintln(w, "  tui                 Browse tasks interactively")
	fmt.Fprintln(w, "  version             Show version information")
	fmt.Fprintln(w, "  help                Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options:")
	fmt.Fprintln(w, "  -due string")
	fmt.Fprintln(w, "        Due date (YYYY-MM-DD)")
	fmt.Fprintln(w, "  -priority string")
	fmt.Fprintln(w, "        Task priority: low, medium, high (default \"medium\")")
	fmt.Fprintln(w, "  -category string")
	fmt.Fprintln(w, "        Task category")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List Options:")
	fmt.Fprintln(w, "  -pending-only")
	fmt.Fprintln(w, "        Show only pending tasks")
	fmt.Fprintln(w, "  -completed-only")
	fmt.Fprintln(w, "        Show only completed tasks")
	fmt.Fprintln(w, "  -category string")
	fmt.Fprintln(w, "        Filter by category")
	fmt.Fprintln(w, "  -priority string")
	fmt.Fprintln(w, "        Filter by priority: low, medium, high")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export Options:")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintf(w, "        Output format: %s (default \"json\")\n", strings.Join(todo.ExportFormats(), ", "))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  tasker add \"Complete Go project\" --due 2026-01-25 --priority high")
	fmt.Fprintln(w, "  tasker list --pending-only --priority high")
	fmt.Fprintln(w, "  tasker list --completed-only")
	fmt.Fprintln(w, "  tasker complete 1")
	fmt.Fprintln(w, "  tasker search \"Go\"")
	fmt.Fprintln(w, "  tasker delete 1")
	fmt.Fprintln(w, "  tasker export --format yaml")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "  Settings are read from ~/.tasker/tasker.toml, then ./tasker.toml,")
	fmt.Fprintln(w, "  then TASKER_* environment variables, then flags.")
}
