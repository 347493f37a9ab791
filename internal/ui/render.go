// Package ui renders tasks to the console and provides the interactive browser.
package ui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tasker-go/internal/todo"
	"github.com/nibzard/tasker-go/internal/utils"
)

const ruleWidth = 60

// Styles holds the lipgloss styles used for console output.
type Styles struct {
	Header    lipgloss.Style
	Rule      lipgloss.Style
	Done      lipgloss.Style
	Pending   lipgloss.Style
	Overdue   lipgloss.Style
	DueSoon   lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Priority  map[todo.Priority]lipgloss.Style
	Selected  lipgloss.Style
	Highlight lipgloss.Style
}

// NewStyles builds styles bound to r. With color disabled every style is
// plain text.
func NewStyles(r *lipgloss.Renderer, color bool) Styles {
	if !color {
		plain := r.NewStyle()
		return Styles{
			Header: plain, Rule: plain, Done: plain, Pending: plain,
			Overdue: plain, DueSoon: plain, Muted: plain,
			Success: plain, Warning: plain,
			Priority: map[todo.Priority]lipgloss.Style{
				todo.PriorityLow: plain, todo.PriorityMedium: plain, todo.PriorityHigh: plain,
			},
			Selected:  plain,
			Highlight: plain,
		}
	}
	return Styles{
		Header:  r.NewStyle().Bold(true),
		Rule:    r.NewStyle().Foreground(lipgloss.Color("8")),
		Done:    r.NewStyle().Foreground(lipgloss.Color("2")),
		Pending: r.NewStyle().Foreground(lipgloss.Color("6")),
		Overdue: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		DueSoon: r.NewStyle().Foreground(lipgloss.Color("3")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Success: r.NewStyle().Foreground(lipgloss.Color("2")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("3")),
		Priority: map[todo.Priority]lipgloss.Style{
			todo.PriorityLow:    r.NewStyle().Foreground(lipgloss.Color("4")),
			todo.PriorityMedium: r.NewStyle().Foreground(lipgloss.Color("3")),
			todo.PriorityHigh:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		},
		Selected:  r.NewStyle().Reverse(true),
		Highlight: r.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
	}
}

var priorityIcons = map[todo.Priority]string{
	todo.PriorityLow:    "◇",
	todo.PriorityMedium: "◆",
	todo.PriorityHigh:   "◆◆",
}

// Renderer writes human-readable task output.
type Renderer struct {
	w      io.Writer
	now    func() time.Time
	color  bool
	styles Styles
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock sets the time used to compute due-date text.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// WithColor enables or disables styled output. Color is also dropped
// automatically when w is not a terminal.
func WithColor(enabled bool) Option {
	return func(r *Renderer) {
		r.color = enabled
	}
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer, opts ...Option) *Renderer {
	r := &Renderer{
		w:     w,
		now:   time.Now,
		color: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.styles = NewStyles(lipgloss.NewRenderer(w), r.color)
	return r
}

// Success prints a confirmation line.
func (r *Renderer) Success(format string, args ...any) {
	fmt.Fprintln(r.w, r.styles.Success.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Warn prints a non-fatal notice.
func (r *Renderer) Warn(format string, args ...any) {
	fmt.Fprintln(r.w, r.styles.Warning.Render("⚠ "+fmt.Sprintf(format, args...)))
}

func (r *Renderer) rule(ch string) {
	fmt.Fprintln(r.w, r.styles.Rule.Render(strings.Repeat(ch, ruleWidth)))
}

func (r *Renderer) section(title string) {
	fmt.Fprintln(r.w)
	r.rule("=")
	fmt.Fprintln(r.w, r.styles.Header.Render(title))
	r.rule("=")
}

// RenderList prints the result of Store.List: a distinct message when the
// store is empty or nothing matched, otherwise the pending section, the
// completed section, and a summary.
func (r *Renderer) RenderList(result todo.ListResult) {
	if result.StoreEmpty {
		fmt.Fprintln(r.w)
		fmt.Fprintln(r.w, "📋 No tasks yet. Add one to get started!")
		return
	}
	if result.Empty() {
		fmt.Fprintln(r.w)
		fmt.Fprintln(r.w, "📋 No tasks match your filters.")
		return
	}

	if len(result.Pending) > 0 {
		r.section("📌 PENDING TASKS")
		for _, task := range result.Pending {
			r.RenderTask(task)
		}
	}
	if len(result.Completed) > 0 {
		r.section("✓ COMPLETED TASKS")
		for _, task := range result.Completed {
			r.RenderTask(task)
		}
	}

	fmt.Fprintln(r.w)
	r.rule("-")
	fmt.Fprintf(r.w, "Total: %d %s (%d pending, %d completed)\n",
		result.Total(), utils.Plural(result.Total(), "task", "tasks"),
		len(result.Pending), len(result.Completed))
	r.rule("-")
	fmt.Fprintln(r.w)
}

// RenderSearch prints search matches for query.
func (r *Renderer) RenderSearch(query string, tasks []todo.Task) {
	fmt.Fprintln(r.w)
	if len(tasks) == 0 {
		fmt.Fprintf(r.w, "🔍 No tasks found matching '%s'\n", query)
		return
	}
	fmt.Fprintf(r.w, "🔍 Found %d task(s) matching '%s':\n", len(tasks), query)
	r.rule("=")
	for _, task := range tasks {
		r.RenderTask(task)
	}
	fmt.Fprintln(r.w)
}

// RenderTask prints a single task block.
func (r *Renderer) RenderTask(task todo.Task) {
	status := r.styles.Pending.Render("○")
	if task.Completed {
		status = r.styles.Done.Render("✓")
	}

	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "%s %s\n", status, r.styles.Header.Render(fmt.Sprintf("Task #%d", task.ID)))
	fmt.Fprintf(r.w, "  %s\n", task.Description)

	if due := task.Due(); due != "" {
		fmt.Fprintf(r.w, "  📅 %s (%s)\n", due, r.dueText(due, task.Completed))
	}
	if task.Priority != "" {
		icon, ok := priorityIcons[task.Priority]
		if !ok {
			icon = priorityIcons[todo.PriorityLow]
		}
		style, ok := r.styles.Priority[task.Priority]
		if !ok {
			style = r.styles.Muted
		}
		fmt.Fprintf(r.w, "  %s\n", style.Render(fmt.Sprintf("%s Priority: %s", icon, strings.ToUpper(string(task.Priority)))))
	}
	if category := task.CategoryName(); category != "" {
		fmt.Fprintf(r.w, "  🏷  Category: %s\n", category)
	}
}

func (r *Renderer) dueText(due string, completed bool) string {
	text := DueText(due, r.now())
	if completed {
		return r.styles.Muted.Render(text)
	}
	days, ok := DaysUntil(due, r.now())
	switch {
	case !ok:
		return text
	case days < 0:
		return r.styles.Overdue.Render(text)
	case days <= 1:
		return r.styles.DueSoon.Render(text)
	}
	return text
}

// DaysUntil returns the number of calendar days from now's date to the due
// date. ok is false when due is not a valid date.
func DaysUntil(due string, now time.Time) (days int, ok bool) {
	dueDate, err := time.ParseInLocation(todo.DateLayout, due, now.Location())
	if err != nil {
		return 0, false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	// Round to absorb 23- and 25-hour days around DST changes.
	return int(math.Round(dueDate.Sub(today).Hours() / 24)), true
}

// DueText describes how far away a due date is relative to now.
func DueText(due string, now time.Time) string {
	days, ok := DaysUntil(due, now)
	switch {
	case !ok:
		return due
	case days < 0:
		return fmt.Sprintf("⚠ OVERDUE by %d %s", -days, utils.Plural(-days, "day", "days"))
	case days == 0:
		return "⚠ DUE TODAY"
	default:
		return fmt.Sprintf("Due in %d %s", days, utils.Plural(days, "day", "days"))
	}
}
