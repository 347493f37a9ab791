package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tasker-go/internal/todo"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

type tuiConfig struct {
	color bool
	now   func() time.Time
}

// WithTUIColor enables or disables styled output in the browser.
func WithTUIColor(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.color = enabled
	}
}

// WithTUIClock sets the time used for due-date text.
func WithTUIClock(now func() time.Time) TUIOption {
	return func(c *tuiConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// RunTUI starts the interactive task browser over store.
func RunTUI(ctx context.Context, store *todo.Store, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := newTUIModel(store, os.Stdout, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type tuiFilter int

const (
	filterAll tuiFilter = iota
	filterPending
	filterCompleted
)

func (f tuiFilter) String() string {
	switch f {
	case filterPending:
		return "pending"
	case filterCompleted:
		return "completed"
	default:
		return "all"
	}
}

type tuiModel struct {
	store        *todo.Store
	now          func() time.Time
	styles       Styles
	rows         []todo.Task
	cursor       int
	filter       tuiFilter
	showHelp     bool
	message      string
	tickInterval time.Duration
}

type tickMsg time.Time

func newTUIModel(store *todo.Store, w io.Writer, opts ...TUIOption) *tuiModel {
	c := &tuiConfig{color: true, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return &tuiModel{
		store:        store,
		now:          c.now,
		styles:       NewStyles(lipgloss.NewRenderer(w), c.color),
		tickInterval: time.Minute,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "j", "down":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "x", "enter":
			m.completeSelected()
		case "r", "f5":
			m.store.Reload()
			m.message = "Reloaded " + m.store.Path()
			if err := m.store.LoadErr(); err != nil {
				m.message = "Reload failed: " + err.Error()
			}
			m.refresh()
		case "h", "?":
			m.showHelp = !m.showHelp
		case "0":
			m.setFilter(filterAll)
		case "1":
			m.setFilter(filterPending)
		case "2":
			m.setFilter(filterCompleted)
		}
	case tickMsg:
		// Due-date text depends on the current day.
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	m.writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		m.writeFooter(&b)
		return b.String()
	}

	if m.filter != filterAll {
		b.WriteString(fmt.Sprintf("Filter: %s (0 to clear)\n\n", m.filter))
	}

	if len(m.rows) == 0 {
		if m.store.Len() == 0 {
			b.WriteString("  No tasks yet. Add one to get started!\n\n")
		} else {
			b.WriteString("  No tasks match your filters.\n\n")
		}
	} else {
		for i := range m.rows {
			line := m.formatRow(&m.rows[i])
			if i == m.cursor {
				line = m.styles.Selected.Render("> " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if m.message != "" {
		b.WriteString(m.message + "\n\n")
	}
	m.writeFooter(&b)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *tuiModel) setFilter(f tuiFilter) {
	m.filter = f
	m.cursor = 0
	m.refresh()
}

// refresh rebuilds the visible rows from the store, keeping the cursor in
// range.
func (m *tuiModel) refresh() {
	opts := todo.DefaultListOptions()
	switch m.filter {
	case filterAll:
		opts.ShowCompleted = true
	case filterPending:
		opts.ShowCompleted = false
	case filterCompleted:
		opts.CompletedOnly = true
	}
	result := m.store.List(opts)
	m.rows = append(result.Pending, result.Completed...)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) completeSelected() {
	if len(m.rows) == 0 {
		return
	}
	id := m.rows[m.cursor].ID
	task, changed, err := m.store.Complete(id)
	switch {
	case err != nil:
		m.message = err.Error()
	case !changed:
		m.message = fmt.Sprintf("Task #%d is already completed", id)
	case m.store.LastSaveErr() != nil:
		m.message = fmt.Sprintf("Completed task #%d, but saving failed: %v", task.ID, m.store.LastSaveErr())
	default:
		m.message = fmt.Sprintf("Completed task #%d: %s", task.ID, task.Description)
	}
	m.refresh()
}

func (m *tuiModel) formatRow(t *todo.Task) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	line := fmt.Sprintf("[%s] #%d %s", mark, t.ID, t.Description)
	if t.Priority != "" {
		line += " " + m.styles.Priority[t.Priority].Render("("+string(t.Priority)+")")
	}
	if due := t.Due(); due != "" {
		line += "  " + due
		if !t.Completed {
			line += " " + DueText(due, m.now())
		}
	}
	if category := t.CategoryName(); category != "" {
		line += "  @" + category
	}
	return line
}

func (m *tuiModel) writeTitle(b *strings.Builder) {
	title := "Tasker"
	b.WriteString(m.styles.Header.Render(title) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  j, down      Move down\n")
	b.WriteString("  k, up        Move up\n")
	b.WriteString("  x, enter     Complete selected task\n")
	b.WriteString("  r, F5        Reload task file\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  1            Show pending tasks\n")
	b.WriteString("  2            Show completed tasks\n")
	b.WriteString("  0            Show all tasks\n\n")
}

func (m *tuiModel) writeFooter(b *strings.Builder) {
	b.WriteString(fmt.Sprintf("%d tasks in %s | h for help | q to quit\n", m.store.Len(), m.store.Path()))
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
