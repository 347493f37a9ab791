package todo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Store owns the task collection and its backing file.
type Store struct {
	path    string
	tasks   []Task
	logger  *log.Logger
	now     func() time.Time
	loadErr error
	saveErr error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and save diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source for creation and completion timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open loads the task file at path. It never fails: a missing file is
// created empty, and an unreadable or corrupted file is reported through
// the logger and LoadErr while the store starts empty.
func Open(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		tasks:  []Task{},
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// LoadErr returns the problem encountered while loading, if any.
func (s *Store) LoadErr() error {
	return s.loadErr
}

// LastSaveErr returns the error from the most recent save, or nil.
func (s *Store) LastSaveErr() error {
	return s.saveErr
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Tasks returns a copy of the collection in insertion order.
func (s *Store) Tasks() []Task {
	return slices.Clone(s.tasks)
}

// Reload discards the in-memory collection and loads the file again.
func (s *Store) Reload() {
	s.tasks = []Task{}
	s.loadErr = nil
	s.load()
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.tasks = []Task{}
		s.persist()
		if s.saveErr == nil {
			s.logger.Info("Created new task file", "path", s.path)
		}
		return
	}
	if err != nil {
		s.recoverEmpty(fmt.Errorf("read task file: %w", err))
		return
	}

	tasks, err := decodeTasks(data)
	if err != nil {
		s.recoverEmpty(err)
		return
	}
	s.tasks = tasks
	s.logger.Info("Loaded tasks", "count", len(tasks), "path", s.path)
}

func (s *Store) recoverEmpty(err error) {
	s.loadErr = err
	s.tasks = []Task{}
	s.logger.Warn("Error reading task file, starting with an empty task list", "path", s.path, "err", err)
}

// decodeTasks parses and validates a task file.
func decodeTasks(data []byte) ([]Task, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse task file: %w", ErrCorrupted, err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: decode tasks: %w", ErrCorrupted, err)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	for i := range tasks {
		tasks[i].CreatedAt = dropZero(tasks[i].CreatedAt)
		tasks[i].CompletedAt = dropZero(tasks[i].CompletedAt)
	}
	return tasks, nil
}

// dropZero maps an empty timestamp ("") to absent so it is not written
// back as the zero time.
func dropZero(ts *Timestamp) *Timestamp {
	if ts == nil || ts.IsZero() {
		return nil
	}
	return ts
}

// Save writes the whole collection to the backing file with 2-space
// indentation, replacing its previous content.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}

	// Add trailing newline
	data = append(data, '\n')

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create task dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	return nil
}

// persist saves after a mutation. A failure is logged and remembered but
// not returned: memory stays authoritative until a later save succeeds.
func (s *Store) persist() {
	s.saveErr = s.Save()
	if s.saveErr != nil {
		s.logger.Error("Error saving tasks", "path", s.path, "err", s.saveErr)
	}
}

// AddInput holds the fields of a new task. Empty strings mean "not given".
type AddInput struct {
	Description string
	DueDate     string
	Priority    string
	Category    string
}

// Add validates in, appends a new task, and saves.
func (s *Store) Add(in AddInput) (Task, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return Task{}, &ValidationError{
			Path: "description",
			Err:  errors.New("task description cannot be empty"),
		}
	}

	var due *string
	if in.DueDate != "" {
		if _, err := time.Parse(DateLayout, in.DueDate); err != nil {
			return Task{}, &ValidationError{
				Path: "due_date",
				Err:  fmt.Errorf("due date must be in YYYY-MM-DD format (got %q)", in.DueDate),
			}
		}
		d := in.DueDate
		due = &d
	}

	priority, err := ParsePriority(in.Priority)
	if err != nil {
		return Task{}, err
	}

	var category *string
	if in.Category != "" {
		c := in.Category
		category = &c
	}

	task := Task{
		ID:          s.nextID(),
		Description: description,
		DueDate:     due,
		Priority:    priority,
		Category:    category,
		Completed:   false,
		CreatedAt:   NewTimestamp(s.now()),
	}
	s.tasks = append(s.tasks, task)
	s.persist()
	return task, nil
}

// nextID returns the highest existing ID plus one.
func (s *Store) nextID() int {
	maxID := 0
	for _, t := range s.tasks {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID + 1
}

// Find returns the task with the given ID.
func (s *Store) Find(id int) (Task, error) {
	i, err := s.indexOf(id)
	if err != nil {
		return Task{}, err
	}
	return s.tasks[i], nil
}

func (s *Store) indexOf(id int) (int, error) {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i, nil
		}
	}
	return -1, &NotFoundError{ID: id}
}

// Complete marks a task as completed and saves. If the task was already
// completed it is left untouched and changed is false.
func (s *Store) Complete(id int) (task Task, changed bool, err error) {
	i, err := s.indexOf(id)
	if err != nil {
		return Task{}, false, err
	}
	if s.tasks[i].Completed {
		return s.tasks[i], false, nil
	}
	s.tasks[i].Completed = true
	s.tasks[i].CompletedAt = NewTimestamp(s.now())
	s.persist()
	return s.tasks[i], true, nil
}

// Delete removes a task and saves. It returns the removed task.
func (s *Store) Delete(id int) (Task, error) {
	i, err := s.indexOf(id)
	if err != nil {
		return Task{}, err
	}
	removed := s.tasks[i]
	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.persist()
	return removed, nil
}

// Search returns tasks whose description contains query, ignoring case,
// in collection order.
func (s *Store) Search(query string) []Task {
	q := strings.ToLower(query)
	results := []Task{}
	for _, t := range s.tasks {
		if strings.Contains(strings.ToLower(t.Description), q) {
			results = append(results, t)
		}
	}
	return results
}

// ListOptions selects which tasks List returns.
type ListOptions struct {
	// ShowCompleted keeps completed tasks. Ignored when CompletedOnly is set.
	ShowCompleted bool
	// CompletedOnly keeps only completed tasks.
	CompletedOnly bool
	// Category keeps only exact, case-sensitive matches when non-empty.
	Category string
	// Priority keeps only matching priorities (case-insensitive) when non-empty.
	Priority string
}

// DefaultListOptions shows every task.
func DefaultListOptions() ListOptions {
	return ListOptions{ShowCompleted: true}
}

// ListResult is the filtered, partitioned view produced by List.
type ListResult struct {
	Pending    []Task // sorted by due date, undated last
	Completed  []Task // collection order
	StoreEmpty bool   // the store holds no tasks at all
}

// Empty reports whether nothing matched.
func (r ListResult) Empty() bool {
	return len(r.Pending) == 0 && len(r.Completed) == 0
}

// Total returns the number of matched tasks.
func (r ListResult) Total() int {
	return len(r.Pending) + len(r.Completed)
}

// undatedSortKey orders tasks without a due date after every dated task.
const undatedSortKey = "9999-99-99"

// List filters the collection and splits it into pending and completed
// tasks. Filters apply in order: completion state, category, priority.
func (s *Store) List(opts ListOptions) ListResult {
	result := ListResult{
		Pending:    []Task{},
		Completed:  []Task{},
		StoreEmpty: len(s.tasks) == 0,
	}

	priority := strings.ToLower(opts.Priority)
	for _, t := range s.tasks {
		switch {
		case opts.CompletedOnly && !t.Completed:
			continue
		case !opts.CompletedOnly && !opts.ShowCompleted && t.Completed:
			continue
		}
		if opts.Category != "" && t.CategoryName() != opts.Category {
			continue
		}
		if priority != "" && string(t.Priority) != priority {
			continue
		}
		if t.Completed {
			result.Completed = append(result.Completed, t)
		} else {
			result.Pending = append(result.Pending, t)
		}
	}

	sort.SliceStable(result.Pending, func(i, j int) bool {
		return dueSortKey(&result.Pending[i]) < dueSortKey(&result.Pending[j])
	})
	return result
}

func dueSortKey(t *Task) string {
	if due := t.Due(); due != "" {
		return due
	}
	return undatedSortKey
}
