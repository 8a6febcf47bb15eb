package workspace

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// TaskStatus is the board column a task sits in.
type TaskStatus string

const (
	StatusTodo  TaskStatus = "todo"
	StatusDoing TaskStatus = "doing"
	StatusDone  TaskStatus = "done"
)

// Next cycles a task to its next board column.
func (s TaskStatus) Next() TaskStatus {
	switch s {
	case StatusTodo:
		return StatusDoing
	case StatusDoing:
		return StatusDone
	default:
		return StatusTodo
	}
}

// Task is one task board entry. The title is the identity used in
// reference tags.
type Task struct {
	Title    string     `yaml:"title"`
	Status   TaskStatus `yaml:"status"`
	Priority string     `yaml:"priority,omitempty"`
	Notes    string     `yaml:"notes,omitempty"`
}

// taskFile is the on-disk shape of the task board.
type taskFile struct {
	Tasks []Task `yaml:"tasks"`
}

// Tasks is the YAML-backed task board.
type Tasks struct {
	path string

	mu    sync.RWMutex
	tasks []Task
}

// NewTasks creates a task store backed by the given YAML file. Call Load
// before first use; a missing file is an empty board, not an error.
func NewTasks(path string) *Tasks {
	return &Tasks{path: path}
}

// Load reads the task board from disk.
func (t *Tasks) Load() error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			t.mu.Lock()
			t.tasks = nil
			t.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to read task board %s: %w", t.path, err)
	}

	var file taskFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse task board %s: %w", t.path, err)
	}

	for i := range file.Tasks {
		if file.Tasks[i].Status == "" {
			file.Tasks[i].Status = StatusTodo
		}
	}

	t.mu.Lock()
	t.tasks = file.Tasks
	t.mu.Unlock()
	return nil
}

// Save writes the task board back to disk.
func (t *Tasks) Save() error {
	t.mu.RLock()
	file := taskFile{Tasks: t.tasks}
	data, err := yaml.Marshal(&file)
	t.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal task board: %w", err)
	}

	if err := os.WriteFile(t.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write task board %s: %w", t.path, err)
	}
	return nil
}

// List returns a snapshot of the board.
func (t *Tasks) List() []Task {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Task, len(t.tasks))
	copy(out, t.tasks)
	return out
}

// Lookup finds a task by title.
func (t *Tasks) Lookup(title string) (Task, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, task := range t.tasks {
		if task.Title == title {
			return task, true
		}
	}
	return Task{}, false
}

// Match returns tasks whose title contains the term, case-insensitively.
// An empty term matches everything.
func (t *Tasks) Match(term string) []Task {
	term = strings.ToLower(term)
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Task
	for _, task := range t.tasks {
		if term == "" || strings.Contains(strings.ToLower(task.Title), term) {
			out = append(out, task)
		}
	}
	return out
}

// Add appends a task to the board.
func (t *Tasks) Add(task Task) {
	if task.Status == "" {
		task.Status = StatusTodo
	}
	t.mu.Lock()
	t.tasks = append(t.tasks, task)
	t.mu.Unlock()
}

// CycleStatus advances the named task to its next column and reports
// whether the task exists.
func (t *Tasks) CycleStatus(title string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.tasks {
		if t.tasks[i].Title == title {
			t.tasks[i].Status = t.tasks[i].Status.Next()
			return true
		}
	}
	return false
}
