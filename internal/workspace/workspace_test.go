package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestFilesScanAndLookup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Plan.md", "# Plan\n")
	writeFile(t, dir, "Other.md", "# Other\n")
	writeFile(t, dir, ".hidden", "secret")

	files := NewFiles(dir)
	if err := files.Scan(); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	list := files.List()
	if len(list) != 2 {
		t.Fatalf("List() returned %d files, want 2 (hidden files skipped)", len(list))
	}

	// Sorted by name.
	if list[0].Name != "Other.md" || list[1].Name != "Plan.md" {
		t.Errorf("List() order = [%s, %s]", list[0].Name, list[1].Name)
	}

	if _, ok := files.Lookup("Plan.md"); !ok {
		t.Error("Lookup(Plan.md) not found")
	}
	if _, ok := files.Lookup("Missing.md"); ok {
		t.Error("Lookup(Missing.md) unexpectedly found")
	}
}

func TestFilesMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Plan.md", "x")
	writeFile(t, dir, "Other.md", "x")
	writeFile(t, dir, "planning-notes.txt", "x")

	files := NewFiles(dir)
	if err := files.Scan(); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	matched := files.Match("Pl")
	if len(matched) != 2 {
		t.Fatalf("Match(Pl) returned %d files, want 2", len(matched))
	}
	for _, fi := range matched {
		if fi.Name != "Plan.md" && fi.Name != "planning-notes.txt" {
			t.Errorf("Match(Pl) returned unexpected file %s", fi.Name)
		}
	}

	if got := files.Match(""); len(got) != 3 {
		t.Errorf("Match(\"\") returned %d files, want all 3", len(got))
	}
}

func TestFilesReadLineRange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Spec.md", "line1\nline2\nline3\nline4\nline5")

	files := NewFiles(dir)
	if err := files.Scan(); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	tests := []struct {
		name    string
		start   int
		end     int
		want    string
		wantErr bool
	}{
		{name: "whole file", start: 0, end: 0, want: "line1\nline2\nline3\nline4\nline5"},
		{name: "middle span", start: 2, end: 4, want: "line2\nline3\nline4"},
		{name: "single line", start: 3, end: 3, want: "line3"},
		{name: "end clamped", start: 4, end: 99, want: "line4\nline5"},
		{name: "start past end of file", start: 10, end: 12, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := files.Read("Spec.md", tt.start, tt.end)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Read() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Read() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilesReadRejectsBinary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blob.bin", "\xff\xfe\x00binary")

	files := NewFiles(dir)
	if err := files.Scan(); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if _, err := files.Read("blob.bin", 0, 0); err == nil {
		t.Error("Read() on binary content did not fail")
	}
}

func TestTasksLoadMissingFileIsEmptyBoard(t *testing.T) {
	tasks := NewTasks(filepath.Join(t.TempDir(), "tasks.yaml"))

	if err := tasks.Load(); err != nil {
		t.Fatalf("Load() on missing file error = %v", err)
	}
	if got := tasks.List(); len(got) != 0 {
		t.Errorf("List() = %d tasks, want 0", len(got))
	}
}

func TestTasksRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	tasks := NewTasks(path)

	tasks.Add(Task{Title: "Ship v1", Priority: "high"})
	tasks.Add(Task{Title: "Write docs", Status: StatusDoing})
	if err := tasks.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded := NewTasks(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	list := reloaded.List()
	if len(list) != 2 {
		t.Fatalf("List() = %d tasks, want 2", len(list))
	}
	if list[0].Title != "Ship v1" || list[0].Status != StatusTodo {
		t.Errorf("task 0 = %+v, want Ship v1 in todo (default status)", list[0])
	}
	if list[1].Status != StatusDoing {
		t.Errorf("task 1 status = %s, want doing", list[1].Status)
	}
}

func TestTasksCycleStatus(t *testing.T) {
	tasks := NewTasks(filepath.Join(t.TempDir(), "tasks.yaml"))
	tasks.Add(Task{Title: "Ship v1"})

	for _, want := range []TaskStatus{StatusDoing, StatusDone, StatusTodo} {
		if !tasks.CycleStatus("Ship v1") {
			t.Fatal("CycleStatus() did not find task")
		}
		got, _ := tasks.Lookup("Ship v1")
		if got.Status != want {
			t.Errorf("status = %s, want %s", got.Status, want)
		}
	}

	if tasks.CycleStatus("Missing") {
		t.Error("CycleStatus() found a task that does not exist")
	}
}

func TestDocumentsCreateUpdate(t *testing.T) {
	docs := NewDocuments()

	if err := docs.Create("roadmap.md", "# Roadmap\n"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := docs.Create("roadmap.md", "dup"); err == nil {
		t.Error("Create() on existing name did not fail")
	}
	if err := docs.Create("", "x"); err == nil {
		t.Error("Create() with empty name did not fail")
	}

	if err := docs.Update("roadmap.md", "- item\n", true); err != nil {
		t.Fatalf("Update(append) error = %v", err)
	}
	doc, ok := docs.Get("roadmap.md")
	if !ok {
		t.Fatal("Get() did not find document")
	}
	if doc.Content != "# Roadmap\n- item\n" {
		t.Errorf("content after append = %q", doc.Content)
	}

	if err := docs.Update("roadmap.md", "replaced", false); err != nil {
		t.Fatalf("Update(replace) error = %v", err)
	}
	doc, _ = docs.Get("roadmap.md")
	if doc.Content != "replaced" {
		t.Errorf("content after replace = %q", doc.Content)
	}

	if err := docs.Update("missing.md", "x", false); err == nil {
		t.Error("Update() on missing document did not fail")
	}
}

func TestDocumentsReset(t *testing.T) {
	docs := NewDocuments()
	if err := docs.Create("a.md", "x"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	docs.Reset()

	if got := docs.List(); len(got) != 0 {
		t.Errorf("List() after Reset = %d documents, want 0", len(got))
	}
}
