// Package workspace supplies the project entities the chat feature can
// reference inline: files under the project root, tasks from the YAML task
// board, and documents created by the advisor's tools. Lookups are by
// display name, matching the reference tag grammar.
package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"

	"github.com/forgelabs/forge-tui/internal/logging"
)

// maxCatalogFiles caps the scan so a huge project root cannot stall the
// mention picker.
const maxCatalogFiles = 2000

// maxReadBytes limits how much of a referenced file is resolved into
// prompt context.
const maxReadBytes = 256 * 1024

// FileInfo describes one referencable workspace file.
type FileInfo struct {
	Name     string // base name, the identity used in reference tags
	Path     string // path relative to the workspace root
	Size     int64
	Modified time.Time
}

// Files is the catalog of referencable files under the workspace root.
// The catalog is rebuilt by Scan and kept fresh by Watch; reads are safe
// from the TUI event loop while the watcher goroutine refreshes.
type Files struct {
	root   string
	logger *logging.Logger

	mu      sync.RWMutex
	list    []FileInfo
	watcher *fsnotify.Watcher
}

// NewFiles creates a catalog rooted at the given directory. Call Scan
// before first use.
func NewFiles(root string) *Files {
	return &Files{
		root:   root,
		logger: logging.WithComponent("workspace-files"),
	}
}

// Root returns the workspace root directory.
func (f *Files) Root() string {
	return f.root
}

// Scan rebuilds the catalog from disk. Hidden entries and files that are
// not valid UTF-8 text are skipped; the walk stops after maxCatalogFiles.
func (f *Files) Scan() error {
	var files []FileInfo

	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are just not referencable
		}
		name := d.Name()
		if path != f.root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			rel = path
		}
		files = append(files, FileInfo{
			Name:     name,
			Path:     rel,
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
		if len(files) >= maxCatalogFiles {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan workspace %s: %w", f.root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	f.mu.Lock()
	f.list = files
	f.mu.Unlock()

	f.logger.Debug("Workspace scan completed", "root", f.root, "files", len(files))
	return nil
}

// Watch starts an fsnotify watcher on the workspace root and rescans on
// any change. Stop it with Close.
func (f *Files) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create workspace watcher: %w", err)
	}
	if err := watcher.Add(f.root); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", f.root, err)
	}
	f.watcher = watcher

	go func() {
		for {
			select {
			case _, ok := <-watcher.Events:
				if !ok {
					return
				}
				// A full rescan is cheap at catalog scale and avoids
				// tracking per-event create/rename/remove deltas.
				if err := f.Scan(); err != nil {
					f.logger.Warn("Workspace rescan failed", "error", err.Error())
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.logger.Warn("Workspace watcher error", "error", err.Error())
			}
		}
	}()

	f.logger.Info("Watching workspace", "root", f.root)
	return nil
}

// Close stops the watcher if one is running.
func (f *Files) Close() error {
	if f.watcher != nil {
		return f.watcher.Close()
	}
	return nil
}

// List returns a snapshot of the catalog.
func (f *Files) List() []FileInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]FileInfo, len(f.list))
	copy(out, f.list)
	return out
}

// Lookup finds a file by display name. With duplicate base names the
// first match in sorted order wins; reference tags carry no stable ID to
// disambiguate.
func (f *Files) Lookup(name string) (FileInfo, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, fi := range f.list {
		if fi.Name == name {
			return fi, true
		}
	}
	return FileInfo{}, false
}

// Match returns catalog entries whose name contains the term,
// case-insensitively. An empty term matches everything.
func (f *Files) Match(term string) []FileInfo {
	term = strings.ToLower(term)
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []FileInfo
	for _, fi := range f.list {
		if term == "" || strings.Contains(strings.ToLower(fi.Name), term) {
			out = append(out, fi)
		}
	}
	return out
}

// Read resolves a referenced file's content, optionally narrowed to a
// 1-based inclusive line span. Binary content is rejected rather than fed
// to the advisor.
func (f *Files) Read(name string, startLine, endLine int) (string, error) {
	fi, ok := f.Lookup(name)
	if !ok {
		return "", fmt.Errorf("file %q not found in workspace", name)
	}

	data, err := os.ReadFile(filepath.Join(f.root, fi.Path))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", fi.Path, err)
	}
	if len(data) > maxReadBytes {
		data = data[:maxReadBytes]
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("file %q is not text", name)
	}

	content := string(data)
	if startLine <= 0 {
		return content, nil
	}

	lines := strings.Split(content, "\n")
	if startLine > len(lines) {
		return "", fmt.Errorf("file %q has %d lines, requested start %d", name, len(lines), startLine)
	}
	if endLine > len(lines) {
		endLine = len(lines)
	}
	if endLine < startLine {
		endLine = startLine
	}
	return strings.Join(lines[startLine-1:endLine], "\n"), nil
}
