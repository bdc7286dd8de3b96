// Package editor adapts a file on disk to the document operations the
// assistant needs: read the current text, replace it, insert at a position,
// save. Changes are announced on the event bus.
package editor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matiasleandrokruk/seekassist/internal/infra/eventbus"
)

// Bus topics.
const (
	TopicContentChanged = "editor.content_changed"
	TopicFileSaved      = "editor.file_saved"
)

// Change sources carried by ContentChanged.
const (
	SourceEdit = "edit"
	SourceDisk = "disk"
)

// ContentChanged is the TopicContentChanged payload.
type ContentChanged struct {
	Path   string `json:"path"`
	Source string `json:"source"`
}

// FileSaved is the TopicFileSaved payload.
type FileSaved struct {
	Path string `json:"path"`
}

var (
	ErrNoDocument = errors.New("editor: no active document")
	ErrPosition   = errors.New("editor: position out of range")
)

// FileDocument is a file-backed document. The zero value has no active document.
type FileDocument struct {
	path string
	bus  eventbus.EventBus

	mu      sync.Mutex
	content string
	dirty   bool
}

// Open loads path. bus may be nil.
func Open(path string, bus eventbus.EventBus) (*FileDocument, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("editor: resolve %q: %w", path, err)
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("editor: open: %w", err)
	}
	return &FileDocument{path: abs, bus: bus, content: string(b)}, nil
}

func (d *FileDocument) HasActiveEditor() bool { return d != nil && d.path != "" }

func (d *FileDocument) CurrentFilePath() string {
	if d == nil {
		return ""
	}
	return d.path
}

func (d *FileDocument) CurrentFileName() string {
	if !d.HasActiveEditor() {
		return ""
	}
	return filepath.Base(d.path)
}

// CurrentFileContent returns the in-memory text, including unsaved edits.
func (d *FileDocument) CurrentFileContent() (string, error) {
	if !d.HasActiveEditor() {
		return "", ErrNoDocument
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.content, nil
}

// Dirty reports unsaved edits.
func (d *FileDocument) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

// ReplaceContent swaps the whole text.
func (d *FileDocument) ReplaceContent(content string) error {
	if !d.HasActiveEditor() {
		return ErrNoDocument
	}
	d.mu.Lock()
	d.content = content
	d.dirty = true
	d.mu.Unlock()

	d.publish(TopicContentChanged, ContentChanged{Path: d.path, Source: SourceEdit})
	return nil
}

// InsertAt inserts text before the given 1-based line and rune column.
// Column len(line)+1 appends to the line. Line count+1 at column 1 is the end
// of a document without a trailing newline.
func (d *FileDocument) InsertAt(line, column int, text string) error {
	if !d.HasActiveEditor() {
		return ErrNoDocument
	}

	d.mu.Lock()
	offset, ok := offsetOf(d.content, line, column)
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("%w: %d:%d", ErrPosition, line, column)
	}
	d.content = d.content[:offset] + text + d.content[offset:]
	d.dirty = true
	d.mu.Unlock()

	d.publish(TopicContentChanged, ContentChanged{Path: d.path, Source: SourceEdit})
	return nil
}

// Save writes the text through a temp file and rename, keeping the file mode.
func (d *FileDocument) Save() error {
	if !d.HasActiveEditor() {
		return ErrNoDocument
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	mode := os.FileMode(0o644)
	if fi, err := os.Stat(d.path); err == nil {
		mode = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), "."+filepath.Base(d.path)+".*")
	if err != nil {
		return fmt.Errorf("editor: save: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after rename

	if _, err := tmp.WriteString(d.content); err != nil {
		tmp.Close()
		return fmt.Errorf("editor: save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("editor: save: %w", err)
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("editor: save: %w", err)
	}
	if err := os.Rename(tmp.Name(), d.path); err != nil {
		return fmt.Errorf("editor: save: %w", err)
	}
	d.dirty = false

	d.publish(TopicFileSaved, FileSaved{Path: d.path})
	return nil
}

// reload replaces the text with the disk copy when there are no unsaved edits.
// It reports whether the text changed.
func (d *FileDocument) reload() (bool, error) {
	b, err := os.ReadFile(d.path)
	if err != nil {
		return false, err
	}

	d.mu.Lock()
	if d.dirty || string(b) == d.content {
		d.mu.Unlock()
		return false, nil
	}
	d.content = string(b)
	d.mu.Unlock()

	d.publish(TopicContentChanged, ContentChanged{Path: d.path, Source: SourceDisk})
	return true, nil
}

func (d *FileDocument) publish(topic string, payload any) {
	if d.bus != nil {
		d.bus.Publish(topic, payload)
	}
}

// offsetOf maps a 1-based line/column (columns in runes) to a byte offset.
func offsetOf(content string, line, column int) (int, bool) {
	if line < 1 || column < 1 {
		return 0, false
	}

	start := 0
	for l := 1; l < line; l++ {
		i := strings.IndexByte(content[start:], '\n')
		if i < 0 {
			// one past the last line is allowed at column 1 only
			if l == line-1 && column == 1 {
				return len(content), true
			}
			return 0, false
		}
		start += i + 1
	}

	end := len(content)
	if i := strings.IndexByte(content[start:], '\n'); i >= 0 {
		end = start + i
	}

	col := 1
	for pos := range content[start:end] {
		if col == column {
			return start + pos, true
		}
		col++
	}
	if col == column {
		return end, true
	}
	return 0, false
}
