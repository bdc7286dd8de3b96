// Package project collects the path → content map sent with an analysis
// request.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Defaults for Options zero values.
const (
	DefaultMaxFileSize = 256 << 10
	DefaultMaxFiles    = 500
)

// DefaultSkipDirs are VCS, dependency and build directories never descended into.
var DefaultSkipDirs = []string{
	".git", ".hg", ".svn", "node_modules", "vendor", "target",
	"build", "dist", ".next", ".cache", ".idea", ".vscode", "__pycache__", ".venv",
}

// Options tunes Scan. Zero values select the defaults.
type Options struct {
	MaxFileSize int64
	MaxFiles    int
	SkipDirs    []string
	// Extensions restricts content to these lowercase extensions (".go").
	// Empty means every text file.
	Extensions []string
}

// ErrNotDir is returned when root is not a directory.
var ErrNotDir = errors.New("project: root is not a directory")

// Scan walks root and returns repo-relative, slash-separated paths mapped to
// file content. Binary files, files over MaxFileSize and skipped directories
// are left out. Unreadable entries are skipped rather than failing the scan.
func Scan(root string, opts Options) (map[string]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("project: stat %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDir, root)
	}
	opts = opts.withDefaults()

	skip := make(map[string]bool, len(opts.SkipDirs))
	for _, d := range opts.SkipDirs {
		skip[d] = true
	}

	files := make(map[string]string)
	errLimit := errors.New("limit")

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && skip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !opts.wants(path) {
			return nil
		}

		fi, err := d.Info()
		if err != nil || fi.Size() > opts.MaxFileSize {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil || isBinary(b) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		files[filepath.ToSlash(rel)] = string(b)
		if len(files) >= opts.MaxFiles {
			return errLimit
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimit) {
		return nil, fmt.Errorf("project: walk %q: %w", root, err)
	}
	return files, nil
}

func (o Options) withDefaults() Options {
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = DefaultMaxFileSize
	}
	if o.MaxFiles <= 0 {
		o.MaxFiles = DefaultMaxFiles
	}
	if o.SkipDirs == nil {
		o.SkipDirs = DefaultSkipDirs
	}
	return o
}

func (o Options) wants(path string) bool {
	if len(o.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range o.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// isBinary treats a NUL byte in the first 8 KiB as binary content.
func isBinary(b []byte) bool {
	if len(b) > 8<<10 {
		b = b[:8<<10]
	}
	return bytes.IndexByte(b, 0) >= 0
}
