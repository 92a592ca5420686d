// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/specialistvlad/embedcheck/internal/document"
)

// SkippedDirs are never descended into.
var SkippedDirs = []string{".git", "node_modules", "vendor"}

// Finder locates lintable documents under a root.
type Finder struct {
	// Exclude holds glob patterns matched against slash-separated paths
	// relative to the root. A pattern matching a directory excludes its
	// whole subtree.
	Exclude []string
}

// FindDocuments returns every document under root whose kind can be
// detected, in lexical walk order. A root that is a file is returned as is.
func (f *Finder) FindDocuments(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && f.skipDir(root, path, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if f.excluded(root, path) {
			return nil
		}
		if document.DetectKind(path) != document.Unknown {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Dirs returns root and every directory below it that FindDocuments would
// descend into.
func (f *Finder) Dirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && f.skipDir(root, path, d.Name()) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}

func (f *Finder) skipDir(root, path, name string) bool {
	return slices.Contains(SkippedDirs, name) || f.excluded(root, path)
}

func (f *Finder) excluded(root, path string) bool {
	if len(f.Exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range f.Exclude {
		pattern = strings.TrimSuffix(filepath.ToSlash(pattern), "/")
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok && !strings.Contains(pattern, "/") {
			return true
		}
	}
	return false
}
