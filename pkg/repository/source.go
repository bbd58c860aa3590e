package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrNotFound    = goerr.New("object not found")
	ErrInvalidName = goerr.New("object name escapes its directory")
)

// Source is the raw storage that stage directories live in. Directory names are relative to the
// source's root.
type Source interface {
	// List returns the base names of all objects directly under dir, sorted. A missing dir is not an
	// error and yields an empty list.
	List(ctx context.Context, dir string) ([]string, error)

	// Read returns the contents of dir/name. A missing object yields an error wrapping ErrNotFound.
	// A name that resolves outside dir yields an error wrapping ErrInvalidName.
	Read(ctx context.Context, dir, name string) ([]byte, error)
}

// FileSource reads stage directories from the local filesystem
type FileSource struct {
	root string
}

// NewFileSource creates a Source rooted at root
func NewFileSource(root string) *FileSource {
	return &FileSource{root: root}
}

func (s *FileSource) path(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(s.root, dir)
}

func (s *FileSource) List(ctx context.Context, dir string) ([]string, error) {
	path := s.path(dir)
	entries, err := os.ReadDir(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read stage directory", goerr.V("dir", path))
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *FileSource) Read(ctx context.Context, dir, name string) ([]byte, error) {
	base := s.path(dir)
	path := filepath.Join(base, name)
	if rel, err := filepath.Rel(base, path); err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, goerr.Wrap(ErrInvalidName, "refusing to read outside stage directory", goerr.V("dir", base), goerr.V("name", name))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(ErrNotFound, "file does not exist", goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read file", goerr.V("path", path))
	}
	return data, nil
}
