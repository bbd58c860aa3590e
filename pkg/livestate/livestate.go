// Package livestate reads the live, user-editable suggestion records that take precedence over pipeline
// snapshots. The live store is owned by the assistant's UI; this package never writes to it.
package livestate

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/model"
)

// Provider supplies the current list of user-visible suggestions
type Provider interface {
	ListSuggestions(ctx context.Context) ([]*model.LiveSuggestion, error)
}

// Static serves a fixed list of suggestions. A nil Static serves nothing.
type Static struct {
	suggestions []*model.LiveSuggestion
}

// NewStatic creates a Static provider
func NewStatic(suggestions ...*model.LiveSuggestion) *Static {
	return &Static{suggestions: suggestions}
}

func (s *Static) ListSuggestions(ctx context.Context) ([]*model.LiveSuggestion, error) {
	if s == nil {
		return nil, nil
	}
	out := make([]*model.LiveSuggestion, len(s.suggestions))
	copy(out, s.suggestions)
	return out, nil
}

// File reads the assistant's persisted state document, either {"suggestions": [...]} or a bare array
type File struct {
	path string
}

// NewFile creates a File provider reading path on every call
func NewFile(path string) *File {
	return &File{path: path}
}

type stateDocument struct {
	Suggestions []*model.LiveSuggestion `json:"suggestions"`
}

func (f *File) ListSuggestions(ctx context.Context) ([]*model.LiveSuggestion, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		// Nothing has surfaced to the user yet
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read live state", goerr.V("path", f.path))
	}

	var doc stateDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		var list []*model.LiveSuggestion
		if errList := json.Unmarshal(data, &list); errList != nil {
			return nil, goerr.Wrap(err, "failed to parse live state", goerr.V("path", f.path))
		}
		return list, nil
	}

	return doc.Suggestions, nil
}
