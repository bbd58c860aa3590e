package repository

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/utils/logging"
)

// RecordExt is the canonical extension of stage record files
const RecordExt = ".json"

// Stage is the read side of one pipeline stage's output directory
type Stage[T any] interface {
	// LoadAll parses every record of the stage. Individual unreadable records are skipped.
	LoadAll(ctx context.Context) ([]*T, error)
}

type sourceStage[T any] struct {
	src Source
	dir string
}

// NewStage creates a Stage reading JSON records from dir of src
func NewStage[T any](src Source, dir string) Stage[T] {
	return &sourceStage[T]{
		src: src,
		dir: dir,
	}
}

// isRecordFile reports whether name is a record file. Names starting with "_" are reserved for the
// producers.
func isRecordFile(name string) bool {
	return !strings.HasPrefix(name, "_") && strings.HasSuffix(name, RecordExt)
}

func (s *sourceStage[T]) LoadAll(ctx context.Context) ([]*T, error) {
	names, err := s.src.List(ctx, s.dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list stage records", goerr.V("stage", s.dir))
	}

	logger := logging.From(ctx)
	records := make([]*T, 0, len(names))
	for _, name := range names {
		if !isRecordFile(name) {
			continue
		}

		record, err := s.load(ctx, name)
		if err != nil {
			logger.Warn("skip unreadable stage record", "stage", s.dir, "file", name, "error", err)
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

func (s *sourceStage[T]) load(ctx context.Context, name string) (*T, error) {
	data, err := s.src.Read(ctx, s.dir, name)
	if err != nil {
		return nil, err
	}

	var record T
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, goerr.Wrap(err, "failed to parse stage record", goerr.V("file", name))
	}
	return &record, nil
}
