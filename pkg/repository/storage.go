package repository

import (
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pipetrace/pkg/adapter"
)

// StorageSource reads stage directories mirrored to a Cloud Storage bucket under a common prefix
type StorageSource struct {
	storage adapter.Storage
	prefix  string
}

// NewStorageSource creates a Source backed by a bucket. Stage directories resolve to <prefix>/<dir>/.
func NewStorageSource(storage adapter.Storage, prefix string) *StorageSource {
	return &StorageSource{
		storage: storage,
		prefix:  strings.Trim(prefix, "/"),
	}
}

func (s *StorageSource) dirPrefix(dir string) string {
	return path.Join(s.prefix, strings.Trim(dir, "/")) + "/"
}

func (s *StorageSource) List(ctx context.Context, dir string) ([]string, error) {
	prefix := s.dirPrefix(dir)
	keys, err := s.storage.List(ctx, prefix)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list stage objects", goerr.V("prefix", prefix))
	}

	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(key, prefix)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *StorageSource) Read(ctx context.Context, dir, name string) ([]byte, error) {
	key := s.dirPrefix(dir) + name
	reader, err := s.storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, adapter.ErrObjectNotFound) {
			return nil, goerr.Wrap(ErrNotFound, "object does not exist", goerr.V("key", key))
		}
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read object", goerr.V("key", key))
	}
	return data, nil
}
