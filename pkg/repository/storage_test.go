package repository_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pipetrace/pkg/adapter"
	"github.com/m-mizutani/pipetrace/pkg/model"
	"github.com/m-mizutani/pipetrace/pkg/repository"
)

// mockStorage mimics a bucket listed with a "/" delimiter
type mockStorage struct {
	objects map[string][]byte
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, goerr.Wrap(adapter.ErrObjectNotFound, "object does not exist", goerr.V("key", key))
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockStorage) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func TestStorageSource(t *testing.T) {
	storage := &mockStorage{objects: map[string][]byte{
		"runs/2024/frame_analysis/frame_1_periodic.json":        []byte(`{"frameId":"frame_1_periodic","description":"editor"}`),
		"runs/2024/frame_analysis/nested/frame_2_periodic.json": []byte(`{"frameId":"frame_2_periodic"}`),
		"runs/2024/screenshots/frame_1_periodic.png":            []byte("png"),
	}}
	src := repository.NewStorageSource(storage, "/runs/2024/")
	ctx := context.Background()

	names, err := src.List(ctx, "frame_analysis")
	gt.NoError(t, err)
	gt.A(t, names).Length(1)
	gt.Equal(t, names[0], "frame_1_periodic.json")

	stage := repository.NewStage[model.FrameAnalysis](src, "frame_analysis")
	records, err := stage.LoadAll(ctx)
	gt.NoError(t, err)
	gt.A(t, records).Length(1)
	gt.Equal(t, records[0].Description, "editor")

	assets := repository.NewAssets(src, "screenshots")
	data, err := assets.Get(ctx, "frame_1_periodic.png")
	gt.NoError(t, err)
	gt.Equal(t, string(data), "png")

	_, err = assets.Get(ctx, "frame_1_periodic.jpg")
	gt.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestFileSourceReadNotFound(t *testing.T) {
	src := repository.NewFileSource(t.TempDir())
	_, err := src.Read(context.Background(), "screenshots", "missing.jpg")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestFileSourceReadRejectsEscape(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "pipeline")
	gt.NoError(t, os.MkdirAll(filepath.Join(root, "screenshots"), 0755))
	gt.NoError(t, os.WriteFile(filepath.Join(base, "secret.png"), []byte("secret"), 0644))
	gt.NoError(t, os.WriteFile(filepath.Join(root, "screenshots", "a.png"), []byte("a"), 0644))
	src := repository.NewFileSource(root)

	for _, name := range []string{"../../secret.png", "../screenshots/../../secret.png", "..", ""} {
		_, err := src.Read(context.Background(), "screenshots", name)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, repository.ErrInvalidName))
	}

	data, err := src.Read(context.Background(), "screenshots", "a.png")
	gt.NoError(t, err)
	gt.Equal(t, string(data), "a")
}

func TestLoadLayout(t *testing.T) {
	path := t.TempDir() + "/layout.yaml"
	gt.NoError(t, os.WriteFile(path, []byte("frame_analysis: analysis\nscreenshots: /var/shots\n"), 0644))

	layout, err := repository.LoadLayout(path)
	gt.NoError(t, err)
	gt.Equal(t, layout.FrameAnalysis, "analysis")
	gt.Equal(t, layout.Screenshots, "/var/shots")
	gt.Equal(t, layout.Deduplication, repository.DefaultLayout().Deduplication)

	_, err = repository.LoadLayout(t.TempDir() + "/missing.yaml")
	gt.Error(t, err)
}
