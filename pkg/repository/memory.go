package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

// MemoryStage is a Stage holding records in memory
type MemoryStage[T any] struct {
	mu      sync.RWMutex
	records []*T
}

// NewMemoryStage creates a MemoryStage seeded with records
func NewMemoryStage[T any](records ...*T) *MemoryStage[T] {
	return &MemoryStage[T]{records: records}
}

// Add appends records, as a producer writing new files would
func (s *MemoryStage[T]) Add(records ...*T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
}

func (s *MemoryStage[T]) LoadAll(ctx context.Context) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*T, len(s.records))
	copy(out, s.records)
	return out, nil
}

// MemorySource is a Source holding raw objects in memory, keyed by directory and name
type MemorySource struct {
	mu      sync.RWMutex
	objects map[string]map[string][]byte
}

// NewMemorySource creates an empty MemorySource
func NewMemorySource() *MemorySource {
	return &MemorySource{
		objects: make(map[string]map[string][]byte),
	}
}

// Put stores data as dir/name
func (s *MemorySource) Put(dir, name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.objects[dir] == nil {
		s.objects[dir] = make(map[string][]byte)
	}
	s.objects[dir][name] = data
}

func (s *MemorySource) List(ctx context.Context, dir string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.objects[dir]))
	for name := range s.objects[dir] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemorySource) Read(ctx context.Context, dir, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[dir][name]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "object does not exist", goerr.V("dir", dir), goerr.V("name", name))
	}
	return data, nil
}
