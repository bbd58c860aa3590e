package adapter

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

var ErrObjectNotFound = goerr.New("storage object not found")

// Storage is the interface for reading pipeline outputs mirrored to Cloud Storage
type Storage interface {
	// Get opens an object for reading. A missing object yields an error wrapping ErrObjectNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// List returns the names of objects directly under prefix (not recursing into sub-prefixes)
	List(ctx context.Context, prefix string) ([]string, error)
}

// storageClient implements Storage interface using Cloud Storage
type storageClient struct {
	bucketName string
	client     *storage.Client
}

// NewStorage creates a new Cloud Storage client
func NewStorage(ctx context.Context, bucketName string) (Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &storageClient{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (s *storageClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj := s.client.Bucket(s.bucketName).Object(key)
	reader, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(ErrObjectNotFound, "object does not exist",
				goerr.V("bucket", s.bucketName), goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to read from storage",
			goerr.V("bucket", s.bucketName), goerr.V("key", key))
	}

	return reader, nil
}

func (s *storageClient) List(ctx context.Context, prefix string) ([]string, error) {
	it := s.client.Bucket(s.bucketName).Objects(ctx, &storage.Query{
		Prefix:    prefix,
		Delimiter: "/",
	})

	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list objects",
				goerr.V("bucket", s.bucketName), goerr.V("prefix", prefix))
		}
		// Synthetic sub-prefix entries have no object name
		if attrs.Name == "" {
			continue
		}
		names = append(names, attrs.Name)
	}

	return names, nil
}
