// Package gcs implements the batch object-store boundary on Google Cloud
// Storage. The runner only needs to download a delivered batch file and
// delete it once consumed.
package gcs

import (
	"context"
	"fmt"
	"io"

	storage "google.golang.org/api/storage/v1"

	"vn.io.arda/provisioner/internal/domain"
)

// Store implements application.BatchStore.
type Store struct {
	objects *storage.ObjectsService
}

// New creates a Store using application default credentials.
func New(ctx context.Context) (*Store, error) {
	svc, err := storage.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage service: %w", err)
	}
	return &Store{objects: svc.Objects}, nil
}

// Open downloads the object and returns its content stream.
func (s *Store) Open(ctx context.Context, ref domain.BatchRef) (io.ReadCloser, error) {
	resp, err := s.objects.Get(ref.Bucket, ref.Key).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", ref, err)
	}
	return resp.Body, nil
}

// Remove deletes the consumed object from the delivery bucket.
func (s *Store) Remove(ctx context.Context, ref domain.BatchRef) error {
	if err := s.objects.Delete(ref.Bucket, ref.Key).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete %s: %w", ref, err)
	}
	return nil
}
