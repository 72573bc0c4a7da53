// Package gcs archives signal batches to a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"encoding/json"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"

	"github.com/prism-brain/prism/pkg/domain/interfaces"
	"github.com/prism-brain/prism/pkg/domain/model"
)

// Archiver writes collected signal batches to a GCS bucket as JSON objects
type Archiver struct {
	client *storage.Client
	bucket string
	prefix string
}

// New creates a GCS archiver for the given bucket
func New(ctx context.Context, bucket string, opts ...option.ClientOption) (*Archiver, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}
	return &Archiver{client: client, bucket: bucket}, nil
}

// WithPrefix returns a copy of the archiver that prepends a key prefix
func (a *Archiver) WithPrefix(prefix string) *Archiver {
	clone := *a
	clone.prefix = prefix
	return &clone
}

// Archive writes a batch of signals under the given object key
func (a *Archiver) Archive(ctx context.Context, key string, signals []model.Signal) error {
	obj := a.client.Bucket(a.bucket).Object(a.prefix + key)

	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"

	if err := json.NewEncoder(w).Encode(signals); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to encode signal batch",
			goerr.V("bucket", a.bucket), goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to write signal archive",
			goerr.V("bucket", a.bucket), goerr.V("key", key))
	}
	return nil
}

// Close releases the underlying storage client
func (a *Archiver) Close() error {
	return a.client.Close()
}

var _ interfaces.Archiver = (*Archiver)(nil)
