// Package objectstore archives rendered bulletins in a NATS JetStream object store.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/book-expert/bulletin-service/internal/core"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	headerContentType = "Content-Type"
	metaSource        = "source"
	metaVoice         = "voice"
)

// NatsObjectStore implements the core.ObjectStore interface using NATS JetStream.
type NatsObjectStore struct {
	bucket string
	store  nats.ObjectStore
}

var _ core.ObjectStore = (*NatsObjectStore)(nil)

// Object describes one stored bulletin.
type Object struct {
	Key         string
	ContentType string
	Source      string
	Voice       string
	Size        uint64
}

// New creates the bucket, or binds to it when it already exists.
func New(jetstreamContext nats.JetStreamContext, bucketName string) (*NatsObjectStore, error) {
	store, err := jetstreamContext.CreateObjectStore(&nats.ObjectStoreConfig{
		Bucket:      bucketName,
		Description: fmt.Sprintf("Spoken news bulletins (%s).", bucketName),
		TTL:         0,
		MaxBytes:    0,
		Storage:     nats.FileStorage,
		Replicas:    1,
		Placement:   nil,
		Metadata:    nil,
		Compression: false,
	})
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketExists) && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
			return nil, fmt.Errorf("failed to create object store bucket '%s': %w", bucketName, err)
		}

		store, err = jetstreamContext.ObjectStore(bucketName)
		if err != nil {
			return nil, fmt.Errorf("failed to bind to existing object store bucket '%s': %w", bucketName, err)
		}
	}

	return &NatsObjectStore{bucket: bucketName, store: store}, nil
}

// Bucket returns the bucket name.
func (n *NatsObjectStore) Bucket() string {
	return n.bucket
}

// Download retrieves an object from the NATS object store.
func (n *NatsObjectStore) Download(ctx context.Context, key string) ([]byte, error) {
	obj, err := n.store.Get(key, nats.Context(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get object '%s' from bucket '%s': %w", key, n.bucket, err)
	}

	data, readErr := io.ReadAll(obj)
	closeErr := obj.Close()

	if readErr != nil {
		return nil, fmt.Errorf("failed to read object '%s': %w", key, readErr)
	}

	if closeErr != nil {
		return data, fmt.Errorf("failed to close object '%s': %w", key, closeErr)
	}

	return data, nil
}

// Upload saves raw bytes under key.
func (n *NatsObjectStore) Upload(ctx context.Context, key string, data []byte) error {
	return n.Put(ctx, Object{Key: key}, data)
}

// Put saves data under obj.Key with the content type and bulletin metadata attached.
func (n *NatsObjectStore) Put(ctx context.Context, obj Object, data []byte) error {
	meta := &nats.ObjectMeta{
		Name:        obj.Key,
		Description: obj.Source,
		Headers:     nil,
		Metadata:    nil,
		Opts:        nil,
	}

	if obj.ContentType != "" {
		meta.Headers = nats.Header{}
		meta.Headers.Set(headerContentType, obj.ContentType)
	}

	if obj.Source != "" || obj.Voice != "" {
		meta.Metadata = map[string]string{metaSource: obj.Source, metaVoice: obj.Voice}
	}

	_, err := n.store.Put(meta, bytes.NewReader(data), nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("failed to put object '%s' to bucket '%s': %w", obj.Key, n.bucket, err)
	}

	return nil
}

// Stat returns the stored description of key.
func (n *NatsObjectStore) Stat(ctx context.Context, key string) (Object, error) {
	info, err := n.store.GetInfo(key, nats.Context(ctx))
	if err != nil {
		return Object{}, fmt.Errorf("failed to stat object '%s' in bucket '%s': %w", key, n.bucket, err)
	}

	obj := Object{Key: info.Name, Size: info.Size}
	if info.Headers != nil {
		obj.ContentType = info.Headers.Get(headerContentType)
	}

	if info.Metadata != nil {
		obj.Source = info.Metadata[metaSource]
		obj.Voice = info.Metadata[metaVoice]
	}

	return obj, nil
}
