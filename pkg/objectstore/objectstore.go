// Package objectstore defines the contract between the CLI and an
// S3-compatible object store, together with the error types shared by
// every driver.
package objectstore

import (
	"context"
	"strings"
	"time"
)

// A Backend manages buckets and objects stored somewhere.
type Backend interface {
	// PutObject stores data under key with the given user metadata.
	PutObject(ctx context.Context, bucket, key string, data []byte, metadata map[string]string, contentType string) error

	// GetObject downloads the full body of the object.
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)

	// HeadObject returns the object's attributes without its body.
	HeadObject(ctx context.Context, bucket, key string) (ObjectInfo, error)

	// ListObjects returns every object whose key starts with prefix.
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectSummary, error)

	// DeleteObject removes a single object.
	DeleteObject(ctx context.Context, bucket, key string) error

	// ListBuckets returns the names of all buckets visible to the credentials.
	ListBuckets(ctx context.Context) ([]string, error)

	// CreateBucket creates a bucket in region.
	CreateBucket(ctx context.Context, bucket, region string) error

	// DeleteBucket removes an empty bucket.
	DeleteBucket(ctx context.Context, bucket string) error
}

// ObjectInfo is what the backend reports about a stored object. Fields the
// backend did not report are nil.
type ObjectInfo struct {
	ETag         *string           `json:"etag" yaml:"etag"`
	Size         *int64            `json:"size" yaml:"size"`
	LastModified *time.Time        `json:"last_modified" yaml:"last_modified"`
	ContentType  *string           `json:"content_type" yaml:"content_type"`
	Metadata     map[string]string `json:"metadata" yaml:"metadata"`
}

// ObjectSummary is a single entry of an object listing.
type ObjectSummary struct {
	Key  string
	Size int64
}

// Keys returns the keys of objs in listing order.
func Keys(objs []ObjectSummary) []string {
	keys := make([]string, 0, len(objs))
	for _, o := range objs {
		keys = append(keys, o.Key)
	}
	return keys
}

// NormalizeMetadata lower-cases metadata keys. SDKs hand user metadata back
// in canonical header form ("Checksum-Sha256"), while the keys we write are
// lower case.
func NormalizeMetadata(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}
