// Package minio implements objectstore.Backend with the MinIO Go client.
package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/bizflycloud/bizfly-s3/pkg/objectstore"
)

const userMetadataPrefix = "x-amz-meta-"

// Minio is an objectstore.Backend backed by a minio-go client.
type Minio struct {
	Client *minio.Client
	Region string

	accessKey string
	secretKey string
	transport http.RoundTripper
	logger    *zap.Logger
}

var _ objectstore.Backend = (*Minio)(nil)

// Option configures Minio.
type Option func(m *Minio) error

// WithCredentials sets the static access and secret key.
func WithCredentials(accessKey, secretKey string) Option {
	return func(m *Minio) error {
		m.accessKey = accessKey
		m.secretKey = secretKey
		return nil
	}
}

// WithLogger sets the logger for Minio.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Minio) error {
		if logger == nil {
			return errors.New("nil logger")
		}
		m.logger = logger
		return nil
	}
}

// WithTransport sets the HTTP round tripper used by the client.
func WithTransport(rt http.RoundTripper) Option {
	return func(m *Minio) error {
		if rt == nil {
			return errors.New("nil transport")
		}
		m.transport = rt
		return nil
	}
}

// New returns a backend for endpoint, which is a URL such as
// "http://localhost:9000". A bare host:port is treated as plain HTTP.
func New(endpoint, region string, opts ...Option) (*Minio, error) {
	m := &Minio{
		Region:    region,
		transport: objectstore.Transport(objectstore.DefaultTransportOptions()),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	host, secure, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(host, &minio.Options{
		Creds:        credentials.NewStaticV4(m.accessKey, m.secretKey, ""),
		Secure:       secure,
		Region:       m.Region,
		Transport:    m.transport,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, err
	}
	m.Client = client
	m.logger.Debug("MinIO client initialized", zap.String("host", host), zap.Bool("secure", secure))
	return m, nil
}

func splitEndpoint(endpoint string) (host string, secure bool, err error) {
	if !strings.Contains(endpoint, "://") {
		return endpoint, false, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	switch u.Scheme {
	case "http":
	case "https":
		secure = true
	default:
		return "", false, fmt.Errorf("invalid endpoint %q: unsupported scheme %q", endpoint, u.Scheme)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}
	return u.Host, secure, nil
}

func (m *Minio) PutObject(ctx context.Context, bucket, key string, data []byte, metadata map[string]string, contentType string) error {
	_, err := m.Client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		UserMetadata: metadata,
		ContentType:  contentType,
	})
	if err != nil {
		return m.storageError("put object", bucket, key, err)
	}
	m.logger.Debug("PutObject", zap.String("bucket", bucket), zap.String("key", key), zap.Int("size", len(data)))
	return nil
}

func (m *Minio) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := m.Client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, m.storageError("get object", bucket, key, err)
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, m.storageError("get object", bucket, key, err)
	}
	return body, nil
}

func (m *Minio) HeadObject(ctx context.Context, bucket, key string) (objectstore.ObjectInfo, error) {
	st, err := m.Client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return objectstore.ObjectInfo{}, m.storageError("head object", bucket, key, err)
	}

	meta := make(map[string]string, len(st.UserMetadata))
	for k, v := range st.UserMetadata {
		k = strings.ToLower(k)
		meta[strings.TrimPrefix(k, userMetadataPrefix)] = v
	}

	info := objectstore.ObjectInfo{
		Size:     &st.Size,
		Metadata: meta,
	}
	if st.ETag != "" {
		etag := st.ETag
		info.ETag = &etag
	}
	if !st.LastModified.IsZero() {
		lm := st.LastModified
		info.LastModified = &lm
	}
	if st.ContentType != "" {
		ct := st.ContentType
		info.ContentType = &ct
	}
	return info, nil
}

func (m *Minio) ListObjects(ctx context.Context, bucket, prefix string) ([]objectstore.ObjectSummary, error) {
	var objs []objectstore.ObjectSummary
	for o := range m.Client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if o.Err != nil {
			return nil, m.storageError("list objects", bucket, "", o.Err)
		}
		objs = append(objs, objectstore.ObjectSummary{Key: o.Key, Size: o.Size})
	}
	return objs, nil
}

func (m *Minio) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := m.Client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return m.storageError("delete object", bucket, key, err)
	}
	return nil
}

func (m *Minio) ListBuckets(ctx context.Context) ([]string, error) {
	buckets, err := m.Client.ListBuckets(ctx)
	if err != nil {
		return nil, m.storageError("list buckets", "", "", err)
	}
	names := make([]string, 0, len(buckets))
	for _, b := range buckets {
		names = append(names, b.Name)
	}
	return names, nil
}

func (m *Minio) CreateBucket(ctx context.Context, bucket, region string) error {
	if err := m.Client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return m.storageError("create bucket", bucket, "", err)
	}
	return nil
}

func (m *Minio) DeleteBucket(ctx context.Context, bucket string) error {
	if err := m.Client.RemoveBucket(ctx, bucket); err != nil {
		return m.storageError("delete bucket", bucket, "", err)
	}
	return nil
}

func (m *Minio) storageError(op, bucket, key string, err error) error {
	se := &objectstore.StorageError{Op: op, Bucket: bucket, Key: key, Err: err}
	if resp := minio.ToErrorResponse(err); resp.Code != "" {
		se.Code = resp.Code
		m.logger.Sugar().Debugf("%s error: %s %s", op, resp.Code, resp.Message)
	}
	return se
}
