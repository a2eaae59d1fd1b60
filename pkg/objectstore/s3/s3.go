// Package s3 implements objectstore.Backend on top of aws-sdk-go. It works
// against AWS as well as S3-compatible services such as MinIO, using
// path-style addressing.
package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	storage "github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"

	"github.com/bizflycloud/bizfly-s3/pkg/objectstore"
)

// defaultRegion needs no LocationConstraint on CreateBucket; AWS rejects it
// when sent explicitly.
const defaultRegion = "us-east-1"

// S3 is an objectstore.Backend backed by an aws-sdk-go client.
type S3 struct {
	Endpoint  string
	Region    string
	S3Session *storage.S3

	accessKey  string
	secretKey  string
	transport  objectstore.TransportOptions
	httpClient *http.Client
	logger     *zap.Logger
}

var _ objectstore.Backend = (*S3)(nil)

// Option configures S3.
type Option func(s3 *S3) error

// WithCredentials sets the static access and secret key.
func WithCredentials(accessKey, secretKey string) Option {
	return func(s3 *S3) error {
		s3.accessKey = accessKey
		s3.secretKey = secretKey
		return nil
	}
}

// WithLogger sets the logger for S3.
func WithLogger(logger *zap.Logger) Option {
	return func(s3 *S3) error {
		if logger == nil {
			return errors.New("nil logger")
		}
		s3.logger = logger
		return nil
	}
}

// WithTransportOptions overrides the HTTP timeouts.
func WithTransportOptions(opts objectstore.TransportOptions) Option {
	return func(s3 *S3) error {
		s3.transport = opts
		return nil
	}
}

// WithHTTPClient sets the underlying HTTP client, replacing the one built
// from the transport options.
func WithHTTPClient(client *http.Client) Option {
	return func(s3 *S3) error {
		if client == nil {
			return errors.New("nil HTTP client")
		}
		s3.httpClient = client
		return nil
	}
}

// New returns a backend talking to endpoint in region.
func New(endpoint, region string, opts ...Option) (*S3, error) {
	s3 := &S3{
		Endpoint:  endpoint,
		Region:    region,
		transport: objectstore.DefaultTransportOptions(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(s3); err != nil {
			return nil, err
		}
	}
	if s3.Region == "" {
		s3.Region = defaultRegion
	}

	cred := credentials.NewStaticCredentials(s3.accessKey, s3.secretKey, "")
	if _, err := cred.Get(); err != nil {
		s3.logger.Error("Bad credentials", zap.Error(err))
		return nil, err
	}

	httpClient := s3.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: objectstore.Transport(s3.transport)}
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials:      cred,
		Endpoint:         aws.String(s3.Endpoint),
		Region:           aws.String(s3.Region),
		S3ForcePathStyle: aws.Bool(true),
		HTTPClient:       httpClient,
	})
	if err != nil {
		return nil, err
	}
	s3.S3Session = storage.New(sess)
	s3.logger.Debug("S3 client initialized", zap.String("endpoint", s3.Endpoint), zap.String("region", s3.Region))
	return s3, nil
}

func (s3 *S3) PutObject(ctx context.Context, bucket, key string, data []byte, metadata map[string]string, contentType string) error {
	input := &storage.PutObjectInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		Body:     bytes.NewReader(data),
		Metadata: aws.StringMap(metadata),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s3.S3Session.PutObjectWithContext(ctx, input); err != nil {
		return s3.storageError("put object", bucket, key, err)
	}
	s3.logger.Debug("PutObject", zap.String("bucket", bucket), zap.String("key", key), zap.Int("size", len(data)))
	return nil
}

func (s3 *S3) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := s3.S3Session.GetObjectWithContext(ctx, &storage.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s3.storageError("get object", bucket, key, err)
	}
	defer obj.Body.Close()

	body, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, s3.storageError("get object", bucket, key, err)
	}
	return body, nil
}

func (s3 *S3) HeadObject(ctx context.Context, bucket, key string) (objectstore.ObjectInfo, error) {
	head, err := s3.S3Session.HeadObjectWithContext(ctx, &storage.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return objectstore.ObjectInfo{}, s3.storageError("head object", bucket, key, err)
	}
	return objectstore.ObjectInfo{
		ETag:         head.ETag,
		Size:         head.ContentLength,
		LastModified: head.LastModified,
		ContentType:  head.ContentType,
		Metadata:     objectstore.NormalizeMetadata(aws.StringValueMap(head.Metadata)),
	}, nil
}

func (s3 *S3) ListObjects(ctx context.Context, bucket, prefix string) ([]objectstore.ObjectSummary, error) {
	input := &storage.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var objs []objectstore.ObjectSummary
	err := s3.S3Session.ListObjectsV2PagesWithContext(ctx, input, func(page *storage.ListObjectsV2Output, lastPage bool) bool {
		for _, o := range page.Contents {
			if o.Key == nil {
				continue
			}
			objs = append(objs, objectstore.ObjectSummary{
				Key:  aws.StringValue(o.Key),
				Size: aws.Int64Value(o.Size),
			})
		}
		return true
	})
	if err != nil {
		return nil, s3.storageError("list objects", bucket, "", err)
	}
	return objs, nil
}

func (s3 *S3) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := s3.S3Session.DeleteObjectWithContext(ctx, &storage.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return s3.storageError("delete object", bucket, key, err)
	}
	return nil
}

func (s3 *S3) ListBuckets(ctx context.Context) ([]string, error) {
	out, err := s3.S3Session.ListBucketsWithContext(ctx, &storage.ListBucketsInput{})
	if err != nil {
		return nil, s3.storageError("list buckets", "", "", err)
	}
	names := make([]string, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		if b.Name != nil {
			names = append(names, *b.Name)
		}
	}
	return names, nil
}

func (s3 *S3) CreateBucket(ctx context.Context, bucket, region string) error {
	input := &storage.CreateBucketInput{Bucket: aws.String(bucket)}
	if region != "" && region != defaultRegion {
		input.CreateBucketConfiguration = &storage.CreateBucketConfiguration{
			LocationConstraint: aws.String(region),
		}
	}
	if _, err := s3.S3Session.CreateBucketWithContext(ctx, input); err != nil {
		return s3.storageError("create bucket", bucket, "", err)
	}
	return nil
}

func (s3 *S3) DeleteBucket(ctx context.Context, bucket string) error {
	_, err := s3.S3Session.DeleteBucketWithContext(ctx, &storage.DeleteBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return s3.storageError("delete bucket", bucket, "", err)
	}
	return nil
}

func (s3 *S3) storageError(op, bucket, key string, err error) error {
	se := &objectstore.StorageError{Op: op, Bucket: bucket, Key: key, Err: err}
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		se.Code = aerr.Code()
		s3.logger.Sugar().Debugf("%s error: %s %s", op, aerr.Code(), aerr.Message())
	}
	return se
}
