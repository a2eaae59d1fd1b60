// Package repository turns a loaded configuration into a ready-to-use
// storage handle and exposes the bucket and object operations of the CLI.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/bizflycloud/bizfly-s3/pkg/config"
	"github.com/bizflycloud/bizfly-s3/pkg/objectstore"
	"github.com/bizflycloud/bizfly-s3/pkg/objectstore/minio"
	"github.com/bizflycloud/bizfly-s3/pkg/objectstore/s3"
	"github.com/bizflycloud/bizfly-s3/pkg/transfer"
)

// Repository is a connected backend plus the configuration it was built from.
type Repository struct {
	Conf config.Config

	backend      objectstore.Backend
	fs           afero.Fs
	logger       *zap.Logger
	ensureBucket bool
	transferOpts []transfer.Option
}

// Option configures Connect.
type Option func(r *Repository) error

// WithLogger sets the logger for the repository and its backend.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Repository) error {
		if logger == nil {
			return errors.New("nil logger")
		}
		r.logger = logger
		return nil
	}
}

// WithFs sets the local filesystem used by transfers.
func WithFs(fs afero.Fs) Option {
	return func(r *Repository) error {
		if fs == nil {
			return errors.New("nil filesystem")
		}
		r.fs = fs
		return nil
	}
}

// WithBackend uses backend instead of building one from the configuration.
func WithBackend(backend objectstore.Backend) Option {
	return func(r *Repository) error {
		if backend == nil {
			return errors.New("nil backend")
		}
		r.backend = backend
		return nil
	}
}

// WithEnsureBucket makes Connect create the configured default bucket when
// it does not exist yet.
func WithEnsureBucket() Option {
	return func(r *Repository) error {
		r.ensureBucket = true
		return nil
	}
}

// WithTransferOptions passes opts to every transfer started by the repository.
func WithTransferOptions(opts ...transfer.Option) Option {
	return func(r *Repository) error {
		r.transferOpts = append(r.transferOpts, opts...)
		return nil
	}
}

// Connect builds the backend selected by conf.Driver. The returned
// Repository is fully initialised; on error nothing is returned.
func Connect(ctx context.Context, conf config.Config, opts ...Option) (*Repository, error) {
	r := &Repository{
		Conf:   conf,
		fs:     afero.NewOsFs(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if r.backend == nil {
		r.logger.Info("[builder] Connecting to storage", zap.String("endpoint", conf.Endpoint), zap.String("driver", conf.Driver))
		backend, err := newBackend(conf, r.logger)
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", conf.Endpoint, err)
		}
		r.backend = backend
		r.logger.Debug("[builder] Client initialized OK")
	}

	if r.ensureBucket {
		if err := r.Bucket().Ensure(ctx, conf.Bucket, conf.Region); err != nil {
			return nil, err
		}
		r.logger.Info(fmt.Sprintf("[builder] Bucket '%s' ensured OK", conf.Bucket))
	}
	return r, nil
}

func newBackend(conf config.Config, logger *zap.Logger) (objectstore.Backend, error) {
	switch conf.Driver {
	case config.DriverS3, "":
		return s3.New(conf.Endpoint, conf.Region,
			s3.WithCredentials(conf.AccessKey, conf.SecretKey),
			s3.WithLogger(logger),
		)
	case config.DriverMinio:
		return minio.New(conf.Endpoint, conf.Region,
			minio.WithCredentials(conf.AccessKey, conf.SecretKey),
			minio.WithLogger(logger),
		)
	}
	return nil, fmt.Errorf("unknown storage driver %q", conf.Driver)
}

// Backend returns the underlying storage backend.
func (r *Repository) Backend() objectstore.Backend {
	return r.backend
}

// Bucket is the entry point to bucket operations.
func (r *Repository) Bucket() *BucketService {
	return &BucketService{backend: r.backend, logger: r.logger}
}

// Object is the entry point to object operations.
func (r *Repository) Object() *ObjectService {
	opts := append([]transfer.Option{transfer.WithFs(r.fs), transfer.WithLogger(r.logger)}, r.transferOpts...)
	return &ObjectService{
		backend:  r.backend,
		logger:   r.logger,
		transfer: transfer.New(r.backend, opts...),
	}
}
