package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/bizflycloud/bizfly-s3/pkg/objectstore"
	"github.com/bizflycloud/bizfly-s3/pkg/transfer"
)

// ObjectService groups the object operations.
type ObjectService struct {
	backend  objectstore.Backend
	logger   *zap.Logger
	transfer *transfer.Transfer
}

// Upload stores the file at localPath under key with its checksum attached.
func (o *ObjectService) Upload(ctx context.Context, bucket, localPath, key string) (transfer.Result, error) {
	return o.transfer.Upload(ctx, bucket, localPath, key)
}

// Download writes key to localPath and verifies its checksum.
func (o *ObjectService) Download(ctx context.Context, bucket, localPath, key string) (transfer.Result, error) {
	return o.transfer.Download(ctx, bucket, localPath, key)
}

// List returns the keys starting with prefix.
func (o *ObjectService) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	o.logger.Debug("[object.list] prefix: " + prefix)
	objs, err := o.backend.ListObjects(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}
	return objectstore.Keys(objs), nil
}

// Delete removes a single object.
func (o *ObjectService) Delete(ctx context.Context, bucket, key string) error {
	o.logger.Warn("[object.delete] Deleting '" + key + "'")
	if err := o.backend.DeleteObject(ctx, bucket, key); err != nil {
		return err
	}
	o.logger.Info("[object.delete] Deleted '" + key + "'")
	return nil
}

// Info returns the attributes and metadata of an object.
func (o *ObjectService) Info(ctx context.Context, bucket, key string) (objectstore.ObjectInfo, error) {
	return o.backend.HeadObject(ctx, bucket, key)
}
