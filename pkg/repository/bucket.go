package repository

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/bizflycloud/bizfly-s3/pkg/objectstore"
)

// BucketStats is the object count and total size of a bucket.
type BucketStats struct {
	ObjectCount int
	TotalSize   uint64
}

func (s BucketStats) String() string {
	return fmt.Sprintf("objects: %d, size: %d bytes (%s)", s.ObjectCount, s.TotalSize, humanize.Bytes(s.TotalSize))
}

// BucketService groups the bucket operations.
type BucketService struct {
	backend objectstore.Backend
	logger  *zap.Logger
}

// List returns the names of all buckets.
func (b *BucketService) List(ctx context.Context) ([]string, error) {
	return b.backend.ListBuckets(ctx)
}

// Exists reports whether a bucket called name is listed.
func (b *BucketService) Exists(ctx context.Context, name string) (bool, error) {
	names, err := b.backend.ListBuckets(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// Create creates a bucket in region.
func (b *BucketService) Create(ctx context.Context, name, region string) error {
	b.logger.Info("[bucket.create] Creating bucket: " + name)
	if err := b.backend.CreateBucket(ctx, name, region); err != nil {
		return err
	}
	b.logger.Info(fmt.Sprintf("[bucket.create] Bucket '%s' created", name))
	return nil
}

// Ensure creates the bucket unless it already exists.
func (b *BucketService) Ensure(ctx context.Context, name, region string) error {
	exists, err := b.Exists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		b.logger.Info(fmt.Sprintf("[bucket.ensure] Bucket '%s' exists", name))
		return nil
	}
	b.logger.Warn(fmt.Sprintf("[bucket.ensure] Bucket '%s' not found, creating", name))
	return b.Create(ctx, name, region)
}

// Delete removes the bucket, which must be empty.
func (b *BucketService) Delete(ctx context.Context, name string) error {
	b.logger.Warn("[bucket.delete] Deleting bucket: " + name)
	if err := b.backend.DeleteBucket(ctx, name); err != nil {
		return err
	}
	b.logger.Info(fmt.Sprintf("[bucket.delete] Bucket '%s' deleted", name))
	return nil
}

// DeleteObjects deletes every object in the bucket, one request at a time.
// It stops at the first failure, leaving the remaining objects in place.
func (b *BucketService) DeleteObjects(ctx context.Context, name string) (int, error) {
	b.logger.Warn("[bucket.delete_objects] Deleting ALL objects in " + name)

	objs, err := b.backend.ListObjects(ctx, name, "")
	if err != nil {
		return 0, err
	}
	if len(objs) == 0 {
		b.logger.Info("[bucket.delete_objects] Bucket already empty")
		return 0, nil
	}

	deleted := 0
	for _, o := range objs {
		if err := b.backend.DeleteObject(ctx, name, o.Key); err != nil {
			return deleted, err
		}
		deleted++
		b.logger.Info("[bucket.delete_objects] Deleted: " + o.Key)
	}
	return deleted, nil
}

// Stats counts the objects in the bucket and sums their sizes.
func (b *BucketService) Stats(ctx context.Context, name string) (BucketStats, error) {
	objs, err := b.backend.ListObjects(ctx, name, "")
	if err != nil {
		return BucketStats{}, err
	}
	var stats BucketStats
	for _, o := range objs {
		stats.ObjectCount++
		if o.Size > 0 {
			stats.TotalSize += uint64(o.Size)
		}
	}
	return stats, nil
}
