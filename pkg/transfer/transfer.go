// Package transfer moves whole files between the local filesystem and an
// object store, attaching a SHA-256 checksum on upload and verifying it
// after download.
package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/bizflycloud/bizfly-s3/pkg/checksum"
	"github.com/bizflycloud/bizfly-s3/pkg/objectstore"
)

// Direction tells whether a transfer reads from or writes to the store.
type Direction int

const (
	Upload Direction = iota
	Download
)

func (d Direction) String() string {
	switch d {
	case Upload:
		return "upload"
	case Download:
		return "download"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Descriptor identifies a single transfer.
type Descriptor struct {
	Bucket    string
	Key       string
	LocalPath string
	Direction Direction
}

// Result describes a finished transfer.
type Result struct {
	// Checksum of the bytes sent, or of the bytes on disk after a download.
	Checksum checksum.Checksum
	// Expected is the checksum stored with the object, if it had one.
	Expected *checksum.Checksum
	// Verified is true when Checksum was compared with Expected and matched.
	Verified bool
	Size     int64
}

// Transfer runs checksummed uploads and downloads against a backend.
type Transfer struct {
	backend  objectstore.Backend
	fs       afero.Fs
	logger   *zap.Logger
	verify   bool
	progress io.Writer
}

// Option configures Transfer.
type Option func(t *Transfer)

// WithFs sets the local filesystem. The default is the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(t *Transfer) {
		t.fs = fs
	}
}

// WithLogger sets the logger for Transfer.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Transfer) {
		t.logger = logger
	}
}

// WithoutVerify makes downloads report the checksum of the written file
// without comparing it to the one stored with the object.
func WithoutVerify() Option {
	return func(t *Transfer) {
		t.verify = false
	}
}

// WithProgress reports transferred bytes to w.
func WithProgress(w io.Writer) Option {
	return func(t *Transfer) {
		t.progress = w
	}
}

// New returns a Transfer for backend.
func New(backend objectstore.Backend, opts ...Option) *Transfer {
	t := &Transfer{
		backend: backend,
		fs:      afero.NewOsFs(),
		logger:  zap.NewNop(),
		verify:  true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run dispatches d to Upload or Download.
func (t *Transfer) Run(ctx context.Context, d Descriptor) (Result, error) {
	switch d.Direction {
	case Upload:
		return t.Upload(ctx, d.Bucket, d.LocalPath, d.Key)
	case Download:
		return t.Download(ctx, d.Bucket, d.LocalPath, d.Key)
	}
	return Result{}, fmt.Errorf("transfer: unknown direction %v", d.Direction)
}

// Upload reads the file at localPath, computes its checksum and stores it
// under key with the checksum as metadata. A file that cannot be read fails
// with *objectstore.IOError before the backend is contacted.
func (t *Transfer) Upload(ctx context.Context, bucket, localPath, key string) (Result, error) {
	data, err := t.readFile(localPath)
	if err != nil {
		return Result{}, err
	}

	sum := checksum.Sum(data)
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if err := t.backend.PutObject(ctx, bucket, key, data, sum.Metadata(), contentType); err != nil {
		return Result{}, err
	}

	t.logger.Info("[upload] checksum: "+sum.String(),
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.String("path", localPath),
		zap.String("size", humanize.Bytes(uint64(len(data)))),
	)
	return Result{Checksum: sum, Size: int64(len(data))}, nil
}

// Download fetches key into localPath, creating or truncating the file, then
// re-reads the file to compute its checksum. Unless verification is
// disabled, the checksum is compared to the one stored with the object and
// a mismatch fails with *objectstore.IntegrityError. The local file is only
// created once the object has been read successfully.
func (t *Transfer) Download(ctx context.Context, bucket, localPath, key string) (Result, error) {
	t.logger.Info(fmt.Sprintf("[download] downloading '%s' → '%s'", key, localPath), zap.String("bucket", bucket))

	data, err := t.backend.GetObject(ctx, bucket, key)
	if err != nil {
		return Result{}, err
	}
	if err := t.writeFile(localPath, data); err != nil {
		return Result{}, err
	}

	sum, err := checksum.SumFile(t.fs, localPath)
	if err != nil {
		return Result{}, err
	}
	res := Result{Checksum: sum, Size: int64(len(data))}
	t.logger.Info("[download] downloaded file checksum: "+sum.String(),
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.String("path", localPath),
		zap.String("size", humanize.Bytes(uint64(len(data)))),
	)

	if !t.verify {
		return res, nil
	}

	info, err := t.backend.HeadObject(ctx, bucket, key)
	if err != nil {
		return res, err
	}
	expected, ok, err := checksum.FromMetadata(info.Metadata)
	if !ok {
		t.logger.Warn("[download] object has no stored checksum, skipping verification",
			zap.String("bucket", bucket), zap.String("key", key))
		return res, nil
	}
	if err != nil {
		return res, &objectstore.IntegrityError{
			Bucket:   bucket,
			Key:      key,
			Path:     localPath,
			Expected: info.Metadata[checksum.MetadataKey],
			Actual:   sum.String(),
		}
	}
	res.Expected = &expected
	if !expected.Equal(sum) {
		return res, &objectstore.IntegrityError{
			Bucket:   bucket,
			Key:      key,
			Path:     localPath,
			Expected: expected.String(),
			Actual:   sum.String(),
		}
	}
	res.Verified = true
	t.logger.Debug("[download] checksum verified", zap.String("key", key))
	return res, nil
}

func (t *Transfer) readFile(path string) ([]byte, error) {
	f, err := t.fs.Open(path)
	if err != nil {
		return nil, &objectstore.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	var r io.Reader = f
	if t.progress != nil {
		pw := NewProgressWriter(t.progress)
		defer pw.Finish()
		r = io.TeeReader(f, pw)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &objectstore.IOError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

func (t *Transfer) writeFile(path string, data []byte) (err error) {
	f, err := t.fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return &objectstore.IOError{Op: "create", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &objectstore.IOError{Op: "close", Path: path, Err: cerr}
		}
	}()

	var w io.Writer = f
	if t.progress != nil {
		pw := NewProgressWriter(t.progress)
		defer pw.Finish()
		w = io.MultiWriter(f, pw)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return &objectstore.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// IsIOError reports whether err is a local file failure.
func IsIOError(err error) bool {
	var ioErr *objectstore.IOError
	return errors.As(err, &ioErr)
}
