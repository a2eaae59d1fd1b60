package objectstore

import (
	"errors"
	"fmt"
)

// Error codes reported by S3-compatible backends that callers care about.
const (
	CodeNoSuchKey    = "NoSuchKey"
	CodeNoSuchBucket = "NoSuchBucket"
	CodeNotFound     = "NotFound"
	CodeAccessDenied = "AccessDenied"
)

// IOError is a failure to read or write a local file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// StorageError is any failure reported by the storage backend: network,
// authentication, permission or a missing bucket or object.
type StorageError struct {
	Op     string
	Bucket string
	Key    string
	Code   string
	Err    error
}

func (e *StorageError) Error() string {
	msg := "storage: " + e.Op
	if e.Bucket != "" {
		msg += " " + e.Bucket
		if e.Key != "" {
			msg += "/" + e.Key
		}
	}
	if e.Code != "" {
		msg += ": " + e.Code
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IntegrityError reports that the bytes written to Path do not hash to the
// checksum stored with the object.
type IntegrityError struct {
	Bucket   string
	Key      string
	Path     string
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity: %s/%s downloaded to %s: checksum mismatch: stored %s, got %s",
		e.Bucket, e.Key, e.Path, e.Expected, e.Actual)
}

// IsNotFound reports whether err is a StorageError for a missing bucket or object.
func IsNotFound(err error) bool {
	var se *StorageError
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code {
	case CodeNoSuchKey, CodeNoSuchBucket, CodeNotFound:
		return true
	}
	return false
}
