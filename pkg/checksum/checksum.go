// Package checksum computes the SHA-256 digests attached to uploaded objects
// and used to verify them after download.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/bizflycloud/bizfly-s3/pkg/objectstore"
)

// MetadataKey is the object metadata entry holding the checksum of the
// object's body.
const MetadataKey = "checksum-sha256"

// Size is the length of a checksum in hex characters.
const Size = sha256.Size * 2

// Checksum is a lowercase hex SHA-256 digest.
type Checksum string

// Sum returns the checksum of data.
func Sum(data []byte) Checksum {
	sum := sha256.Sum256(data)
	return Checksum(hex.EncodeToString(sum[:]))
}

// SumFile reads the whole file at path and returns its checksum.
func SumFile(fs afero.Fs, path string) (Checksum, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", &objectstore.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", &objectstore.IOError{Op: "read", Path: path, Err: err}
	}
	return Sum(data), nil
}

// Parse validates s as a checksum. Upper-case hex is accepted and folded.
func Parse(s string) (Checksum, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != Size {
		return "", fmt.Errorf("checksum: want %d hex characters, got %d", Size, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", fmt.Errorf("checksum: %w", err)
	}
	return Checksum(s), nil
}

// FromMetadata looks up MetadataKey in meta, ignoring key case. ok is false
// when the entry is missing.
func FromMetadata(meta map[string]string) (c Checksum, ok bool, err error) {
	for k, v := range meta {
		if strings.EqualFold(k, MetadataKey) {
			c, err = Parse(v)
			return c, true, err
		}
	}
	return "", false, nil
}

// Metadata returns the object metadata carrying c.
func (c Checksum) Metadata() map[string]string {
	return map[string]string{MetadataKey: string(c)}
}

func (c Checksum) Equal(other Checksum) bool {
	return c == other
}

func (c Checksum) String() string {
	return string(c)
}
