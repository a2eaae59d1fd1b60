// Package testlib holds helpers shared by tests that need an S3 endpoint.
package testlib

import (
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
)

const (
	AccessKey = "dummy-access"
	SecretKey = "dummy-secret"
	Region    = "us-east-1"
)

// FakeS3 is an in-process S3 endpoint backed by memory.
type FakeS3 struct {
	URL string

	server   *httptest.Server
	requests int64
}

// NewFakeS3 starts a fake S3 server that is shut down when t finishes.
func NewFakeS3(t testing.TB) *FakeS3 {
	t.Helper()
	faker := gofakes3.New(s3mem.New())
	f := &FakeS3{}
	handler := faker.Server()
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.requests, 1)
		handler.ServeHTTP(w, r)
	}))
	f.URL = f.server.URL
	t.Cleanup(f.server.Close)
	return f
}

// Requests returns how many HTTP requests the server has received.
func (f *FakeS3) Requests() int64 {
	return atomic.LoadInt64(&f.requests)
}

// MinioURL returns the endpoint of an externally managed MinIO, if any.
func MinioURL() string {
	if u := os.Getenv("MINIO_TEST_ENDPOINT"); u != "" {
		return u
	}
	return ""
}
