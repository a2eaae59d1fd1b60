package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizflycloud/bizfly-s3/pkg/config"
	"github.com/bizflycloud/bizfly-s3/pkg/objectstore"
	"github.com/bizflycloud/bizfly-s3/pkg/testlib"
)

func setupEnv(t *testing.T) *testlib.FakeS3 {
	t.Helper()
	fake := testlib.NewFakeS3(t)
	homedir.DisableCache = true
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvAccessKey, testlib.AccessKey)
	t.Setenv(config.EnvSecretKey, testlib.SecretKey)
	t.Setenv(config.EnvRegion, testlib.Region)
	t.Setenv(config.EnvEndpoint, fake.URL)
	t.Setenv(config.EnvBucket, "mybucket")
	t.Setenv(config.EnvDriver, config.DriverS3)
	return fake
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, debug, logFile, ensureBucket = "", false, "", false
	outputFormat, noVerify, showProgress = formatJSON, false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBucketCommands(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "bucket-create", "photos")
	require.NoError(t, err)
	// Creating twice is a no-op.
	_, err = run(t, "bucket-create", "photos")
	require.NoError(t, err)

	out, err := run(t, "bucket-list")
	require.NoError(t, err)
	assert.Contains(t, out, "photos")

	out, err = run(t, "bucket-exists", "photos")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = run(t, "bucket-exists", "missing")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	out, err = run(t, "bucket-stats", "photos")
	require.NoError(t, err)
	assert.Contains(t, out, "photos")

	_, err = run(t, "bucket-delete", "photos")
	require.NoError(t, err)

	out, err = run(t, "bucket-exists", "photos")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)
}

func TestObjectCommands(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "greeting.txt")
	dst := filepath.Join(dir, "downloaded.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello s3!\n"), 0644))

	_, err := run(t, "--ensure-bucket", "bucket-list")
	require.NoError(t, err)

	out, err := run(t, "object-upload", "mybucket", src, "docs/greeting.txt")
	require.NoError(t, err)
	sum := strings.Fields(out)[0]
	assert.Len(t, sum, 64)

	out, err = run(t, "object-list", "mybucket", "docs/")
	require.NoError(t, err)
	assert.Contains(t, out, "docs/greeting.txt")

	out, err = run(t, "object-info", "mybucket", "docs/greeting.txt")
	require.NoError(t, err)
	assert.Contains(t, out, sum)

	out, err = run(t, "object-info", "mybucket", "docs/greeting.txt", "--output", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "checksum-sha256: "+sum)

	out, err = run(t, "object-download", "mybucket", dst, "docs/greeting.txt")
	require.NoError(t, err)
	assert.Equal(t, sum+"  "+dst+"  verified\n", out)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "hello s3!\n", string(got))

	_, err = run(t, "object-delete", "mybucket", "docs/greeting.txt")
	require.NoError(t, err)

	_, err = run(t, "object-info", "mybucket", "docs/greeting.txt")
	require.Error(t, err)
	assert.True(t, objectstore.IsNotFound(err))
}

func TestObjectUpload_MissingFile(t *testing.T) {
	fake := setupEnv(t)
	before := fake.Requests()

	_, err := run(t, "object-upload", "mybucket", filepath.Join(t.TempDir(), "nope"), "k")
	require.Error(t, err)
	var ioErr *objectstore.IOError
	assert.ErrorAs(t, err, &ioErr)
	assert.Equal(t, before, fake.Requests())
}

func TestInvalidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv(config.EnvEndpoint, "localhost:9000")

	_, err := run(t, "bucket-list")
	require.Error(t, err)
}

func TestArgs(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "bucket-exists")
	require.Error(t, err)
	_, err = run(t, "object-download", "mybucket", "path")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "version: "))
}

func TestPrintInfo(t *testing.T) {
	size := int64(10)
	ct := "text/plain"
	info := objectstore.ObjectInfo{
		Size:        &size,
		ContentType: &ct,
		Metadata:    map[string]string{"checksum-sha256": "abc"},
	}

	tests := []struct {
		name    string
		format  string
		want    string
		wantErr bool
	}{
		{"json", formatJSON, `"checksum-sha256": "abc"`, false},
		{"default", "", `"checksum-sha256": "abc"`, false},
		{"yaml", formatYAML, "checksum-sha256: abc", false},
		{"unknown", "xml", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := printInfo(&buf, info, tc.format)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, buf.String(), tc.want)
		})
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	renderTable(&buf, []string{"Name"}, [][]string{{"a"}, {"b"}})
	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "| a")
	assert.Contains(t, out, "| b")
}
