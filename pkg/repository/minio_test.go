package repository

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizflycloud/bizfly-s3/pkg/config"
	"github.com/bizflycloud/bizfly-s3/pkg/testlib"
)

const (
	minioUser     = "minioadmin"
	minioPassword = "minioadmin"
)

var minioURL string

func testMinio(t *testing.T) {
	for _, driver := range []string{config.DriverS3, config.DriverMinio} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			fs := afero.NewMemMapFs()
			conf := config.Config{
				AccessKey: minioUser,
				SecretKey: minioPassword,
				Region:    testlib.Region,
				Endpoint:  minioURL,
				Bucket:    "it-" + driver,
				Driver:    driver,
			}
			repo := connect(t, conf, WithFs(fs), WithEnsureBucket())

			require.NoError(t, afero.WriteFile(fs, "/greeting.txt", []byte("hello s3!\n"), 0o644))
			up, err := repo.Object().Upload(ctx, conf.Bucket, "/greeting.txt", "greeting.txt")
			require.NoError(t, err)

			down, err := repo.Object().Download(ctx, conf.Bucket, "/copy.txt", "greeting.txt")
			require.NoError(t, err)
			assert.True(t, down.Verified)
			assert.Equal(t, up.Checksum, down.Checksum)

			stats, err := repo.Bucket().Stats(ctx, conf.Bucket)
			require.NoError(t, err)
			assert.Equal(t, BucketStats{ObjectCount: 1, TotalSize: 10}, stats)

			_, err = repo.Bucket().DeleteObjects(ctx, conf.Bucket)
			require.NoError(t, err)
			require.NoError(t, repo.Bucket().Delete(ctx, conf.Bucket))
		})
	}
}

func TestMinio(t *testing.T) {
	if os.Getenv("EXCLUDE_MINIO") != "" {
		return
	}
	if minioURL = testlib.MinioURL(); minioURL != "" {
		testMinio(t)
		return
	}

	runWithMinioDockerImage(
		"minio/minio",
		"latest",
		[]string{"MINIO_ROOT_USER=" + minioUser, "MINIO_ROOT_PASSWORD=" + minioPassword},
		testMinio,
		t,
	)
}

func runWithMinioDockerImage(repo, tag string, env []string, testFunc func(t *testing.T), t *testing.T) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Could not connect to docker: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("Docker is not available: %s", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: repo,
		Tag:        tag,
		Env:        env,
		Cmd:        []string{"server", "/data"},
	})
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	defer func() {
		if err := pool.Purge(resource); err != nil {
			t.Fatalf("Could not purge resource: %s", err)
		}
	}()

	minioURL = fmt.Sprintf("http://%s", resource.GetHostPort("9000/tcp"))
	if err := pool.Retry(func() error {
		resp, err := http.Get(minioURL + "/minio/health/live")
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("minio not ready: %s", resp.Status)
		}
		return nil
	}); err != nil {
		t.Fatalf("Could not connect to docker: %s", err)
	}

	testFunc(t)
}
