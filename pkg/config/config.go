// Package config loads the connection settings of the CLI from the
// environment, an optional .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported storage drivers.
const (
	DriverS3    = "s3"
	DriverMinio = "minio"
)

// Environment variables and their defaults for local development against
// a MinIO server.
const (
	EnvAccessKey = "AWS_ACCESS_KEY_ID"
	EnvSecretKey = "AWS_SECRET_ACCESS_KEY"
	EnvRegion    = "AWS_REGION"
	EnvEndpoint  = "MINIO_ENDPOINT"
	EnvBucket    = "MINIO_BUCKET"
	EnvDriver    = "STORAGE_DRIVER"

	DefaultAccessKey = "minioadmin"
	DefaultSecretKey = "minioadmin"
	DefaultRegion    = "us-east-1"
	DefaultEndpoint  = "http://localhost:9000"
	DefaultBucket    = "mybucket"
	DefaultDriver    = DriverS3
)

// Config is the immutable connection configuration, loaded once at start-up.
type Config struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	Bucket    string
	Driver    string
}

// String hides the secret key so the config can be logged.
func (c Config) String() string {
	return fmt.Sprintf("Config{AccessKey:%s SecretKey:*** Region:%s Endpoint:%s Bucket:%s Driver:%s}",
		c.AccessKey, c.Region, c.Endpoint, c.Bucket, c.Driver)
}

// SetDefaults registers the defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	defaults := map[string]string{
		EnvAccessKey: DefaultAccessKey,
		EnvSecretKey: DefaultSecretKey,
		EnvRegion:    DefaultRegion,
		EnvEndpoint:  DefaultEndpoint,
		EnvBucket:    DefaultBucket,
		EnvDriver:    DefaultDriver,
	}
	for k, def := range defaults {
		v.SetDefault(k, def)
		_ = v.BindEnv(k)
	}
	v.AutomaticEnv()
}

// LoadDotEnv loads the .env files into the process environment. Variables
// already set are not overridden. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := godotenv.Read(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load reads the configuration out of v, which must have been prepared
// with SetDefaults.
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		AccessKey: v.GetString(EnvAccessKey),
		SecretKey: v.GetString(EnvSecretKey),
		Region:    v.GetString(EnvRegion),
		Endpoint:  strings.TrimRight(v.GetString(EnvEndpoint), "/"),
		Bucket:    v.GetString(EnvBucket),
		Driver:    strings.ToLower(v.GetString(EnvDriver)),
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks that c can be used to build a backend.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("config: endpoint is required")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("config: invalid endpoint %q: %w", c.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: endpoint %q must start with http:// or https://", c.Endpoint)
	}
	switch c.Driver {
	case DriverS3, DriverMinio:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Driver)
	}
	return nil
}
