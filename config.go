package rascal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/rascal/blobstore"
	rascalminio "github.com/hupe1980/rascal/blobstore/minio"
	"github.com/hupe1980/rascal/blobstore/s3"
	"github.com/hupe1980/rascal/codec"
	"github.com/hupe1980/rascal/persistence"
)

// Config is the file form of the engine options.
//
//	workers: 8
//	memory_limit_bytes: 1073741824
//	log:
//	  level: debug
//	  format: json
//	snapshots:
//	  codec: cbor
//	  compression: zstd
//	store:
//	  type: local
//	  path: ./snapshots
type Config struct {
	Workers            int   `yaml:"workers"`
	MemoryLimitBytes   int64 `yaml:"memory_limit_bytes"`
	MaxConcurrentOps   int64 `yaml:"max_concurrent_ops"`
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec"`

	Log       LogConfig      `yaml:"log"`
	Snapshots SnapshotConfig `yaml:"snapshots"`
	Store     StoreConfig    `yaml:"store"`
}

// LogConfig selects the logger.
type LogConfig struct {
	// Level is debug, info, warn or error. Default: info.
	Level string `yaml:"level"`
	// Format is text or json. Default: text.
	Format string `yaml:"format"`
}

// SnapshotConfig selects the snapshot encoding.
type SnapshotConfig struct {
	Codec       string `yaml:"codec"`
	Compression string `yaml:"compression"`
}

// StoreConfig selects the snapshot store.
type StoreConfig struct {
	// Type is memory (default), local, s3 or minio.
	Type string `yaml:"type"`

	// Path is the directory of a local store.
	Path string `yaml:"path"`

	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`

	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// LoadConfig decodes a YAML configuration. Unknown fields are rejected.
func LoadConfig(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("rascal: load config: %w", err)
	}
	return &cfg, nil
}

// Options converts the configuration into engine options. ctx is used to
// resolve cloud credentials.
func (c *Config) Options(ctx context.Context) ([]Option, error) {
	opts := []Option{
		WithWorkers(c.Workers),
		WithMemoryLimit(c.MemoryLimitBytes),
		WithMaxConcurrentOps(c.MaxConcurrentOps),
		WithIOLimit(c.IOLimitBytesPerSec),
	}

	logger, err := c.Log.logger()
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithLogger(logger))

	if c.Snapshots.Codec != "" {
		cd, ok := codec.ByName(c.Snapshots.Codec)
		if !ok {
			return nil, fmt.Errorf("%w: unknown codec %q, expected one of %s",
				ErrInvalidParameter, c.Snapshots.Codec, strings.Join(codec.Names(), ", "))
		}
		opts = append(opts, WithCodec(cd))
	}
	if c.Snapshots.Compression != "" {
		comp, err := persistence.ParseCompression(c.Snapshots.Compression)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
		}
		opts = append(opts, WithCompression(comp))
	}

	store, err := c.Store.open(ctx)
	if err != nil {
		return nil, err
	}
	if store != nil {
		opts = append(opts, WithBlobStore(store))
	}
	return opts, nil
}

func (c LogConfig) logger() (*Logger, error) {
	level := slog.LevelInfo
	if c.Level != "" {
		if err := level.UnmarshalText([]byte(c.Level)); err != nil {
			return nil, fmt.Errorf("%w: log level: %w", ErrInvalidParameter, err)
		}
	}
	switch strings.ToLower(c.Format) {
	case "", "text":
		return NewTextLogger(level), nil
	case "json":
		return NewJSONLogger(level), nil
	default:
		return nil, fmt.Errorf("%w: unknown log format %q", ErrInvalidParameter, c.Format)
	}
}

func (c StoreConfig) open(ctx context.Context) (blobstore.Store, error) {
	switch strings.ToLower(c.Type) {
	case "", "memory":
		return nil, nil
	case "local":
		if c.Path == "" {
			return nil, fmt.Errorf("%w: local store needs a path", ErrInvalidParameter)
		}
		return blobstore.NewLocalStore(c.Path)
	case "s3":
		if c.Bucket == "" {
			return nil, fmt.Errorf("%w: s3 store needs a bucket", ErrInvalidParameter)
		}
		opts := []s3.Option{s3.WithPrefix(c.Prefix)}
		if c.Region != "" {
			opts = append(opts, s3.WithRegion(c.Region))
		}
		if c.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(c.Endpoint))
		}
		return s3.New(ctx, c.Bucket, opts...)
	case "minio":
		if c.Bucket == "" || c.Endpoint == "" {
			return nil, fmt.Errorf("%w: minio store needs an endpoint and a bucket", ErrInvalidParameter)
		}
		client, err := minio.New(c.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
			Secure: c.Secure,
			Region: c.Region,
		})
		if err != nil {
			return nil, err
		}
		return rascalminio.NewStore(client, c.Bucket, c.Prefix), nil
	default:
		return nil, fmt.Errorf("%w: unknown store type %q", ErrInvalidParameter, c.Type)
	}
}
