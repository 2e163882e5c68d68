package rascal

import (
	"runtime"

	"github.com/hupe1980/rascal/blobstore"
	"github.com/hupe1980/rascal/codec"
	"github.com/hupe1980/rascal/persistence"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	workers          int
	memoryLimit      int64
	maxConcurrentOps int64
	ioLimit          int64
	store            blobstore.Store
	codec            codec.Codec
	compression      persistence.Compression
}

func defaultOptions() options {
	return options{
		logger:           NewLogger(nil),
		metricsCollector: NoopMetricsCollector{},
		workers:          runtime.GOMAXPROCS(0),
		codec:            codec.Default,
		compression:      persistence.CompressionLZ4,
	}
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics sink. If nil is passed, metrics are
// discarded.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metricsCollector = m
	}
}

// WithWorkers bounds the goroutines used by a single Dot.
// Values <= 0 mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithMemoryLimit caps the matrix storage reserved by concurrent operations.
// 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMaxConcurrentOps caps the number of operations running at once.
func WithMaxConcurrentOps(n int64) Option {
	return func(o *options) {
		o.maxConcurrentOps = n
	}
}

// WithIOLimit caps the snapshot throughput of Save and Load in bytes per
// second. 0 means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithBlobStore sets the snapshot store. Defaults to a MemoryStore.
func WithBlobStore(s blobstore.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithCodec sets the codec of snapshot headers.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression sets the compression of snapshot payloads.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}
