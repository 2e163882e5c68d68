package descriptor

import (
	"log/slog"
	"runtime"
)

// ReserveFunc is consulted with the size of the storage an operation is
// about to allocate. A non-nil error aborts the operation before anything
// is allocated; release is called once the operation returns.
type ReserveFunc func(bytes int64) (release func(), err error)

type options struct {
	logger  *slog.Logger
	workers int
	reserve ReserveFunc
}

// Option configures Densify and Dot.
type Option func(*options)

// WithLogger sets the logger receiving diagnostics. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWorkers bounds the number of goroutines used by Dot.
// Values <= 0 mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithReserve installs a memory reservation hook.
func WithReserve(fn ReserveFunc) Option {
	return func(o *options) {
		o.reserve = fn
	}
}

func applyOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}

func (o *options) reserveBytes(bytes int64) (func(), error) {
	if o.reserve == nil || bytes == 0 {
		return func() {}, nil
	}
	release, err := o.reserve(bytes)
	if err != nil {
		return nil, err
	}
	if release == nil {
		release = func() {}
	}
	return release, nil
}

// DotOptions controls Dot.
type DotOptions struct {
	// ReduceAcross lists the sample variables that are treated as feature
	// blocks: only rows with equal values for them are combined.
	ReduceAcross []string
	// Gradients also computes the lhs gradients against rhs values.
	Gradients bool
	// Normalize divides every entry by the norms of both rows.
	Normalize bool
}
