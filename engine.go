package rascal

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/rascal/blobstore"
	"github.com/hupe1980/rascal/descriptor"
	"github.com/hupe1980/rascal/indexes"
	"github.com/hupe1980/rascal/persistence"
	"github.com/hupe1980/rascal/resource"
)

var tracer = otel.Tracer("github.com/hupe1980/rascal")

// DotOptions controls Engine.Dot.
type DotOptions = descriptor.DotOptions

// Engine runs descriptor operations under shared resource limits and keeps
// snapshots in a blob store. It is safe for concurrent use.
type Engine struct {
	opts  options
	rc    *resource.Controller
	store blobstore.Store

	mu     sync.RWMutex
	closed bool
}

// New creates an engine.
func New(opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.compression > persistence.CompressionZSTD {
		return nil, fmt.Errorf("%w: unknown compression %s", ErrInvalidParameter, o.compression)
	}
	if o.memoryLimit < 0 || o.ioLimit < 0 {
		return nil, fmt.Errorf("%w: limits must not be negative", ErrInvalidParameter)
	}

	store := o.store
	if store == nil {
		store = blobstore.NewMemoryStore()
	}

	return &Engine{
		opts: o,
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes:   o.memoryLimit,
			MaxConcurrentOps:   o.maxConcurrentOps,
			IOLimitBytesPerSec: o.ioLimit,
		}),
		store: store,
	}, nil
}

// start admits an operation: it fails on a closed engine, waits for an
// operation slot and opens a span. Every successful start must be paired
// with finish.
func (e *Engine) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span, error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return ctx, nil, ErrClosed
	}
	if err := e.rc.AcquireOp(ctx); err != nil {
		e.mu.RUnlock()
		return ctx, nil, err
	}
	ctx, span := tracer.Start(ctx, "rascal."+op, trace.WithAttributes(attrs...))
	return ctx, span, nil
}

func (e *Engine) finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
	e.rc.ReleaseOp()
	e.mu.RUnlock()
}

func (e *Engine) descriptorOptions(ctx context.Context) []descriptor.Option {
	return []descriptor.Option{
		descriptor.WithLogger(e.opts.logger.Logger),
		descriptor.WithWorkers(e.opts.workers),
		descriptor.WithReserve(e.rc.Reserve(ctx)),
	}
}

// Densify moves the sample variables of d into feature space in place; see
// descriptor.Descriptor.Densify. A nil requested lets the observed keys
// define the feature blocks.
func (e *Engine) Densify(ctx context.Context, d *descriptor.Descriptor, variables []string, requested [][]indexes.Value) (err error) {
	begin := time.Now()
	ctx, span, err := e.start(ctx, "Densify",
		attribute.StringSlice("variables", variables),
		attribute.Int("requested", len(requested)),
		attribute.Int("samples", d.Samples().Count()),
	)
	if err != nil {
		return err
	}
	defer func() {
		e.opts.metricsCollector.RecordDensify(d.Features().Count(), time.Since(begin), err)
		e.opts.logger.LogDensify(ctx, variables, d.Features().Count(), time.Since(begin), err)
		e.finish(span, err)
	}()

	if err = ctx.Err(); err != nil {
		return err
	}
	err = translateError(d.Densify(variables, requested, e.descriptorOptions(ctx)...))
	if err == nil {
		span.SetAttributes(attribute.Int("features", d.Features().Count()))
	}
	return err
}

// Dot computes the block-respecting product of lhs and rhs; see
// descriptor.Dot.
func (e *Engine) Dot(ctx context.Context, lhs, rhs *descriptor.Descriptor, options DotOptions) (out *descriptor.Descriptor, err error) {
	begin := time.Now()
	ctx, span, err := e.start(ctx, "Dot",
		attribute.StringSlice("reduce_across", options.ReduceAcross),
		attribute.Bool("gradients", options.Gradients),
		attribute.Bool("normalize", options.Normalize),
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		var rows, cols int
		if out != nil {
			rows, cols = out.Values().Rows(), out.Values().Cols()
		}
		e.opts.metricsCollector.RecordDot(rows, cols, time.Since(begin), err)
		e.opts.logger.LogDot(ctx, rows, cols, time.Since(begin), err)
		e.finish(span, err)
	}()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	out, err = descriptor.Dot(lhs, rhs, options, e.descriptorOptions(ctx)...)
	if err != nil {
		if !lhs.Features().Equal(rhs.Features()) {
			return nil, &ErrShapeMismatch{
				Expected: lhs.Features().Count(),
				Actual:   rhs.Features().Count(),
				cause:    err,
			}
		}
		return nil, translateError(err)
	}
	span.SetAttributes(
		attribute.Int("rows", out.Values().Rows()),
		attribute.Int("cols", out.Values().Cols()),
	)
	return out, nil
}

// Save writes a snapshot of d and returns its name. An empty name is replaced
// by a random UUID.
func (e *Engine) Save(ctx context.Context, name string, d *descriptor.Descriptor) (_ string, err error) {
	if name == "" {
		name = uuid.NewString()
	}

	begin := time.Now()
	ctx, span, err := e.start(ctx, "Save", attribute.String("name", name))
	if err != nil {
		return "", err
	}
	var size int64
	defer func() {
		e.opts.metricsCollector.RecordSave(size, time.Since(begin), err)
		e.opts.logger.LogSave(ctx, name, size, err)
		e.finish(span, err)
	}()

	if verr := blobstore.ValidateName(name); verr != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidParameter, verr)
		return "", err
	}

	var buf bytes.Buffer
	w := resource.NewRateLimitedWriter(ctx, &buf, e.rc)
	size, err = persistence.Encode(w, d,
		persistence.WithCodec(e.opts.codec),
		persistence.WithCompression(e.opts.compression),
	)
	if err != nil {
		return "", err
	}
	span.SetAttributes(attribute.Int64("bytes", size))

	if err = e.store.Put(ctx, name, buf.Bytes()); err != nil {
		err = translateError(err)
		return "", err
	}
	return name, nil
}

// Load reads a snapshot written by Save.
func (e *Engine) Load(ctx context.Context, name string) (_ *descriptor.Descriptor, err error) {
	begin := time.Now()
	ctx, span, err := e.start(ctx, "Load", attribute.String("name", name))
	if err != nil {
		return nil, err
	}
	defer func() {
		e.opts.metricsCollector.RecordLoad(time.Since(begin), err)
		e.opts.logger.LogLoad(ctx, name, err)
		e.finish(span, err)
	}()

	rc, err := e.store.Open(ctx, name)
	if err != nil {
		err = translateError(err)
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	d, err := persistence.Decode(resource.NewRateLimitedReader(ctx, rc, e.rc),
		persistence.WithDecodeReserve(e.rc.Reserve(ctx)),
	)
	if err != nil {
		err = translateError(err)
		return nil, err
	}
	return d, nil
}

// Delete removes a snapshot. Deleting a missing snapshot is not an error.
func (e *Engine) Delete(ctx context.Context, name string) (err error) {
	ctx, span, err := e.start(ctx, "Delete", attribute.String("name", name))
	if err != nil {
		return err
	}
	defer func() { e.finish(span, err) }()

	err = translateError(e.store.Delete(ctx, name))
	return err
}

// List returns the sorted snapshot names starting with prefix.
func (e *Engine) List(ctx context.Context, prefix string) (_ []string, err error) {
	ctx, span, err := e.start(ctx, "List", attribute.String("prefix", prefix))
	if err != nil {
		return nil, err
	}
	defer func() { e.finish(span, err) }()

	names, err := e.store.List(ctx, prefix)
	if err != nil {
		return nil, translateError(err)
	}
	span.SetAttributes(attribute.Int("count", len(names)))
	return names, nil
}

// Stats returns the current resource usage.
func (e *Engine) Stats() resource.Stats {
	return e.rc.Stats()
}

// Close waits for running operations and rejects new ones with ErrClosed.
// Closing twice is a no-op.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
