package rascal_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rascal"
	"github.com/hupe1980/rascal/descriptor"
	"github.com/hupe1980/rascal/indexes"
	"github.com/hupe1980/rascal/samples"
	"github.com/hupe1980/rascal/testutil"
)

func newEngine(t *testing.T, opts ...rascal.Option) *rascal.Engine {
	t.Helper()
	opts = append([]rascal.Option{rascal.WithLogger(rascal.NoopLogger())}, opts...)
	e, err := rascal.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func structureSpecies(t *testing.T, seed int64) *descriptor.Descriptor {
	t.Helper()
	s, g, err := samples.StructureSpecies{}.WithGradients(testutil.Systems("water", "CH"))
	require.NoError(t, err)
	return testutil.FilledDescriptorWithGradients(testutil.NewRNG(seed), s, g, testutil.DummyFeatures())
}

func TestEngine_DensifyDot(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, rascal.WithWorkers(2))

	d := structureSpecies(t, 1)
	expected := d.Clone()
	require.NoError(t, expected.Densify([]string{"species"}, nil))

	require.NoError(t, e.Densify(ctx, d, []string{"species"}, nil))
	assert.True(t, expected.Features().Equal(d.Features()))
	assert.True(t, expected.Values().Equal(d.Values()))
	assert.Equal(t, 9, d.Features().Count())

	kernel, err := e.Dot(ctx, d, d, rascal.DotOptions{Normalize: true, Gradients: true})
	require.NoError(t, err)
	require.Equal(t, 2, kernel.Values().Rows())
	require.Equal(t, 2, kernel.Values().Cols())
	for i := range 2 {
		assert.InDelta(t, 1.0, kernel.Values().At(i, i), 1e-12)
	}
	assert.True(t, kernel.HasGradients())

	direct, err := descriptor.Dot(d, d, rascal.DotOptions{Normalize: true, Gradients: true})
	require.NoError(t, err)
	assert.InDeltaSlice(t, direct.Gradients().Data(), kernel.Gradients().Data(), 1e-12)

	assert.Zero(t, e.Stats().MemoryUsed)
	assert.Zero(t, e.Stats().OpsRunning)
}

func TestEngine_DensifyErrors(t *testing.T) {
	metrics := &rascal.BasicMetricsCollector{}
	e := newEngine(t, rascal.WithMetricsCollector(metrics))

	d := structureSpecies(t, 2)
	before := d.Clone()

	err := e.Densify(context.Background(), d, []string{"center"}, nil)
	assert.ErrorIs(t, err, rascal.ErrInvalidParameter)
	assert.True(t, before.Values().Equal(d.Values()))

	err = e.Densify(context.Background(), d, []string{"species"}, [][]indexes.Value{{1, 2}})
	assert.ErrorIs(t, err, rascal.ErrInvalidParameter)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.DensifyCount)
	assert.Equal(t, int64(2), stats.DensifyErrors)
}

func TestEngine_ShapeMismatch(t *testing.T) {
	e := newEngine(t)
	rng := testutil.NewRNG(3)
	s := testutil.RandomSamples(rng, 3, []indexes.Value{1, 6})

	lhs := testutil.FilledDescriptor(rng, s, testutil.DummyFeatures())
	rhs := testutil.FilledDescriptor(rng, s, indexes.FromRows([]string{"foo"}, []indexes.Value{0}))

	_, err := e.Dot(context.Background(), lhs, rhs, rascal.DotOptions{})
	var mismatch *rascal.ErrShapeMismatch
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 3, mismatch.Expected)
	assert.Equal(t, 1, mismatch.Actual)
	assert.ErrorIs(t, err, rascal.ErrInvalidParameter)
}

func TestEngine_MemoryBudget(t *testing.T) {
	e := newEngine(t, rascal.WithMemoryLimit(16))
	d := structureSpecies(t, 4)

	_, err := e.Dot(context.Background(), d, d, rascal.DotOptions{})
	assert.ErrorIs(t, err, rascal.ErrMemoryBudget)
	assert.Zero(t, e.Stats().MemoryUsed)
}

func TestEngine_SaveLoad(t *testing.T) {
	ctx := context.Background()
	metrics := &rascal.BasicMetricsCollector{}
	e := newEngine(t, rascal.WithMetricsCollector(metrics))

	d := structureSpecies(t, 5)

	name, err := e.Save(ctx, "", d)
	require.NoError(t, err)
	_, err = uuid.Parse(name)
	assert.NoError(t, err)

	_, err = e.Save(ctx, "kernels/k1", d)
	require.NoError(t, err)

	names, err := e.List(ctx, "kernels/")
	require.NoError(t, err)
	assert.Equal(t, []string{"kernels/k1"}, names)

	loaded, err := e.Load(ctx, name)
	require.NoError(t, err)
	assert.True(t, d.Samples().Equal(loaded.Samples()))
	assert.True(t, d.Values().Equal(loaded.Values()))
	assert.True(t, d.Gradients().Equal(loaded.Gradients()))

	require.NoError(t, e.Delete(ctx, name))
	_, err = e.Load(ctx, name)
	assert.ErrorIs(t, err, rascal.ErrNotFound)

	_, err = e.Save(ctx, "../escape", d)
	assert.ErrorIs(t, err, rascal.ErrInvalidParameter)

	stats := metrics.GetStats()
	assert.Equal(t, int64(3), stats.SaveCount)
	assert.Equal(t, int64(1), stats.SaveErrors)
	assert.Positive(t, stats.SaveBytes)
	assert.Equal(t, int64(2), stats.LoadCount)
	assert.Equal(t, int64(1), stats.LoadErrors)
}

func TestEngine_Closed(t *testing.T) {
	ctx := context.Background()
	e, err := rascal.New(rascal.WithLogger(nil))
	require.NoError(t, err)
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	d := structureSpecies(t, 6)
	assert.ErrorIs(t, e.Densify(ctx, d, []string{"species"}, nil), rascal.ErrClosed)
	_, err = e.Dot(ctx, d, d, rascal.DotOptions{})
	assert.ErrorIs(t, err, rascal.ErrClosed)
	_, err = e.Save(ctx, "x", d)
	assert.ErrorIs(t, err, rascal.ErrClosed)
	_, err = e.Load(ctx, "x")
	assert.ErrorIs(t, err, rascal.ErrClosed)
	assert.ErrorIs(t, e.Delete(ctx, "x"), rascal.ErrClosed)
	_, err = e.List(ctx, "")
	assert.ErrorIs(t, err, rascal.ErrClosed)
}

func TestEngine_CanceledContext(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := structureSpecies(t, 7)
	assert.ErrorIs(t, e.Densify(ctx, d, []string{"species"}, nil), context.Canceled)
}

func TestEngine_InvalidOptions(t *testing.T) {
	_, err := rascal.New(rascal.WithMemoryLimit(-1))
	assert.ErrorIs(t, err, rascal.ErrInvalidParameter)
}
