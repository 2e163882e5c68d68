package persistence_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rascal/codec"
	"github.com/hupe1980/rascal/descriptor"
	"github.com/hupe1980/rascal/indexes"
	"github.com/hupe1980/rascal/persistence"
	"github.com/hupe1980/rascal/testutil"
)

func gradientFixture(rng *testutil.RNG) *descriptor.Descriptor {
	samples := indexes.FromRows([]string{"structure", "center"},
		[]indexes.Value{0, 0},
		[]indexes.Value{0, 1},
	)
	gradientSamples := indexes.FromRows([]string{"structure", "center", "neighbor", "spatial"},
		[]indexes.Value{0, 0, 1, 0},
		[]indexes.Value{0, 0, 1, 1},
		[]indexes.Value{0, 0, 1, 2},
	)
	return testutil.FilledDescriptorWithGradients(rng, samples, gradientSamples, testutil.DummyFeatures())
}

func assertSameDescriptor(t *testing.T, want, got *descriptor.Descriptor) {
	t.Helper()
	assert.True(t, want.Samples().Equal(got.Samples()), "samples")
	assert.True(t, want.Features().Equal(got.Features()), "features")
	assert.True(t, want.Values().Equal(got.Values()), "values")
	assert.Equal(t, want.HasGradients(), got.HasGradients())
	if want.HasGradients() {
		assert.True(t, want.GradientSamples().Equal(got.GradientSamples()), "gradient samples")
		assert.True(t, want.Gradients().Equal(got.Gradients()), "gradients")
	}
}

func TestRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(7)
	plain := testutil.FilledDescriptor(rng,
		testutil.RandomSamples(rng, 20, []indexes.Value{1, 6, 8}),
		testutil.DummyFeatures(),
	)

	cases := map[string]*descriptor.Descriptor{
		"empty":     descriptor.New(),
		"plain":     plain,
		"gradients": gradientFixture(rng),
	}

	for name, d := range cases {
		for _, codecName := range codec.Names() {
			for _, c := range []persistence.Compression{persistence.CompressionNone, persistence.CompressionLZ4, persistence.CompressionZSTD} {
				t.Run(fmt.Sprintf("%s/%s/%s", name, codecName, c), func(t *testing.T) {
					cd, ok := codec.ByName(codecName)
					require.True(t, ok)

					var buf bytes.Buffer
					n, err := persistence.Encode(&buf, d,
						persistence.WithCodec(cd),
						persistence.WithCompression(c),
						persistence.WithBlockSize(64),
					)
					require.NoError(t, err)
					assert.Equal(t, int64(buf.Len()), n)

					got, err := persistence.Decode(&buf)
					require.NoError(t, err)
					assertSameDescriptor(t, d, got)
				})
			}
		}
	}
}

func TestCompressionShrinksZeros(t *testing.T) {
	samples := indexes.NewBuilder("sample")
	for i := range 1000 {
		samples.Add(indexes.Value(i))
	}
	d := descriptor.New()
	d.Prepare(samples.Finish(), testutil.DummyFeatures())

	var raw, packed bytes.Buffer
	_, err := persistence.Encode(&raw, d, persistence.WithCompression(persistence.CompressionNone))
	require.NoError(t, err)
	_, err = persistence.Encode(&packed, d, persistence.WithCompression(persistence.CompressionZSTD))
	require.NoError(t, err)

	assert.Less(t, packed.Len(), raw.Len()/4)
}

func TestDecodeErrors(t *testing.T) {
	rng := testutil.NewRNG(1)
	var buf bytes.Buffer
	_, err := persistence.Encode(&buf, gradientFixture(rng), persistence.WithCompression(persistence.CompressionNone))
	require.NoError(t, err)
	good := buf.Bytes()

	mutate := func(fn func(b []byte) []byte) []byte {
		return fn(bytes.Clone(good))
	}

	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, persistence.ErrBadMagic},
		{"magic", mutate(func(b []byte) []byte { b[0] = 'X'; return b }), persistence.ErrBadMagic},
		{"version", mutate(func(b []byte) []byte { b[4] = 99; return b }), persistence.ErrUnsupportedVersion},
		{"codec", mutate(func(b []byte) []byte { b[7] = 'X'; return b }), persistence.ErrUnknownCodec},
		{"truncated", good[:len(good)-10], persistence.ErrCorrupt},
		{"checksum", mutate(func(b []byte) []byte { b[len(b)-1] ^= 0xff; return b }), persistence.ErrChecksum},
		{"payload", mutate(func(b []byte) []byte { b[len(b)-20] ^= 0xff; return b }), persistence.ErrChecksum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := persistence.Decode(bytes.NewReader(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestDecodeChecksumMismatchDetails(t *testing.T) {
	var buf bytes.Buffer
	_, err := persistence.Encode(&buf, gradientFixture(testutil.NewRNG(3)))
	require.NoError(t, err)
	data := buf.Bytes()
	data[len(data)-2] ^= 0x01

	_, err = persistence.Decode(bytes.NewReader(data))
	var mismatch *persistence.ChecksumMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.NotEqual(t, mismatch.Expected, mismatch.Actual)
}

func TestDecodeReserve(t *testing.T) {
	d := gradientFixture(testutil.NewRNG(5))
	var buf bytes.Buffer
	_, err := persistence.Encode(&buf, d)
	require.NoError(t, err)
	data := buf.Bytes()

	var reserved int64
	released := false
	_, err = persistence.Decode(bytes.NewReader(data), persistence.WithDecodeReserve(func(n int64) (func(), error) {
		reserved = n
		return func() { released = true }, nil
	}))
	require.NoError(t, err)
	assert.Equal(t, d.Bytes(), reserved)
	assert.True(t, released)

	budget := errors.New("over budget")
	_, err = persistence.Decode(bytes.NewReader(data), persistence.WithDecodeReserve(func(int64) (func(), error) {
		return nil, budget
	}))
	assert.ErrorIs(t, err, budget)
}

func TestParseCompression(t *testing.T) {
	for _, c := range []persistence.Compression{persistence.CompressionNone, persistence.CompressionLZ4, persistence.CompressionZSTD} {
		got, err := persistence.ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	got, err := persistence.ParseCompression(" ZSTD ")
	require.NoError(t, err)
	assert.Equal(t, persistence.CompressionZSTD, got)

	_, err = persistence.ParseCompression("snappy")
	assert.Error(t, err)
}
