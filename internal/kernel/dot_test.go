package kernel

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Empty", nil, nil, 0},
		{"Positive values (size 3)", []float64{1, 2, 3}, []float64{4, 5, 6}, 32.0},
		{"Negative values (size 3)", []float64{-1, -2, -3}, []float64{-4, -5, -6}, 32.0},
		{"Mixed values (size 3)", []float64{1, -2, 3}, []float64{-4, 5, -6}, -32.0},
		{"More than 4 (size 6)", []float64{1, 2, 3, 1, 2, 3}, []float64{4, 5, 6, 4, 5, 6}, 64.0},
		{"Positive values (size 9)", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, 285.0},
		{"Positive values (size 16)", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, 1496.0},
	}

	for _, isa := range []ISA{Generic, Unrolled, FMA} {
		for _, tc := range tests {
			t.Run(isa.String()+"/"+tc.name, func(t *testing.T) {
				assert.Equal(t, tc.expected, DotWith(isa, tc.a, tc.b))
			})
		}
	}

	for _, tc := range tests {
		t.Run("active/"+tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Dot(tc.a, tc.b))
		})
	}
}

func TestDot_VariantsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, dim := range []int{1, 3, 7, 16, 33, 1000} {
		a := make([]float64, dim)
		b := make([]float64, dim)
		for i := range a {
			a[i] = rng.Float64()*2 - 1
			b[i] = rng.Float64()*2 - 1
		}

		expected := DotWith(Generic, a, b)
		assert.InDelta(t, expected, DotWith(Unrolled, a, b), 1e-9)
		assert.InDelta(t, expected, DotWith(FMA, a, b), 1e-9)
		assert.InDelta(t, expected, Dot(a, b), 1e-9)
	}
}

func TestParseISA(t *testing.T) {
	for _, isa := range []ISA{Generic, Unrolled, FMA} {
		parsed, ok := ParseISA(" " + isa.String() + " ")
		assert.True(t, ok)
		assert.Equal(t, isa, parsed)
	}

	parsed, ok := ParseISA("FMA")
	assert.True(t, ok)
	assert.Equal(t, FMA, parsed)

	_, ok = ParseISA("avx9000")
	assert.False(t, ok)
	assert.Equal(t, "unknown", ISA(42).String())
}

func TestActiveISA(t *testing.T) {
	assert.True(t, isISAAvailable(ActiveISA()))
	if !IsOverridden() && HasFMA() {
		assert.Equal(t, FMA, ActiveISA())
	}
}

func BenchmarkDot(b *testing.B) {
	const size = 4096
	rng := rand.New(rand.NewSource(1))
	va := make([]float64, size)
	vb := make([]float64, size)
	for i := range va {
		va[i] = rng.Float64()
		vb[i] = rng.Float64()
	}

	for _, isa := range []ISA{Generic, Unrolled, FMA} {
		b.Run(isa.String(), func(b *testing.B) {
			for b.Loop() {
				_ = DotWith(isa, va, vb)
			}
		})
	}
}
