// Package kernel holds the float64 inner product used by the descriptor
// algebra. The variant is selected once at init from the CPU features.
package kernel

import "math"

var dotImpl = dotUnrolled

func selectImpl(isa ISA) {
	switch isa {
	case FMA:
		dotImpl = dotFMA
	case Unrolled:
		dotImpl = dotUnrolled
	default:
		dotImpl = dotGeneric
	}
}

// Dot calculates the inner product of two vectors.
//
// It assumes len(a) == len(b); callers are responsible for matching lengths.
func Dot(a, b []float64) float64 {
	return dotImpl(a, b)
}

// DotWith calculates the inner product using a specific variant, falling back
// to Generic when the variant is not available on this CPU.
func DotWith(isa ISA, a, b []float64) float64 {
	if !isISAAvailable(isa) {
		isa = Generic
	}
	switch isa {
	case FMA:
		return dotFMA(a, b)
	case Unrolled:
		return dotUnrolled(a, b)
	default:
		return dotGeneric(a, b)
	}
}

func dotGeneric(a, b []float64) float64 {
	var ret float64
	for i := range a {
		ret += a[i] * b[i]
	}
	return ret
}

func dotUnrolled(a, b []float64) float64 {
	b = b[:len(a)]

	var s0, s1, s2, s3 float64
	i := 0
	for ; i+4 <= len(a); i += 4 {
		s0 += a[i] * b[i]
		s1 += a[i+1] * b[i+1]
		s2 += a[i+2] * b[i+2]
		s3 += a[i+3] * b[i+3]
	}
	for ; i < len(a); i++ {
		s0 += a[i] * b[i]
	}
	return (s0 + s1) + (s2 + s3)
}

func dotFMA(a, b []float64) float64 {
	b = b[:len(a)]

	var s0, s1, s2, s3 float64
	i := 0
	for ; i+4 <= len(a); i += 4 {
		s0 = math.FMA(a[i], b[i], s0)
		s1 = math.FMA(a[i+1], b[i+1], s1)
		s2 = math.FMA(a[i+2], b[i+2], s2)
		s3 = math.FMA(a[i+3], b[i+3], s3)
	}
	for ; i < len(a); i++ {
		s0 = math.FMA(a[i], b[i], s0)
	}
	return (s0 + s1) + (s2 + s3)
}
