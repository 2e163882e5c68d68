// Package descriptor implements the container for multi-indexed feature
// tensors and its index algebra: Densify moves sample variables into
// feature space, Dot computes block-respecting kernels between descriptors.
package descriptor

import (
	"fmt"

	"github.com/hupe1980/rascal/indexes"
)

// SpatialName is the mandatory last column of gradient samples.
const SpatialName = "spatial"

// Descriptor owns a samples x features value matrix, and optionally a
// gradient samples x features gradient matrix.
type Descriptor struct {
	values   *Matrix
	samples  *indexes.Indexes
	features *indexes.Indexes

	gradients       *Matrix
	gradientSamples *indexes.Indexes
}

// New creates an empty descriptor.
func New() *Descriptor {
	return &Descriptor{
		values:   NewMatrix(0, 0),
		samples:  indexes.Empty(),
		features: indexes.Empty(),
	}
}

// Prepare shapes the descriptor for the given samples and features. Values are
// zero-filled and any gradient data is dropped.
func (d *Descriptor) Prepare(samples, features *indexes.Indexes) {
	d.samples = samples
	d.features = features
	d.values = NewMatrix(samples.Count(), features.Count())

	d.gradients = nil
	d.gradientSamples = nil
}

// PrepareGradients shapes the descriptor for values and gradients. Both
// matrices are zero-filled.
//
// It panics if the last column of gradientSamples is not named "spatial".
func (d *Descriptor) PrepareGradients(samples, gradientSamples, features *indexes.Indexes) {
	names := gradientSamples.Names()
	if len(names) == 0 || names[len(names)-1] != SpatialName {
		panic(fmt.Sprintf("descriptor: the last gradient sample column must be %q, got %v", SpatialName, names))
	}

	d.samples = samples
	d.features = features
	d.values = NewMatrix(samples.Count(), features.Count())

	d.gradientSamples = gradientSamples
	d.gradients = NewMatrix(gradientSamples.Count(), features.Count())
}

// Values returns the value matrix.
func (d *Descriptor) Values() *Matrix { return d.values }

// Samples returns the row labels of Values.
func (d *Descriptor) Samples() *indexes.Indexes { return d.samples }

// Features returns the column labels of Values and Gradients.
func (d *Descriptor) Features() *indexes.Indexes { return d.features }

// Gradients returns the gradient matrix, or nil.
func (d *Descriptor) Gradients() *Matrix { return d.gradients }

// GradientSamples returns the row labels of Gradients, or nil.
func (d *Descriptor) GradientSamples() *indexes.Indexes { return d.gradientSamples }

// HasGradients reports whether gradient data is present.
func (d *Descriptor) HasGradients() bool { return d.gradients != nil }

// Clone returns a deep copy. Index tables are immutable and shared.
func (d *Descriptor) Clone() *Descriptor {
	c := &Descriptor{
		values:          d.values.Clone(),
		samples:         d.samples,
		features:        d.features,
		gradientSamples: d.gradientSamples,
	}
	if d.gradients != nil {
		c.gradients = d.gradients.Clone()
	}
	return c
}

// Bytes returns the storage size of the value and gradient matrices.
func (d *Descriptor) Bytes() int64 {
	n := Bytes(d.values.rows, d.values.cols)
	if d.gradients != nil {
		n += Bytes(d.gradients.rows, d.gradients.cols)
	}
	return n
}
