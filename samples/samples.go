// Package samples builds the samples and gradient samples indexes of a
// descriptor from a list of systems.
package samples

import (
	"slices"

	"github.com/hupe1980/rascal/indexes"
	"github.com/hupe1980/rascal/systems"
)

// Builder creates the sample indexes for a set of systems.
type Builder interface {
	// Names returns the names of the sample columns.
	Names() []string
	// Samples returns one row per sample.
	Samples(systems []systems.System) (*indexes.Indexes, error)
	// WithGradients returns the samples together with the gradient samples.
	// Gradient samples extend every sample with the atom the derivative is
	// taken against and the spatial direction.
	WithGradients(systems []systems.System) (samples, gradients *indexes.Indexes, err error)
}

func sortedUnique(values []int) []int {
	values = slices.Clone(values)
	slices.Sort(values)
	return slices.Compact(values)
}

// addSpatial adds one gradient row per spatial direction.
func addSpatial(b *indexes.Builder, row ...indexes.Value) {
	full := append(row, 0)
	for spatial := indexes.Value(0); spatial < 3; spatial++ {
		full[len(full)-1] = spatial
		b.Add(full...)
	}
}
