package descriptor

import (
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/rascal/indexes"
)

// Densify moves the sample columns named by variables into the features.
//
// Every distinct combination of values taken by the variables (a block key)
// becomes one block of features, made of the variables values followed by the
// previous features. Samples that only differ by their variables collapse into
// one row, in first-seen order; blocks are sorted by key. Missing combinations
// are zero-filled.
//
// requested, when not nil, gives the block keys to use instead of the
// observed ones, one row per block and one value per variable. Data whose key
// was not requested is dropped with a warning, so an empty non-nil requested
// leaves no feature at all.
//
// Densify is a no-op when variables is empty or the descriptor has no feature
// columns. Moving every sample column returns ErrInvalidParameter, as do
// unknown or duplicated variables. On error the descriptor is left unchanged.
func (d *Descriptor) Densify(variables []string, requested [][]indexes.Value, opts ...Option) error {
	if len(variables) == 0 || d.features.Size() == 0 {
		return nil
	}

	o := applyOptions(opts)

	var requestedKeys *indexes.SortedSet
	if requested != nil {
		requestedKeys = indexes.NewSortedSet()
		for n, row := range requested {
			if len(row) != len(variables) {
				return fmt.Errorf("%w: requested values must match the variables size: expected %d, got %d (row %d)",
					ErrInvalidParameter, len(variables), len(row), n)
			}
			requestedKeys.Insert(row)
		}
	}

	removed, err := removeFromSamples(d.samples, variables)
	if err != nil {
		return err
	}

	var removedGradients *removedSamples
	if d.gradients != nil {
		removedGradients, err = removeFromSamples(d.gradientSamples, variables)
		if err != nil {
			return err
		}
		if !removedGradients.keys.Equal(removed.keys) {
			panic(fmt.Sprintf("descriptor: gradient samples contain different values for %s than the samples themselves",
				formatVariables(variables)))
		}
	}

	keys := removed.keys
	if requestedKeys != nil {
		for _, key := range removed.keys.Rows() {
			if !requestedKeys.Contains(key) {
				o.logger.Warn("block key is not part of the requested features, its data is dropped",
					"variables", formatVariables(variables),
					"key", fmt.Sprint(key),
				)
			}
		}
		keys = requestedKeys
	}

	// [n, l, m] becomes [species_neighbor, n, l, m], one copy of the old
	// features per block key
	names := append(slices.Clone(variables), d.features.Names()...)
	builder := indexes.NewBuilder(names...)
	blocks := indexes.NewOrderedSet()
	row := make([]indexes.Value, len(names))
	for _, key := range keys.Rows() {
		blocks.Insert(key)
		copy(row, key)
		for _, feature := range d.features.All() {
			copy(row[len(key):], feature)
			builder.Add(row...)
		}
	}
	features := builder.Finish()

	bytes := Bytes(removed.samples.Count(), features.Count())
	if removedGradients != nil {
		bytes += Bytes(removedGradients.samples.Count(), features.Count())
	}
	release, err := o.reserveBytes(bytes)
	if err != nil {
		return fmt.Errorf("descriptor: densify: %w", err)
	}
	defer release()

	width := d.features.Count()
	filled := bitset.New(uint(keys.Len()))

	values := NewMatrix(removed.samples.Count(), features.Count())
	relocate(d.values, values, removed.mapping, blocks, width, filled)

	var gradients *Matrix
	if removedGradients != nil {
		gradients = NewMatrix(removedGradients.samples.Count(), features.Count())
		relocate(d.gradients, gradients, removedGradients.mapping, blocks, width, nil)
	}

	if filled.Count() != uint(keys.Len()) {
		for block, key := range keys.Rows() {
			if !filled.Test(uint(block)) {
				o.logger.Debug("requested block key has no data, block is zero-filled",
					"variables", formatVariables(variables),
					"key", fmt.Sprint(key),
				)
			}
		}
	}

	d.samples = removed.samples
	d.features = features
	d.values = values
	if removedGradients != nil {
		d.gradientSamples = removedGradients.samples
		d.gradients = gradients
	}

	return nil
}

// relocate copies every old row into its block of the new row. Rows whose
// key has no block are skipped.
func relocate(src, dst *Matrix, mapping []densifiedIndex, blocks *indexes.OrderedSet, width int, filled *bitset.BitSet) {
	for _, m := range mapping {
		block, ok := blocks.Position(m.key)
		if !ok {
			continue
		}
		start := block * width
		copy(dst.Row(m.newRow)[start:start+width], src.Row(m.oldRow))
		if filled != nil {
			filled.Set(uint(block))
		}
	}
}
