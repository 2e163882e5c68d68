package descriptor

import (
	"fmt"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/rascal/indexes"
	"github.com/hupe1980/rascal/internal/kernel"
)

// dotEntry is a densifiedIndex whose block key was replaced by a dense id.
type dotEntry struct {
	oldRow int
	newRow int
	block  uint32
}

// Dot computes the kernel between d and other. See the package level Dot.
func (d *Descriptor) Dot(other *Descriptor, options DotOptions, opts ...Option) (*Descriptor, error) {
	return Dot(d, other, options, opts...)
}

// Dot computes the matrix that densifying both descriptors along
// options.ReduceAcross and multiplying lhs values by the transposed rhs values
// would give, without building the dense intermediates.
//
// The output samples are the reduced lhs samples and the output features are
// the reduced rhs samples. Rows are only combined when their ReduceAcross
// values match. With options.Gradients, the output gradients hold the lhs
// gradients against the rhs values. With options.Normalize, every entry is
// divided by the norms of its lhs and rhs rows; gradient rows use the norm of
// the sample owning them.
//
// ReduceAcross must leave at least one sample column on both sides, otherwise
// Dot returns ErrInvalidParameter. lhs and rhs are not modified.
func Dot(lhs, rhs *Descriptor, options DotOptions, opts ...Option) (*Descriptor, error) {
	if !lhs.features.Equal(rhs.features) {
		return nil, fmt.Errorf("%w: descriptors have different features, the dot product between them is not well defined",
			ErrInvalidParameter)
	}

	for _, variable := range options.ReduceAcross {
		if _, ok := lhs.samples.NamePosition(variable); !ok {
			return nil, fmt.Errorf("%w: %q does not appear on the left hand side samples for this dot product",
				ErrInvalidParameter, variable)
		}
		if _, ok := rhs.samples.NamePosition(variable); !ok {
			return nil, fmt.Errorf("%w: %q does not appear on the right hand side samples for this dot product",
				ErrInvalidParameter, variable)
		}
	}

	if options.Gradients && lhs.gradients == nil {
		return nil, fmt.Errorf("%w: the left hand side descriptor does not contain gradient data, but the dot product requested it",
			ErrInvalidParameter)
	}

	o := applyOptions(opts)

	removedLhs, err := removeFromSamples(lhs.samples, options.ReduceAcross)
	if err != nil {
		return nil, err
	}
	removedRhs, err := removeFromSamples(rhs.samples, options.ReduceAcross)
	if err != nil {
		return nil, err
	}
	var removedGrad *removedSamples
	if options.Gradients {
		removedGrad, err = removeFromSamples(lhs.gradientSamples, options.ReduceAcross)
		if err != nil {
			return nil, err
		}
	}

	// dense ids turn the block key comparison into an integer comparison
	blockIDs := indexes.NewOrderedSet()
	lhsEntries := toDotEntries(removedLhs.mapping, blockIDs)
	rhsEntries := toDotEntries(removedRhs.mapping, blockIDs)
	var gradEntries []dotEntry
	if removedGrad != nil {
		gradEntries = toDotEntries(removedGrad.mapping, blockIDs)
	}

	nRows := removedLhs.samples.Count()
	nCols := removedRhs.samples.Count()
	bytes := Bytes(nRows, nCols)
	if removedGrad != nil {
		bytes += Bytes(removedGrad.samples.Count(), nCols)
	}
	release, err := o.reserveBytes(bytes)
	if err != nil {
		return nil, fmt.Errorf("descriptor: dot: %w", err)
	}
	defer release()

	output := New()
	if removedGrad != nil {
		output.PrepareGradients(removedLhs.samples, removedGrad.samples, removedRhs.samples)
	} else {
		output.Prepare(removedLhs.samples, removedRhs.samples)
	}

	groups := groupByBlock(rhsEntries, blockIDs.Len())

	if err := accumulate(output.values, lhs.values, groupByRow(lhsEntries, nRows), rhs.values, rhsEntries, groups, o.workers); err != nil {
		return nil, err
	}
	if removedGrad != nil {
		rows := groupByRow(gradEntries, output.gradients.rows)
		if err := accumulate(output.gradients, lhs.gradients, rows, rhs.values, rhsEntries, groups, o.workers); err != nil {
			return nil, err
		}
	}

	if options.Normalize {
		normLhs, err := rowNorms(lhs.values, groupByRow(lhsEntries, nRows), o.workers)
		if err != nil {
			return nil, err
		}
		normRhs, err := rowNorms(rhs.values, groupByRow(rhsEntries, nCols), o.workers)
		if err != nil {
			return nil, err
		}

		for r := 0; r < nRows; r++ {
			row := output.values.Row(r)
			for c := range row {
				row[c] /= normLhs[r] * normRhs[c]
			}
		}

		if removedGrad != nil {
			owners := gradientOwners(output, removedLhs.rows)
			for g, owner := range owners {
				row := output.gradients.Row(g)
				for c := range row {
					row[c] /= normLhs[owner] * normRhs[c]
				}
			}
		}
	}

	return output, nil
}

func toDotEntries(mapping []densifiedIndex, blockIDs *indexes.OrderedSet) []dotEntry {
	entries := make([]dotEntry, len(mapping))
	for n, m := range mapping {
		id, _ := blockIDs.Insert(m.key)
		entries[n] = dotEntry{oldRow: m.oldRow, newRow: m.newRow, block: uint32(id)}
	}
	return entries
}

// groupByBlock returns, for every block id, the positions in entries having
// this id, in increasing order.
func groupByBlock(entries []dotEntry, nBlocks int) [][]uint32 {
	bitmaps := make([]*roaring.Bitmap, nBlocks)
	for n, e := range entries {
		if bitmaps[e.block] == nil {
			bitmaps[e.block] = roaring.New()
		}
		bitmaps[e.block].Add(uint32(n))
	}

	groups := make([][]uint32, nBlocks)
	for block, bm := range bitmaps {
		if bm != nil {
			groups[block] = bm.ToArray()
		}
	}
	return groups
}

func groupByRow(entries []dotEntry, nRows int) [][]dotEntry {
	rows := make([][]dotEntry, nRows)
	for _, e := range entries {
		rows[e.newRow] = append(rows[e.newRow], e)
	}
	return rows
}

// forEachRow runs fn over [0, n) split in contiguous chunks, at most workers at
// a time. Every row is handled by exactly one call.
func forEachRow(n, workers int, fn func(start, end int)) error {
	if n == 0 {
		return nil
	}

	chunk := (n + 4*workers - 1) / (4 * workers)
	if chunk < 1 {
		chunk = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	return g.Wait()
}

// accumulate adds into every out row the inner products between the source
// rows mapped to it and the same-block rhs rows.
func accumulate(out, src *Matrix, rows [][]dotEntry, rhs *Matrix, rhsEntries []dotEntry, groups [][]uint32, workers int) error {
	return forEachRow(len(rows), workers, func(start, end int) {
		for r := start; r < end; r++ {
			row := out.Row(r)
			for _, l := range rows[r] {
				a := src.Row(l.oldRow)
				for _, n := range groups[l.block] {
					e := rhsEntries[n]
					row[e.newRow] += kernel.Dot(a, rhs.Row(e.oldRow))
				}
			}
		}
	})
}

// rowNorms computes, for every reduced row, the square root of the sum of
// the inner products between all pairs of same-block source rows mapped to
// it. This equals the norm of the densified row.
func rowNorms(src *Matrix, rows [][]dotEntry, workers int) ([]float64, error) {
	type blockSum struct {
		block uint32
		sum   []float64
	}

	norms := make([]float64, len(rows))
	err := forEachRow(len(rows), workers, func(start, end int) {
		var sums []blockSum
		for r := start; r < end; r++ {
			sums = sums[:0]
			for _, e := range rows[r] {
				n := slices.IndexFunc(sums, func(s blockSum) bool { return s.block == e.block })
				if n < 0 {
					sums = append(sums, blockSum{block: e.block, sum: make([]float64, src.cols)})
					n = len(sums) - 1
				}
				sum := sums[n].sum
				for c, v := range src.Row(e.oldRow) {
					sum[c] += v
				}
			}

			var total float64
			for _, s := range sums {
				total += kernel.Dot(s.sum, s.sum)
			}
			norms[r] = math.Sqrt(total)
		}
	})
	return norms, err
}

// gradientOwners finds, for every gradient row, the value sample it derives
// from by dropping the atom and spatial columns.
func gradientOwners(output *Descriptor, samples *indexes.OrderedSet) []int {
	gradientSamples := output.gradientSamples
	size := gradientSamples.Size()
	if size != output.samples.Size()+2 {
		panic(fmt.Sprintf("descriptor: gradient samples have %d columns, expected %d", size, output.samples.Size()+2))
	}
	if names := gradientSamples.Names(); names[size-1] != SpatialName {
		panic(fmt.Sprintf("descriptor: the last gradient sample column must be %q, got %q", SpatialName, names[size-1]))
	}

	owners := make([]int, gradientSamples.Count())
	for g, sample := range gradientSamples.All() {
		owner, ok := samples.Position(sample[:size-2])
		if !ok {
			panic(fmt.Sprintf("descriptor: gradient sample %v does not correspond to a value sample", sample))
		}
		owners[g] = owner
	}
	return owners
}
