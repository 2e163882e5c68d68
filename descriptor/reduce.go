package descriptor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/rascal/indexes"
)

// densifiedIndex records where the data of one old sample goes.
type densifiedIndex struct {
	oldRow int
	newRow int
	// values taken by the removed variables
	key []indexes.Value
}

// removedSamples is the result of removing variables from a samples table.
type removedSamples struct {
	samples *indexes.Indexes
	// same rows as samples, for constant time lookup
	rows    *indexes.OrderedSet
	keys    *indexes.SortedSet
	mapping []densifiedIndex
}

// removeFromSamples splits every row of samples into a block key made of the
// variables columns (in the order of variables) and a reduced row made of
// the remaining columns. Reduced rows keep their first-seen order.
func removeFromSamples(samples *indexes.Indexes, variables []string) (*removedSamples, error) {
	names := samples.Names()

	positions := make([]int, 0, len(variables))
	for _, v := range variables {
		pos, ok := samples.NamePosition(v)
		if !ok {
			return nil, fmt.Errorf("%w: can not densify along %q which is not present in the samples: [%s]",
				ErrInvalidParameter, v, strings.Join(names, ", "))
		}
		if slices.Contains(positions, pos) {
			return nil, fmt.Errorf("%w: variable %q is given more than once", ErrInvalidParameter, v)
		}
		positions = append(positions, pos)
	}

	kept := make([]int, 0, len(names)-len(positions))
	keptNames := make([]string, 0, len(names)-len(positions))
	for pos, name := range names {
		if !slices.Contains(positions, pos) {
			kept = append(kept, pos)
			keptNames = append(keptNames, name)
		}
	}
	if len(positions) > 0 && len(keptNames) == 0 {
		return nil, fmt.Errorf("%w: removing [%s] would leave the samples without any column",
			ErrInvalidParameter, strings.Join(variables, ", "))
	}

	rows := indexes.NewOrderedSet()
	keys := indexes.NewSortedSet()
	mapping := make([]densifiedIndex, 0, samples.Count())

	reduced := make([]indexes.Value, len(kept))
	for oldRow, sample := range samples.All() {
		key := make([]indexes.Value, len(positions))
		for n, pos := range positions {
			key[n] = sample[pos]
		}
		keys.Insert(key)

		for n, pos := range kept {
			reduced[n] = sample[pos]
		}
		newRow, _ := rows.Insert(reduced)

		mapping = append(mapping, densifiedIndex{oldRow: oldRow, newRow: newRow, key: key})
	}

	return &removedSamples{
		samples: rows.Indexes(keptNames),
		rows:    rows,
		keys:    keys,
		mapping: mapping,
	}, nil
}

func formatVariables(variables []string) string {
	if len(variables) == 1 {
		return variables[0]
	}
	return "(" + strings.Join(variables, ", ") + ")"
}
