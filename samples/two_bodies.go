package samples

import (
	"github.com/hupe1980/rascal/descriptor"
	"github.com/hupe1980/rascal/indexes"
	"github.com/hupe1980/rascal/systems"
)

// TwoBodiesSpecies creates one sample per atom and per species of its
// neighbors within Cutoff, with the columns
// (structure, center, species_center, species_neighbor).
type TwoBodiesSpecies struct {
	Cutoff float64
}

var _ Builder = TwoBodiesSpecies{}

// Names implements Builder.
func (TwoBodiesSpecies) Names() []string {
	return []string{"structure", "center", "species_center", "species_neighbor"}
}

// neighbors returns the neighbors of center in pair order.
func neighbors(pairs []systems.Pair, center int) []int {
	var out []int
	for _, pair := range pairs {
		switch center {
		case pair.First:
			out = append(out, pair.Second)
		case pair.Second:
			out = append(out, pair.First)
		}
	}
	return out
}

// Samples implements Builder. Neighbor species are sorted for each center.
func (t TwoBodiesSpecies) Samples(list []systems.System) (*indexes.Indexes, error) {
	b := indexes.NewBuilder(t.Names()...)
	for structure, system := range list {
		if err := system.ComputeNeighbors(t.Cutoff); err != nil {
			return nil, err
		}

		species := system.Species()
		pairs := system.Pairs()
		for center := 0; center < system.Size(); center++ {
			around := neighbors(pairs, center)
			aroundSpecies := make([]int, len(around))
			for n, atom := range around {
				aroundSpecies[n] = species[atom]
			}

			for _, neighbor := range sortedUnique(aroundSpecies) {
				b.Add(
					indexes.Value(structure),
					indexes.Value(center),
					indexes.Value(species[center]),
					indexes.Value(neighbor),
				)
			}
		}
	}
	return b.Finish(), nil
}

// WithGradients implements Builder. Each sample has gradients with respect to
// the center, then every neighbor of the sample species in pair order.
func (t TwoBodiesSpecies) WithGradients(list []systems.System) (*indexes.Indexes, *indexes.Indexes, error) {
	samples, err := t.Samples(list)
	if err != nil {
		return nil, nil, err
	}

	names := append(t.Names(), "neighbor", descriptor.SpatialName)
	b := indexes.NewBuilder(names...)
	for _, sample := range samples.All() {
		system := list[sample[0]]
		center := int(sample[1])
		speciesNeighbor := sample[3]

		addSpatial(b, sample[0], sample[1], sample[2], sample[3], sample[1])

		species := system.Species()
		for _, atom := range neighbors(system.Pairs(), center) {
			if indexes.Value(species[atom]) == speciesNeighbor {
				addSpatial(b, sample[0], sample[1], sample[2], sample[3], indexes.Value(atom))
			}
		}
	}

	return samples, b.Finish(), nil
}
