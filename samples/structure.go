package samples

import (
	"github.com/hupe1980/rascal/descriptor"
	"github.com/hupe1980/rascal/indexes"
	"github.com/hupe1980/rascal/systems"
)

// StructureSpecies creates one sample per species present in each structure,
// with the columns (structure, species).
type StructureSpecies struct{}

var _ Builder = StructureSpecies{}

// Names implements Builder.
func (StructureSpecies) Names() []string {
	return []string{"structure", "species"}
}

// Samples implements Builder. Species are sorted inside each structure.
func (s StructureSpecies) Samples(list []systems.System) (*indexes.Indexes, error) {
	b := indexes.NewBuilder(s.Names()...)
	for structure, system := range list {
		for _, species := range sortedUnique(system.Species()) {
			b.Add(indexes.Value(structure), indexes.Value(species))
		}
	}
	return b.Finish(), nil
}

// WithGradients implements Builder. Each sample has gradients with respect to
// every atom of its species, in atom order.
func (s StructureSpecies) WithGradients(list []systems.System) (*indexes.Indexes, *indexes.Indexes, error) {
	samples, err := s.Samples(list)
	if err != nil {
		return nil, nil, err
	}

	b := indexes.NewBuilder("structure", "species", "atom", descriptor.SpatialName)
	for _, sample := range samples.All() {
		structure, species := sample[0], sample[1]
		for atom, atomSpecies := range list[structure].Species() {
			if indexes.Value(atomSpecies) == species {
				addSpatial(b, structure, species, indexes.Value(atom))
			}
		}
	}

	return samples, b.Finish(), nil
}
