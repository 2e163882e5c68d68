package samples

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rascal/indexes"
	"github.com/hupe1980/rascal/systems"
	"github.com/hupe1980/rascal/testutil"
)

type v = indexes.Value

// checkSpatial verifies that gradient rows come in groups of three spatial
// directions sharing the expected prefix.
func checkSpatial(t *testing.T, gradients *indexes.Indexes, expected [][]v) {
	t.Helper()
	require.Equal(t, 3*len(expected), gradients.Count())
	for i, prefix := range expected {
		for spatial := 0; spatial < 3; spatial++ {
			row := gradients.Row(3*i + spatial)
			assert.Equal(t, prefix, row[:len(row)-1], "row %d", 3*i+spatial)
			assert.Equal(t, v(spatial), row[len(row)-1], "row %d", 3*i+spatial)
		}
	}
}

func TestStructureSpecies(t *testing.T) {
	list := testutil.Systems("water", "CH")

	got, err := StructureSpecies{}.Samples(list)
	require.NoError(t, err)
	assert.Equal(t, []string{"structure", "species"}, got.Names())
	require.Equal(t, 4, got.Count())
	assert.Equal(t, []v{0, 1}, got.Row(0))
	assert.Equal(t, []v{0, 123456}, got.Row(1))
	assert.Equal(t, []v{1, 1}, got.Row(2))
	assert.Equal(t, []v{1, 6}, got.Row(3))
}

func TestStructureSpecies_WithGradients(t *testing.T) {
	list := testutil.Systems("water", "CH")

	got, gradients, err := StructureSpecies{}.WithGradients(list)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Count())
	assert.Equal(t, []string{"structure", "species", "atom", "spatial"}, gradients.Names())

	checkSpatial(t, gradients, [][]v{
		{0, 1, 1},
		{0, 1, 2},
		{0, 123456, 0},
		{1, 1, 0},
		{1, 6, 1},
	})
}

func TestTwoBodiesSpecies(t *testing.T) {
	list := testutil.Systems("water")

	got, err := TwoBodiesSpecies{Cutoff: 3}.Samples(list)
	require.NoError(t, err)
	assert.Equal(t, []string{"structure", "center", "species_center", "species_neighbor"}, got.Names())

	require.Equal(t, 5, got.Count())
	assert.Equal(t, []v{0, 0, 123456, 1}, got.Row(0))
	assert.Equal(t, []v{0, 1, 1, 1}, got.Row(1))
	assert.Equal(t, []v{0, 1, 1, 123456}, got.Row(2))
	assert.Equal(t, []v{0, 2, 1, 1}, got.Row(3))
	assert.Equal(t, []v{0, 2, 1, 123456}, got.Row(4))
}

func TestTwoBodiesSpecies_WithGradients(t *testing.T) {
	list := testutil.Systems("water")

	_, gradients, err := TwoBodiesSpecies{Cutoff: 3}.WithGradients(list)
	require.NoError(t, err)
	assert.Equal(t, []string{"structure", "center", "species_center", "species_neighbor", "neighbor", "spatial"}, gradients.Names())

	checkSpatial(t, gradients, [][]v{
		// H channel around O
		{0, 0, 123456, 1, 0},
		{0, 0, 123456, 1, 1},
		{0, 0, 123456, 1, 2},
		// H channel around H1
		{0, 1, 1, 1, 1},
		{0, 1, 1, 1, 2},
		// O channel around H1
		{0, 1, 1, 123456, 1},
		{0, 1, 1, 123456, 0},
		// H channel around H2
		{0, 2, 1, 1, 2},
		{0, 2, 1, 1, 1},
		// O channel around H2
		{0, 2, 1, 123456, 2},
		{0, 2, 1, 123456, 0},
	})
}

func TestTwoBodiesSpecies_SmallCutoff(t *testing.T) {
	list := testutil.Systems("water")

	// only the O-H bonds are below 1.2
	got, err := TwoBodiesSpecies{Cutoff: 1.2}.Samples(list)
	require.NoError(t, err)
	require.Equal(t, 3, got.Count())
	assert.Equal(t, []v{0, 0, 123456, 1}, got.Row(0))
	assert.Equal(t, []v{0, 1, 1, 123456}, got.Row(1))
	assert.Equal(t, []v{0, 2, 1, 123456}, got.Row(2))
}

func TestTwoBodiesSpecies_InvalidCutoff(t *testing.T) {
	_, err := TwoBodiesSpecies{}.Samples(testutil.Systems("water"))
	assert.ErrorIs(t, err, systems.ErrInvalidCutoff)

	_, _, err = TwoBodiesSpecies{Cutoff: -1}.WithGradients(testutil.Systems("water"))
	assert.ErrorIs(t, err, systems.ErrInvalidCutoff)
}
