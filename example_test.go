package rascal_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/rascal"
	"github.com/hupe1980/rascal/descriptor"
	"github.com/hupe1980/rascal/samples"
	"github.com/hupe1980/rascal/testutil"
)

// Example builds per-species values for two molecules, moves the species into
// feature space and computes the normalized kernel between the structures.
func Example() {
	ctx := context.Background()

	engine, err := rascal.New(rascal.WithLogger(rascal.NoopLogger()))
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close()

	s, err := samples.StructureSpecies{}.Samples(testutil.Systems("water", "CH"))
	if err != nil {
		log.Fatal(err)
	}

	d := descriptor.New()
	d.Prepare(s, testutil.DummyFeatures())
	d.Values().Assign([][]float64{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
		{10, 11, 12},
	})

	if err := engine.Densify(ctx, d, []string{"species"}, nil); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("samples: %d, features: %d\n", d.Samples().Count(), d.Features().Count())

	kernel, err := engine.Dot(ctx, d, d, rascal.DotOptions{Normalize: true})
	if err != nil {
		log.Fatal(err)
	}
	for i := range kernel.Values().Rows() {
		fmt.Printf("%.2f\n", kernel.Values().Row(i))
	}
	// Output:
	// samples: 2, features: 9
	// [1.00 0.22]
	// [0.22 1.00]
}
