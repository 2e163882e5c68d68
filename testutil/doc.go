// Package testutil provides testing utilities for rascal.
//
// This package is intended for use in tests and benchmarks only.
// It provides deterministic random data, the small molecules used across
// the test suites, and helpers to build filled descriptors.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	row := make([]float64, 16)
//	rng.FillUniform(row) // uniform [0, 1)
//
// # Fixtures
//
//	systems := testutil.Systems("water", "CH")
//	d := testutil.FilledDescriptor(rng, samples, testutil.DummyFeatures())
package testutil
