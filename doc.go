// Package rascal computes and combines atomistic representations stored as
// multi-indexed descriptors.
//
// The core lives in sub-packages: indexes (labelled index tables), descriptor
// (the value/gradient container with Densify and Dot), systems and samples
// (geometry and sample-index builders) and persistence (snapshots). This
// package wires them into an Engine that adds resource limits, snapshot
// storage, logging, metrics and tracing.
//
// # Quick Start
//
//	engine, err := rascal.New(rascal.WithMemoryLimit(1 << 30))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	if err := engine.Densify(ctx, d, []string{"species_neighbor"}, nil); err != nil {
//	    log.Fatal(err)
//	}
//	kernel, err := engine.Dot(ctx, d, d, rascal.DotOptions{Normalize: true})
//
//	name, err := engine.Save(ctx, "", kernel)
//	restored, err := engine.Load(ctx, name)
//
// # Configuration
//
// Engines are configured with functional options, or from YAML through
// LoadConfig and Config.Options.
package rascal
