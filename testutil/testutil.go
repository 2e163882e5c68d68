package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/rascal/descriptor"
	"github.com/hupe1980/rascal/indexes"
	"github.com/hupe1980/rascal/systems"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) FillUniform(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float64()
	}
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float64, minVal, maxVal float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float64()*span
	}
}

// Species used by the fixtures. Oxygen uses an unusual value to catch code
// assuming small species numbers.
const (
	Hydrogen = 1
	Carbon   = 6
	Oxygen   = 123456
)

// Water returns a water molecule: O, H1, H2, all within 3 of each other.
func Water() *systems.SimpleSystem {
	s := systems.NewSimpleSystem(systems.NewUnitCell(systems.Matrix3{}))
	s.AddAtom(Oxygen, systems.Vector3{0, 0, 0})
	s.AddAtom(Hydrogen, systems.Vector3{0, 0.75545, -0.58895})
	s.AddAtom(Hydrogen, systems.Vector3{0, -0.75545, -0.58895})
	return s
}

// CH returns a CH radical: H then C.
func CH() *systems.SimpleSystem {
	s := systems.NewSimpleSystem(systems.NewUnitCell(systems.Matrix3{}))
	s.AddAtom(Hydrogen, systems.Vector3{0, 0, 0})
	s.AddAtom(Carbon, systems.Vector3{0, 1.2, 0})
	return s
}

// Systems returns fresh fixtures by name ("water" or "CH").
func Systems(names ...string) []systems.System {
	out := make([]systems.System, 0, len(names))
	for _, name := range names {
		switch name {
		case "water":
			out = append(out, Water())
		case "CH":
			out = append(out, CH())
		default:
			panic(fmt.Sprintf("testutil: unknown system %q", name))
		}
	}
	return out
}

// DummyFeatures returns three features with the columns (foo, bar).
func DummyFeatures() *indexes.Indexes {
	return indexes.FromRows([]string{"foo", "bar"},
		[]indexes.Value{0, -1},
		[]indexes.Value{4, -2},
		[]indexes.Value{1, -5},
	)
}

// FilledDescriptor prepares a descriptor and fills its values with random
// numbers in [-1, 1).
func FilledDescriptor(rng *RNG, samples, features *indexes.Indexes) *descriptor.Descriptor {
	d := descriptor.New()
	d.Prepare(samples, features)
	rng.FillUniformRange(d.Values().Data(), -1, 1)
	return d
}

// FilledDescriptorWithGradients is FilledDescriptor with gradients.
func FilledDescriptorWithGradients(rng *RNG, samples, gradientSamples, features *indexes.Indexes) *descriptor.Descriptor {
	d := descriptor.New()
	d.PrepareGradients(samples, gradientSamples, features)
	rng.FillUniformRange(d.Values().Data(), -1, 1)
	rng.FillUniformRange(d.Gradients().Data(), -1, 1)
	return d
}

// RandomSamples builds (structure, species) samples, keeping each species of
// each structure with probability 2/3.
func RandomSamples(rng *RNG, structures int, species []indexes.Value) *indexes.Indexes {
	b := indexes.NewBuilder("structure", "species")
	for structure := 0; structure < structures; structure++ {
		for _, s := range species {
			if rng.Intn(3) > 0 {
				b.Add(indexes.Value(structure), s)
			}
		}
	}
	return b.Finish()
}
