package kernel

import (
	"os"
	"strings"
)

// ISA identifies a dot product kernel variant.
type ISA uint8

const (
	// Generic is the plain scalar loop.
	Generic ISA = iota
	// Unrolled processes four lanes per iteration with independent accumulators.
	Unrolled
	// FMA is the unrolled kernel using fused multiply-add.
	FMA
)

// String returns the string representation of an ISA.
func (i ISA) String() string {
	switch i {
	case Generic:
		return "generic"
	case Unrolled:
		return "unrolled"
	case FMA:
		return "fma"
	default:
		return "unknown"
	}
}

// ParseISA parses a string into an ISA value.
func ParseISA(s string) (ISA, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic":
		return Generic, true
	case "unrolled":
		return Unrolled, true
	case "fma":
		return FMA, true
	default:
		return Generic, false
	}
}

// EnvOverride names the environment variable forcing a kernel variant.
const EnvOverride = "RASCAL_KERNEL"

// Set once by the platform init.
var (
	activeISA   ISA
	hasOverride bool

	hasFMA bool
)

// initCapabilities is called from platform-specific init functions
// after CPU features are detected.
func initCapabilities() {
	if override := os.Getenv(EnvOverride); override != "" {
		if isa, ok := ParseISA(override); ok {
			hasOverride = true
			if isISAAvailable(isa) {
				activeISA = isa
				selectImpl(activeISA)
				return
			}
			// unavailable override: fall through to auto-detection
		}
	}

	activeISA = selectBestISA()
	selectImpl(activeISA)
}

func isISAAvailable(isa ISA) bool {
	switch isa {
	case Generic, Unrolled:
		return true
	case FMA:
		return hasFMA
	default:
		return false
	}
}

func selectBestISA() ISA {
	if hasFMA {
		return FMA
	}
	return Unrolled
}

// ActiveISA returns the currently active kernel variant.
func ActiveISA() ISA {
	return activeISA
}

// IsOverridden returns true if RASCAL_KERNEL selected the active variant.
func IsOverridden() bool {
	return hasOverride
}

// HasFMA returns true if the CPU has hardware fused multiply-add.
func HasFMA() bool {
	return hasFMA
}
