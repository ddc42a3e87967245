package simd

import (
	"os"
	"runtime"
	"strings"
)

// ISA represents a SIMD instruction set architecture.
type ISA uint8

const (
	// Generic represents the scalar fallback (lane width 1).
	Generic ISA = iota
	// NEON represents ARM64 NEON (128-bit registers).
	NEON
	// AVX2 represents x86-64 AVX2 with FMA (256-bit registers).
	AVX2
	// AVX512 represents x86-64 AVX-512 Foundation (512-bit registers).
	AVX512
)

// EnvOverride names the environment variable that forces an ISA.
const EnvOverride = "SPARSELA_SIMD"

// String returns the string representation of an ISA.
func (i ISA) String() string {
	switch i {
	case Generic:
		return "generic"
	case NEON:
		return "neon"
	case AVX2:
		return "avx2"
	case AVX512:
		return "avx512"
	default:
		return "unknown"
	}
}

// RegisterBytes returns the register size of the ISA in bytes, or 0 for Generic.
func (i ISA) RegisterBytes() int {
	switch i {
	case NEON:
		return 16
	case AVX2:
		return 32
	case AVX512:
		return 64
	default:
		return 0
	}
}

// ParseISA parses a string into an ISA value.
func ParseISA(s string) (ISA, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic", "scalar":
		return Generic, true
	case "neon":
		return NEON, true
	case "avx2":
		return AVX2, true
	case "avx512":
		return AVX512, true
	default:
		return Generic, false
	}
}

// Package-level state, set once by the platform init.
var (
	activeISA   ISA
	hasOverride bool

	hasASIMD   bool // ARM64 NEON
	hasAVX2    bool // x86-64 AVX2 + FMA
	hasAVX512F bool // x86-64 AVX-512 Foundation
)

// initCapabilities is called from platform-specific init functions
// after CPU features are detected.
func initCapabilities() {
	if override := os.Getenv(EnvOverride); override != "" {
		if isa, ok := ParseISA(override); ok {
			hasOverride = true
			if isISAAvailable(isa) {
				activeISA = isa
				return
			}
		}
	}

	activeISA = selectBestISA()
}

func isISAAvailable(isa ISA) bool {
	switch isa {
	case Generic:
		return true
	case NEON:
		return hasASIMD
	case AVX2:
		return hasAVX2
	case AVX512:
		return hasAVX512F
	default:
		return false
	}
}

func selectBestISA() ISA {
	switch runtime.GOARCH {
	case "arm64":
		if hasASIMD {
			return NEON
		}
	case "amd64":
		if hasAVX512F {
			return AVX512
		}
		if hasAVX2 {
			return AVX2
		}
	}
	return Generic
}

// ActiveISA returns the currently active ISA.
func ActiveISA() ISA {
	return activeISA
}

// IsOverridden returns true if SPARSELA_SIMD was set to a known ISA.
func IsOverridden() bool {
	return hasOverride
}

// HasASIMD returns true if ARM64 NEON is available.
func HasASIMD() bool {
	return hasASIMD
}

// HasAVX2 returns true if x86-64 AVX2+FMA is available.
func HasAVX2() bool {
	return hasAVX2
}

// HasAVX512 returns true if x86-64 AVX-512F is available.
func HasAVX512() bool {
	return hasAVX512F
}
