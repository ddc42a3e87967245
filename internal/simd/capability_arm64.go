//go:build arm64 && !noasm

package simd

import "golang.org/x/sys/cpu"

func init() {
	hasASIMD = cpu.ARM64.HasASIMD
	initCapabilities()
}
