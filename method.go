package sparsela

import (
	"strings"
)

// Method selects an iterative solver.
type Method int

const (
	// MethodCG is the conjugate gradient method for symmetric positive
	// definite systems.
	MethodCG Method = iota + 1
	// MethodCGNR applies conjugate gradients to the normal equations
	// AᵀA x = Aᵀb and accepts rectangular systems.
	MethodCGNR
	// MethodTCGNR is CGNR on the Tikhonov regularized system
	// [A; sqrt(λ) I] x = [b; 0].
	MethodTCGNR
	// MethodIRLS minimizes ‖Ax - b‖_p by iteratively reweighted least squares.
	MethodIRLS
)

// String returns the canonical upper-case method name.
func (m Method) String() string {
	switch m {
	case MethodCG:
		return "CG"
	case MethodCGNR:
		return "CGNR"
	case MethodTCGNR:
		return "TCGNR"
	case MethodIRLS:
		return "IRLS"
	default:
		return "unknown"
	}
}

// ParseMethod parses a method name case-insensitively.
func ParseMethod(name string) (Method, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "CG":
		return MethodCG, nil
	case "CGNR":
		return MethodCGNR, nil
	case "TCGNR":
		return MethodTCGNR, nil
	case "IRLS":
		return MethodIRLS, nil
	default:
		return 0, opError("ParseMethod", ErrUnknownMethod, "%q", name)
	}
}

// State is the lifecycle state of a LinearSolver.
type State int

const (
	// StateConstructed means no solve has completed yet.
	StateConstructed State = iota
	// StateSolving is held while Solve runs.
	StateSolving
	// StateConverged means the last solve met its tolerance.
	StateConverged
	// StateExhausted means the last solve reached its iteration cap, or
	// broke down, before meeting its tolerance.
	StateExhausted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateSolving:
		return "solving"
	case StateConverged:
		return "converged"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}
