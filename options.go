package sparsela

import (
	"github.com/hupe1980/sparsela/internal/simd"
)

// Solver defaults.
const (
	DefaultMaxIterations  = 1_000_000
	DefaultTolerance      = 1e-6
	DefaultPrintFrequency = 100
	DefaultParam          = 1.0
)

type options struct {
	laneWidth int
}

// Option configures matrix and vector construction.
type Option func(*options)

// WithLaneWidth overrides the lane width detected from the CPU. Values
// below 1 are ignored. Operands of binary operations must share a width.
func WithLaneWidth(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.laneWidth = n
		}
	}
}

func resolveOptions[T Float](opts []Option) options {
	o := options{laneWidth: simd.Width[T]()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type solverOptions struct {
	logger           *Logger
	metricsCollector MetricsCollector
}

// SolverOption configures a LinearSolver.
type SolverOption func(*solverOptions)

// WithLogger sets the logger used for solver diagnostics.
// If nil is passed, output is discarded.
func WithLogger(l *Logger) SolverOption {
	return func(o *solverOptions) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the collector notified after every solve.
func WithMetricsCollector(mc MetricsCollector) SolverOption {
	return func(o *solverOptions) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// Iteration describes the state of an iterative solver after one step.
// It is passed to observers registered with WithObserver.
type Iteration struct {
	Method Method
	// Outer is the IRLS reweighting round, 0 for the other methods.
	Outer int
	// Iteration counts inner steps from 1.
	Iteration int
	// Residual is the squared norm of the recurrence residual.
	Residual float64
	// Norm is the Euclidean norm of A*x - b of the original system.
	Norm float64
}

type solveOptions struct {
	maxIterations  int
	tolerance      float64
	printFrequency int
	param          float64
	observer       func(Iteration)
}

func defaultSolveOptions() solveOptions {
	return solveOptions{
		maxIterations:  DefaultMaxIterations,
		tolerance:      DefaultTolerance,
		printFrequency: DefaultPrintFrequency,
		param:          DefaultParam,
	}
}

// SolveOption configures a single call to Solve.
type SolveOption func(*solveOptions)

// WithMaxIterations caps the number of iterations. For IRLS the cap applies
// to the outer loop and to each inner solve.
func WithMaxIterations(n int) SolveOption {
	return func(o *solveOptions) {
		o.maxIterations = n
	}
}

// WithTolerance sets the convergence threshold.
func WithTolerance(tol float64) SolveOption {
	return func(o *solveOptions) {
		o.tolerance = tol
	}
}

// WithPrintFrequency sets how often, in iterations, progress is logged at
// low priority.
func WithPrintFrequency(n int) SolveOption {
	return func(o *solveOptions) {
		o.printFrequency = n
	}
}

// WithParam sets the method parameter: the Tikhonov weight lambda for TCGNR
// and the norm exponent p for IRLS. CG and CGNR ignore it.
func WithParam(p float64) SolveOption {
	return func(o *solveOptions) {
		o.param = p
	}
}

// WithObserver registers a callback invoked after every inner iteration.
func WithObserver(fn func(Iteration)) SolveOption {
	return func(o *solveOptions) {
		o.observer = fn
	}
}
