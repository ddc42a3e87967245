package sparsela

import (
	"context"
	"math"
	"os"
	"slices"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/sparsela/internal/simd"
)

// LinearSolver solves A x = b with one of the iterative methods. It is
// constructed from the system, solved with Solve and then queried for the
// solution and diagnostics. A LinearSolver is not safe for concurrent use.
type LinearSolver[T Float] struct {
	a *Matrix[T]
	b *Vector[T]

	logger  *Logger
	metrics MetricsCollector

	state      State
	method     Method
	param      float64
	solution   *Vector[T]
	iterations int
	residual   float64
	elapsed    time.Duration
	history    []float64
}

// NewLinearSolver creates a solver for the system a x = b.
func NewLinearSolver[T Float](a *Matrix[T], b *Vector[T], opts ...SolverOption) (*LinearSolver[T], error) {
	if a.rows != b.n {
		return nil, opError("NewLinearSolver", ErrDimensionMismatch, "%dx%d system with %d right-hand side elements", a.rows, a.cols, b.n)
	}
	if a.width != b.width {
		return nil, opError("NewLinearSolver", ErrLaneWidthMismatch, "%d vs %d", a.width, b.width)
	}

	o := solverOptions{
		logger:           NewTextLogger(os.Stdout, DefaultVerbosity),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &LinearSolver[T]{
		a:       a,
		b:       b,
		logger:  o.logger,
		metrics: o.metricsCollector,
		state:   StateConstructed,
		param:   DefaultParam,
	}, nil
}

// Solve runs the method named by method (CG, CGNR, TCGNR or IRLS, case
// insensitive) starting from x0.
//
// Reaching the iteration cap is not an error: the last iterate is
// published, a warning is logged and State reports StateExhausted. On error
// nothing is published and the previous results stay readable.
func (s *LinearSolver[T]) Solve(method string, x0 *Vector[T], opts ...SolveOption) error {
	m, err := ParseMethod(method)
	if err != nil {
		s.logger.Error("solve failed", "error", err)
		return err
	}
	return s.SolveMethod(m, x0, opts...)
}

// SolveMethod is Solve with a parsed method.
func (s *LinearSolver[T]) SolveMethod(method Method, x0 *Vector[T], opts ...SolveOption) error {
	o := defaultSolveOptions()
	for _, opt := range opts {
		opt(&o)
	}

	base := s.logger
	s.logger = base.WithShape(s.a.rows, s.a.cols)
	defer func() { s.logger = base }()

	start := time.Now()
	prev := s.state
	s.state = StateSolving

	res, err := s.dispatch(method, x0, &o)
	elapsed := time.Since(start)
	s.metrics.RecordSolve(method, res.iterations, res.converged, elapsed, err)
	if err != nil {
		s.state = prev
		s.logger.LogSolve(context.Background(), method, 0, 0, elapsed, err)
		return err
	}

	s.method = method
	s.param = o.param
	s.solution = res.x
	s.iterations = res.iterations
	s.residual = res.residual
	s.elapsed = elapsed
	s.history = res.history
	if res.converged {
		s.state = StateConverged
	} else {
		s.state = StateExhausted
		s.logger.LogNotConverged(method, o.maxIterations, res.residual)
	}
	s.logger.LogSolve(context.Background(), method, res.iterations, res.residual, elapsed, nil)
	return nil
}

// result is the outcome of one solver run.
type result[T Float] struct {
	x          *Vector[T]
	iterations int
	residual   float64
	converged  bool
	history    []float64
}

func (s *LinearSolver[T]) dispatch(method Method, x0 *Vector[T], o *solveOptions) (result[T], error) {
	op := method.String()
	if o.maxIterations < 0 {
		return result[T]{}, opError(op, ErrInvalidParameter, "max iterations %d", o.maxIterations)
	}
	if o.tolerance < 0 || math.IsNaN(o.tolerance) {
		return result[T]{}, opError(op, ErrInvalidParameter, "tolerance %g", o.tolerance)
	}
	if x0.n != s.a.cols {
		return result[T]{}, opError(op, ErrDimensionMismatch, "initial guess has %d elements, system has %d columns", x0.n, s.a.cols)
	}
	if x0.width != s.a.width {
		return result[T]{}, opError(op, ErrLaneWidthMismatch, "%d vs %d", x0.width, s.a.width)
	}

	switch method {
	case MethodCG:
		if s.a.rows != s.a.cols {
			return result[T]{}, opError(op, ErrNotSquare, "%dx%d", s.a.rows, s.a.cols)
		}
		return s.cg(x0, o), nil
	case MethodCGNR:
		at := s.transpose(s.a)
		return s.cgnr(MethodCGNR, s.a, at, s.b, x0, o, s.a.rows, 0), nil
	case MethodTCGNR:
		return s.tcgnr(x0, o)
	case MethodIRLS:
		return s.irls(x0, o)
	default:
		return result[T]{}, opError("Solve", ErrUnknownMethod, "%d", int(method))
	}
}

func (s *LinearSolver[T]) transpose(m *Matrix[T]) *Matrix[T] {
	start := time.Now()
	mt := m.Transpose()
	d := time.Since(start)
	s.metrics.RecordTranspose(m.rows, m.cols, d)
	s.logger.Debug("transposed system matrix", "rows", m.rows, "cols", m.cols, "elapsed", d)
	return mt
}

// progress reports inner iterations to the observer and, throttled to the
// print frequency, to the low-priority log.
type progress struct {
	method    Method
	outer     int
	logger    *Logger
	observer  func(Iteration)
	sometimes *rate.Sometimes
}

func (s *LinearSolver[T]) newProgress(method Method, outer int, o *solveOptions) *progress {
	p := &progress{method: method, outer: outer, observer: o.observer}
	if o.printFrequency > 0 && s.logger.LowPriorityEnabled() {
		p.logger = s.logger.WithMethod(method)
		p.sometimes = &rate.Sometimes{Every: o.printFrequency}
	}
	return p
}

func (p *progress) enabled() bool {
	return p.logger != nil || p.observer != nil
}

func (p *progress) report(iteration int, residual, norm float64) {
	if p.observer != nil {
		p.observer(Iteration{Method: p.method, Outer: p.outer, Iteration: iteration, Residual: residual, Norm: norm})
	}
	if p.sometimes != nil {
		p.sometimes.Do(func() {
			p.logger.LogIteration(iteration, residual, norm)
		})
	}
}

// headNorm returns the Euclidean norm of the first n elements of r.
func headNorm[T Float](r *Vector[T], n int) float64 {
	return math.Sqrt(float64(simd.SumSquares(r.values[:n])))
}

// cg runs the conjugate gradient recurrence on A x = b. The residual is
// the squared norm of r = b - A x.
func (s *LinearSolver[T]) cg(x0 *Vector[T], o *solveOptions) result[T] {
	a, b := s.a, s.b
	tol := o.tolerance
	prog := s.newProgress(MethodCG, 0, o)

	x := x0.Clone()
	ax, _ := a.MulVec(x)
	r, _ := b.Sub(ax)
	p := r.Clone()
	rr := float64(r.dot(r))
	if rr < tol {
		return result[T]{x: x, residual: rr, converged: true}
	}

	for iter := 1; iter <= o.maxIterations; iter++ {
		ap, _ := a.MulVec(p)
		pap := float64(p.dot(ap))
		if pap == 0 || math.IsNaN(pap) {
			s.logger.Warn("conjugate gradient breakdown", "iteration", iter, "curvature", pap)
			return result[T]{x: x, iterations: iter - 1, residual: rr}
		}
		alpha := T(rr / pap)
		x.axpy(alpha, p)
		r.axpy(-alpha, ap)

		rrNew := float64(r.dot(r))
		if prog.enabled() {
			prog.report(iter, rrNew, math.Sqrt(rrNew))
		}
		if rrNew < tol {
			return result[T]{x: x, iterations: iter, residual: rrNew, converged: true}
		}

		p.xpay(T(rrNew/rr), r)
		rr = rrNew
	}
	return result[T]{x: x, iterations: o.maxIterations, residual: rr}
}

// cgnr runs conjugate gradients on the normal equations BᵀB x = Bᵀb. bt
// must be the transpose of b. The residual is the squared norm of
// z = Bᵀ(b - B x). normRows is the number of leading rows of the system
// that belong to the unregularized problem and enter the reported norm.
func (s *LinearSolver[T]) cgnr(method Method, bm, bt *Matrix[T], rhs, x0 *Vector[T], o *solveOptions, normRows, outer int) result[T] {
	tol := o.tolerance
	prog := s.newProgress(method, outer, o)

	x := x0.Clone()
	bx, _ := bm.MulVec(x)
	r, _ := rhs.Sub(bx)
	z, _ := bt.MulVec(r)
	p := z.Clone()
	zz := float64(z.dot(z))
	if zz < tol {
		return result[T]{x: x, residual: zz, converged: true}
	}

	for iter := 1; iter <= o.maxIterations; iter++ {
		w, _ := bm.MulVec(p)
		ww := float64(w.dot(w))
		if ww == 0 || math.IsNaN(ww) {
			s.logger.Warn("conjugate gradient breakdown", "iteration", iter, "curvature", ww)
			return result[T]{x: x, iterations: iter - 1, residual: zz}
		}
		alpha := T(zz / ww)
		x.axpy(alpha, p)
		r.axpy(-alpha, w)
		z, _ = bt.MulVec(r)

		zzNew := float64(z.dot(z))
		if prog.enabled() {
			prog.report(iter, zzNew, headNorm(r, normRows))
		}
		if zzNew < tol {
			return result[T]{x: x, iterations: iter, residual: zzNew, converged: true}
		}

		p.xpay(T(zzNew/zz), z)
		zz = zzNew
	}
	return result[T]{x: x, iterations: o.maxIterations, residual: zz}
}

// tcgnr stacks sqrt(λ) I below A and zeros below b and runs CGNR.
func (s *LinearSolver[T]) tcgnr(x0 *Vector[T], o *solveOptions) (result[T], error) {
	lambda := o.param
	if lambda < 0 || math.IsNaN(lambda) {
		return result[T]{}, opError("TCGNR", ErrInvalidParameter, "lambda %g", lambda)
	}
	a, b := s.a, s.b
	n := a.cols

	reg, _ := NewScaledIdentity[T](n, n, T(math.Sqrt(lambda)), WithLaneWidth(a.width))
	aug, err := Stack(a, reg)
	if err != nil {
		return result[T]{}, err
	}
	rhs, err := b.AddRows(newVector[T](n, a.width))
	if err != nil {
		return result[T]{}, err
	}

	return s.cgnr(MethodTCGNR, aug, s.transpose(aug), rhs, x0, o, a.rows, 0), nil
}

// irls minimizes ‖A x - b‖_p. Each outer round weights the rows of the
// system by s_i = max(|r_i|, δ)^((p-2)/2), where r = A x - b and δ is the
// tolerance (at least irlsMinFloor), and continues CGNR on the row-scaled
// problem min ‖S (A x - b)‖ from the current iterate. For 1 <= p <= 2 the
// weighted quadratic majorizes the p-norm, so every round lowers it. A
// round that does not lower it is halved towards the previous iterate up
// to irlsBacktracks times; if that fails too the solve stops. Iterations
// counts accepted rounds including the initial unweighted solve; Residual
// is the final p-norm.
func (s *LinearSolver[T]) irls(x0 *Vector[T], o *solveOptions) (result[T], error) {
	p := o.param
	if p < 1 || math.IsNaN(p) || math.IsInf(p, 0) {
		return result[T]{}, opError("IRLS", ErrInvalidParameter, "p %g", p)
	}
	a, b := s.a, s.b
	tol := o.tolerance
	at := s.transpose(a)

	first := s.cgnr(MethodIRLS, a, at, b, x0, o, a.rows, 0)
	x := first.x
	metric := s.minimizedNorm(x, p)
	history := []float64{metric}
	rounds := 1

	floor := max(tol, irlsMinFloor)
	for metric > tol && rounds < o.maxIterations {
		w := rowWeights(s.systemResidual(x), p, floor)
		aw, err := a.ScaleRows(w)
		if err != nil {
			return result[T]{}, err
		}
		awt, err := at.ScaleColumns(w)
		if err != nil {
			return result[T]{}, err
		}
		bw, err := b.Mul(w)
		if err != nil {
			return result[T]{}, err
		}

		inner := s.cgnr(MethodIRLS, aw, awt, bw, x, o, a.rows, rounds)
		if !inner.converged {
			s.logger.LowPriority("weighted solve did not converge", "round", rounds, "residual", inner.residual)
		}

		next, nextMetric := inner.x, s.minimizedNorm(inner.x, p)
		for k := 0; nextMetric >= metric && k < irlsBacktracks; k++ {
			next = halfway(x, next)
			nextMetric = s.minimizedNorm(next, p)
		}
		if nextMetric >= metric {
			s.logger.LowPriority("irls stagnated", "round", rounds, "norm", metric)
			break
		}

		x, metric = next, nextMetric
		history = append(history, metric)
		rounds++
		s.logger.Debug("irls round", "round", rounds, "norm", metric)
	}

	return result[T]{
		x:          x,
		iterations: rounds,
		residual:   metric,
		converged:  metric <= tol,
		history:    history,
	}, nil
}

const (
	// irlsMinFloor bounds the residual floor from below so that zero
	// residuals never produce infinite weights when the tolerance is 0.
	irlsMinFloor = 1e-12
	// irlsBacktracks is the number of halvings tried on a round that
	// does not lower the p-norm.
	irlsBacktracks = 4
)

// rowWeights returns the row scales max(|r_i|, floor)^((p-2)/2).
func rowWeights[T Float](r *Vector[T], p, floor float64) *Vector[T] {
	expo := (p - 2) / 2
	w := newVector[T](r.n, r.width)
	for i, v := range r.values[:r.n] {
		w.values[i] = T(math.Pow(max(math.Abs(float64(v)), floor), expo))
	}
	return w
}

// halfway returns (x + y) / 2.
func halfway[T Float](x, y *Vector[T]) *Vector[T] {
	h := x.Clone()
	h.axpy(1, y)
	simd.Scale(h.values, h.values, T(0.5))
	return h
}

// systemResidual returns A x - b.
func (s *LinearSolver[T]) systemResidual(x *Vector[T]) *Vector[T] {
	ax, _ := s.a.MulVec(x)
	r, _ := ax.Sub(s.b)
	return r
}

// minimizedNorm returns ‖A x - b‖_p.
func (s *LinearSolver[T]) minimizedNorm(x *Vector[T], p float64) float64 {
	n, _ := s.systemResidual(x).PNorm(p)
	return float64(n)
}

// Solution returns a copy of the last published solution.
func (s *LinearSolver[T]) Solution() (*Vector[T], error) {
	if s.solution == nil {
		return nil, opError("Solution", ErrNotSolved, "")
	}
	return s.solution.Clone(), nil
}

// Iterations returns the iteration count of the last solve. For IRLS it
// counts outer rounds.
func (s *LinearSolver[T]) Iterations() (int, error) {
	if s.solution == nil {
		return 0, opError("Iterations", ErrNotSolved, "")
	}
	return s.iterations, nil
}

// Residual returns the final residual of the last solve: the squared
// recurrence residual for CG, CGNR and TCGNR, and ‖Ax - b‖_p for IRLS.
func (s *LinearSolver[T]) Residual() (float64, error) {
	if s.solution == nil {
		return 0, opError("Residual", ErrNotSolved, "")
	}
	return s.residual, nil
}

// Elapsed returns the wall time of the last solve.
func (s *LinearSolver[T]) Elapsed() (time.Duration, error) {
	if s.solution == nil {
		return 0, opError("Elapsed", ErrNotSolved, "")
	}
	return s.elapsed, nil
}

// NormHistory returns ‖Ax - b‖_p after each IRLS round of the last solve.
// It is empty for the other methods.
func (s *LinearSolver[T]) NormHistory() []float64 {
	return slices.Clone(s.history)
}

// State returns the lifecycle state.
func (s *LinearSolver[T]) State() State { return s.state }

// Converged reports whether the last solve met its tolerance.
func (s *LinearSolver[T]) Converged() bool { return s.state == StateConverged }

// Method returns the method of the last successful solve.
func (s *LinearSolver[T]) Method() Method { return s.method }

// Param returns the parameter of the last successful solve.
func (s *LinearSolver[T]) Param() float64 { return s.param }

// System returns the system matrix and right-hand side.
func (s *LinearSolver[T]) System() (*Matrix[T], *Vector[T]) { return s.a, s.b }
