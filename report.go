package sparsela

import "time"

// Report summarizes the last solve of a LinearSolver.
type Report struct {
	Method      Method
	Rows        int
	Cols        int
	Lanes       int
	LaneWidth   int
	Iterations  int
	Residual    float64
	Elapsed     time.Duration
	Converged   bool
	Param       float64
	NormHistory []float64
}

// Report returns a summary of the last solve.
func (s *LinearSolver[T]) Report() (Report, error) {
	if s.solution == nil {
		return Report{}, opError("Report", ErrNotSolved, "")
	}
	return Report{
		Method:      s.method,
		Rows:        s.a.rows,
		Cols:        s.a.cols,
		Lanes:       s.a.NumLanes(),
		LaneWidth:   s.a.width,
		Iterations:  s.iterations,
		Residual:    s.residual,
		Elapsed:     s.elapsed,
		Converged:   s.state == StateConverged,
		Param:       s.param,
		NormHistory: s.NormHistory(),
	}, nil
}
