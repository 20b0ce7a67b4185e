package dynamics

// TimeStep carries the per-step parameters through the solver.
type TimeStep struct {
	DT         float64 // seconds
	InvDT      float64 // zero when DT is zero
	Iterations int

	// Per-world warm starting toggle threaded through to the solvers.
	warmStarting bool
}

func makeStep(dt float64, iterations int) TimeStep {
	step := TimeStep{DT: dt, Iterations: iterations}
	if dt > 0 {
		step.InvDT = 1.0 / dt
	}
	return step
}
