// Horizon solver: backward induction over a sequence of periods as a nested
// fixed point, walked iteratively over per-period frames.
package engine

import (
	"log/slog"

	"github.com/talgya/econsim/internal/config"
)

// Solver runs the backward-induction fixed point over a sequence.
type Solver struct {
	Model         Model
	Epsilon       float64 // Squared policy residual below which a period has converged
	MaxIterations int     // Fixed-point iterations allowed per period and visit
	MaxSteps      int     // Forward steps allowed per Solve call; 0 means no limit
	Relaxation    float64 // Fraction of the way to the optimum taken per refinement

	stats Stats
}

// Stats counts the work a solver has done since it was created.
type Stats struct {
	Solves      int `json:"solves"`
	Steps       int `json:"steps"`
	Refinements int `json:"refinements"`
	Clamps      int `json:"clamps"`  // Actions projected back onto [0,1]
	Corners     int `json:"corners"` // Optima on a bound of [0,1]
}

// NewSolver builds a solver from a configuration.
func NewSolver(cfg config.Config) *Solver {
	return &Solver{
		Model:         NewModel(cfg),
		Epsilon:       cfg.PolicyConvergenceEpsilon,
		MaxIterations: cfg.MaxPolicyIterations,
		MaxSteps:      cfg.MaxSolverSteps,
		Relaxation:    cfg.PolicyRelaxation,
	}
}

// Stats returns the solver's counters.
func (s *Solver) Stats() Stats {
	return s.stats
}

// frame is the solver's bookkeeping for one period.
type frame struct {
	iterations int
	divergence float64   // Largest residual of the latest refinement
	outcomes   []Outcome // From the latest step of this period
}

// Solve returns dV/dC for seq[0]. To solve from an offset k, pass seq[k:].
//
// The terminal period contributes its marginal value with zero continuation
// and is neither stepped nor refined. Every earlier period i repeats: step i
// into i+1, solve the rest, refine i against a second-order model of period
// i+1's value around the capital just handed over; once no agent's residual
// reaches Epsilon, period i's marginal value and curvature are computed and
// handed up to i-1. Each period re-enters with a fresh iteration budget
// whenever an earlier period steps into it again; MaxSteps bounds the whole
// call.
func (s *Solver) Solve(seq Sequence) ([]float64, error) {
	if err := seq.Validate(); err != nil {
		return nil, err
	}
	s.stats.Solves++

	last := len(seq) - 1
	frames := make([]frame, len(seq))
	steps := 0
	// Slope and curvature of period i+1's value while ascending.
	var lambda, kappa []float64

	i, descending := 0, true
	for {
		if i == last {
			out, err := s.Model.Transition(seq[i])
			if err != nil {
				return nil, periodError(i, err)
			}
			zero := make([]float64, len(out))
			if lambda, err = s.Model.MarginalValue(seq[i], out, zero); err != nil {
				return nil, periodError(i, err)
			}
			if kappa, err = s.Model.Curvature(seq[i], zero, zero); err != nil {
				return nil, periodError(i, err)
			}
			if i == 0 {
				return lambda, nil
			}
			i, descending = i-1, false
			continue
		}

		f := &frames[i]
		if !descending {
			ref, err := s.Model.RefinePolicy(seq[i], Continuation{
				Slope:     lambda,
				Curvature: kappa,
				Anchor:    capitals(seq[i+1]),
			}, s.Relaxation)
			if err != nil {
				return nil, periodError(i, err)
			}
			s.stats.Refinements++
			s.stats.Clamps += count(ref.Clamped)
			s.stats.Corners += count(ref.Corner)
			f.divergence = ref.MaxDivergence()

			if ref.Converged(s.Epsilon) {
				dv, err := s.Model.MarginalValue(seq[i], f.outcomes, lambda)
				if err != nil {
					return nil, periodError(i, err)
				}
				curv, err := s.Model.Curvature(seq[i], lambda, kappa)
				if err != nil {
					return nil, periodError(i, err)
				}
				slog.Debug("period converged", "period", i, "iterations", f.iterations, "dV_dC", dv)
				f.iterations = 0
				lambda, kappa = dv, curv
				if i == 0 {
					return lambda, nil
				}
				i--
				continue
			}
			if f.iterations >= s.MaxIterations {
				return nil, &ConvergenceError{
					Period:     i,
					Iterations: f.iterations,
					Steps:      steps,
					Divergence: f.divergence,
				}
			}
		}

		if s.MaxSteps > 0 && steps >= s.MaxSteps {
			return nil, &ConvergenceError{
				Period:     i,
				Iterations: f.iterations,
				Steps:      steps,
				Divergence: f.divergence,
			}
		}
		out, err := s.Model.Step(seq[i], seq[i+1])
		if err != nil {
			return nil, periodError(i, err)
		}
		steps++
		s.stats.Steps++
		f.outcomes = out
		f.iterations++
		i, descending = i+1, true
	}
}

func capitals(g *GameNode) []float64 {
	out := make([]float64, len(g.Agents))
	for i, a := range g.Agents {
		out[i] = a.State.Capital
	}
	return out
}

func count(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
