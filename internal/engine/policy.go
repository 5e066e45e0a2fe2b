// Policy refinement: moves each agent's action toward the point where the
// first-order conditions ∂V/∂t = 0 and ∂V/∂c = 0 hold, given a local model
// of next period's value of capital.
package engine

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/talgya/econsim/internal/agents"
	"github.com/talgya/econsim/internal/economy"
)

// Optimizer limits for the per-agent Newton iteration.
const (
	maxNewtonIterations = 100
	maxBacktracks       = 40
	armijo              = 1e-4
	hessianStep         = 1e-5
	gradientTolerance   = 1e-20 // squared norm of the free gradient
	stepTolerance       = 1e-12
)

// Refinement is the result of one policy update for a period.
type Refinement struct {
	// Divergence is each agent's squared distance from its previous action to
	// the optimum, (Δt)² + (Δc)², before relaxation.
	Divergence []float64
	// Clamped marks agents whose updated action had to be projected back
	// onto [0,1].
	Clamped []bool
	// Corner marks agents whose optimum sits on a bound of [0,1] with the
	// first-order condition pushing outward.
	Corner []bool
}

// Converged reports whether every agent's residual is below eps.
func (r Refinement) Converged(eps float64) bool {
	for _, d := range r.Divergence {
		if !(d < eps) {
			return false
		}
	}
	return true
}

// MaxDivergence returns the largest per-agent divergence, or 0 with no agents.
func (r Refinement) MaxDivergence() float64 {
	if len(r.Divergence) == 0 {
		return 0
	}
	return floats.Max(r.Divergence)
}

// Continuation is next period's value of capital, modelled around the
// capital the latest step handed over:
//
//	V(C') ≈ Slope*(C'-Anchor) + Curvature*(C'-Anchor)²/2
//
// Slope is next period's dV/dC. A nil Curvature or Anchor reads as zeros,
// which leaves a linear continuation.
type Continuation struct {
	Slope     []float64
	Curvature []float64
	Anchor    []float64
}

func (k Continuation) check(n int) error {
	if len(k.Slope) != n ||
		(k.Curvature != nil && len(k.Curvature) != n) ||
		(k.Anchor != nil && len(k.Anchor) != n) {
		return fmt.Errorf("refine policy: %w: %d agents, continuation %d/%d/%d",
			ErrShape, n, len(k.Slope), len(k.Curvature), len(k.Anchor))
	}
	return nil
}

func entry(v []float64, i int) float64 {
	if v == nil {
		return 0
	}
	return v[i]
}

// RefinePolicy updates every agent's action in place. Each agent's optimum is
// found for the period objective
//
//	J(t,c) = U(t,c) + time_preference * V(C'(t,c))
//
// with V from next, and the action moves a fraction relaxation of the way
// there. Actions stay in [0,1].
func (m Model) RefinePolicy(node *GameNode, next Continuation, relaxation float64) (Refinement, error) {
	n := len(node.Agents)
	if err := next.check(n); err != nil {
		return Refinement{}, err
	}
	if !(relaxation > 0 && relaxation <= 1) {
		return Refinement{}, fmt.Errorf("refine policy: relaxation %v not in (0,1]", relaxation)
	}

	ref := Refinement{
		Divergence: make([]float64, n),
		Clamped:    make([]bool, n),
		Corner:     make([]bool, n),
	}
	for i := range node.Agents {
		a := &node.Agents[i]
		if err := checkDomain(i, *a); err != nil {
			return Refinement{}, err
		}
		p, err := node.Map.BestProductivity(a.State.Lands)
		if err != nil {
			return Refinement{}, fmt.Errorf("agent %d: %w", i, err)
		}

		prob := agentProblem{
			w:         m.Weights,
			p:         p,
			capital:   a.State.Capital,
			discount:  m.TimePreference,
			retain:    m.Depreciation,
			slope:     next.Slope[i],
			curvature: entry(next.Curvature, i),
			anchor:    entry(next.Anchor, i),
		}
		opt, corner := prob.maximize(a.Action)

		prev := a.Action
		updated, clamped := prev.Toward(opt, relaxation).Clamp()
		a.Action = updated

		ref.Divergence[i] = opt.Distance(prev)
		ref.Corner[i] = corner
		ref.Clamped[i] = clamped
		if clamped {
			slog.Warn("action clamped to [0,1]",
				"agent", i,
				"t", updated.Labor,
				"c", updated.Savings,
				"optimum_t", opt.Labor,
				"optimum_c", opt.Savings,
			)
		}
	}
	return ref, nil
}

// agentProblem is one agent's period objective given next period's
// continuation value.
type agentProblem struct {
	w         economy.Weights
	p         float64
	capital   float64
	discount  float64 // time preference
	retain    float64 // depreciation
	slope     float64
	curvature float64
	anchor    float64
}

func (pr agentProblem) value(x []float64) float64 {
	t, c := x[0], x[1]
	plus := pr.capital + pr.w.Produce(pr.p, t, c*pr.capital)
	d := pr.retain*c*plus - pr.anchor
	return pr.w.Consume(1-t, (1-c)*plus) + pr.discount*(pr.slope*d+pr.curvature*d*d/2)
}

// gradient writes (∂J/∂t, ∂J/∂c) at x into dst.
func (pr agentProblem) gradient(dst, x []float64) {
	t, c := x[0], x[1]
	w := pr.w
	invest := c * pr.capital
	plus := pr.capital + w.Produce(pr.p, t, invest)
	leisure, eaten := 1-t, (1-c)*plus

	dPlusdt := w.ProduceDTime(pr.p, t, invest)
	dPlusdc := w.ProduceDCapital(pr.p, t, invest) * pr.capital

	uC := w.ConsumeDCapital(leisure, eaten)
	dUdt := -w.ConsumeDLeisure(leisure, eaten) + uC*(1-c)*dPlusdt
	dUdc := uC * ((1-c)*dPlusdc - plus)

	// Marginal continuation value per unit of next capital.
	d := pr.retain*c*plus - pr.anchor
	carry := pr.discount * (pr.slope + pr.curvature*d) * pr.retain

	dst[0] = dUdt + carry*c*dPlusdt
	dst[1] = dUdc + carry*(plus+c*dPlusdc)
}

// hessian fills dst with the Jacobian of the gradient at x, evaluated far
// enough inside the box that central differences stay in the domain.
func (pr agentProblem) hessian(dst *mat.Dense, x []float64) {
	at := []float64{
		math.Min(math.Max(x[0], hessianStep), 1-hessianStep),
		math.Min(math.Max(x[1], hessianStep), 1-hessianStep),
	}
	fd.Jacobian(dst, pr.gradient, at, &fd.JacobianSettings{
		Formula: fd.Central,
		Step:    hessianStep,
	})
}

// maximize runs projected Newton from start and returns the optimum and
// whether a bound is active there.
func (pr agentProblem) maximize(start agents.Action) (agents.Action, bool) {
	x := []float64{start.Labor, start.Savings}
	g := make([]float64, 2)
	h := mat.NewDense(2, 2, nil)

	for iter := 0; iter < maxNewtonIterations; iter++ {
		pr.gradient(g, x)
		free := freeCoords(x, g)
		if len(free) == 0 || freeNorm(g, free) < gradientTolerance {
			break
		}
		dir := pr.direction(h, x, g, free)
		next, ok := pr.lineSearch(x, g, dir)
		if !ok {
			break
		}
		moved := floats.Distance(next, x, 2)
		copy(x, next)
		if moved < stepTolerance {
			break
		}
	}

	pr.gradient(g, x)
	return agents.Action{Labor: x[0], Savings: x[1]}, len(freeCoords(x, g)) < len(x)
}

// direction returns the Newton ascent direction (-H)⁻¹g on the free
// coordinates, or the gradient itself where -H is not positive definite.
func (pr agentProblem) direction(h *mat.Dense, x, g []float64, free []int) []float64 {
	dir := make([]float64, len(x))
	pr.hessian(h, x)

	k := len(free)
	negH := mat.NewSymDense(k, nil)
	rhs := mat.NewVecDense(k, nil)
	for a, i := range free {
		rhs.SetVec(a, g[i])
		for b := a; b < k; b++ {
			j := free[b]
			negH.SetSym(a, b, -(h.At(i, j)+h.At(j, i))/2)
		}
	}

	var chol mat.Cholesky
	if chol.Factorize(negH) {
		var step mat.VecDense
		if err := chol.SolveVecTo(&step, rhs); err == nil {
			for a, i := range free {
				dir[i] = step.AtVec(a)
			}
			return dir
		}
	}
	for _, i := range free {
		dir[i] = g[i]
	}
	return dir
}

// lineSearch backtracks along dir, projecting onto [0,1]², until the Armijo
// condition holds. It fails when no step improves J or the projection
// leaves x in place.
func (pr agentProblem) lineSearch(x, g, dir []float64) ([]float64, bool) {
	f0 := pr.value(x)
	trial := make([]float64, len(x))
	moved := make([]float64, len(x))

	alpha := 1.0
	for k := 0; k < maxBacktracks; k++ {
		for i := range x {
			trial[i] = math.Min(math.Max(x[i]+alpha*dir[i], 0), 1)
		}
		floats.SubTo(moved, trial, x)
		if floats.Norm(moved, 2) == 0 {
			return nil, false
		}
		if pr.value(trial) >= f0+armijo*floats.Dot(g, moved) {
			return trial, true
		}
		alpha /= 2
	}
	return nil, false
}

// freeCoords lists the coordinates not pinned by a bound: a coordinate at 0
// with a negative gradient, or at 1 with a positive one, cannot move.
func freeCoords(x, g []float64) []int {
	free := make([]int, 0, len(x))
	for i := range x {
		if (x[i] <= 0 && g[i] < 0) || (x[i] >= 1 && g[i] > 0) {
			continue
		}
		free = append(free, i)
	}
	return free
}

func freeNorm(g []float64, free []int) float64 {
	sum := 0.0
	for _, i := range free {
		sum += g[i] * g[i]
	}
	return sum
}
