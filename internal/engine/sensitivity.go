// Backward sensitivity: the marginal value of pre-period capital, chained
// through production, consumption and the capital handed to the next period.
package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/talgya/econsim/internal/agents"
)

// curvatureStep is the capital offset for differentiating dV/dC.
const curvatureStep = 1e-4

// MarginalValue returns dV/dC for every agent of node, given the outcomes of
// node's latest transition and next period's dV/dC. For the terminal period
// next is all zeros: there is no value beyond the horizon.
func (m Model) MarginalValue(node *GameNode, outcomes []Outcome, next []float64) ([]float64, error) {
	n := len(node.Agents)
	if len(outcomes) != n || len(next) != n {
		return nil, fmt.Errorf("marginal value: %w: %d agents, %d outcomes, %d next values",
			ErrShape, n, len(outcomes), len(next))
	}

	dVdC := make([]float64, n)
	for i, a := range node.Agents {
		o := outcomes[i]
		dVdC[i] = m.marginal(o.Productivity, a.State.Capital, o.CapitalPlus, a.Action, next[i])
	}
	return dVdC, nil
}

func (m Model) marginal(p, capital, plus float64, act agents.Action, next float64) float64 {
	w := m.Weights
	t, c := act.Labor, act.Savings

	// Cplus = C + p*sln(k_tp*t)*(1 + sln(k_cp*C))
	dCplusdC := 1 + w.ProduceDCapital(p, t, capital)

	// U = sln(k_te*(1-t)) * (1 + sln(k_ce*(1-c)*Cplus))
	dUdC := w.ConsumeDCapital(1-t, (1-c)*plus) * (1 - c) * dCplusdC

	// C' = depreciation * c * Cplus
	dCprimedC := m.Depreciation * c * dCplusdC

	return dUdC + m.TimePreference*next*dCprimedC
}

// Curvature returns d²V/dC² for every agent of node with its action held
// fixed: the derivative of MarginalValue in capital, plus next period's
// curvature carried back through dC'/dC. next and nextCurvature are next
// period's dV/dC and d²V/dC² (zeros for the terminal period). A convex
// estimate is reported as 0.
func (m Model) Curvature(node *GameNode, next, nextCurvature []float64) ([]float64, error) {
	n := len(node.Agents)
	if len(next) != n || len(nextCurvature) != n {
		return nil, fmt.Errorf("curvature: %w: %d agents, %d next values, %d next curvatures",
			ErrShape, n, len(next), len(nextCurvature))
	}

	settings := &fd.Settings{Formula: fd.Central, Step: curvatureStep}
	out := make([]float64, n)
	for i, a := range node.Agents {
		p, err := node.Map.BestProductivity(a.State.Lands)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", i, err)
		}
		act := a.Action
		dv := func(capital float64) float64 {
			plus := capital + m.Weights.Produce(p, act.Labor, act.Savings*capital)
			return m.marginal(p, capital, plus, act, next[i])
		}
		own := fd.Derivative(dv, a.State.Capital, settings)

		dCprimedC := m.Depreciation * act.Savings * (1 + m.Weights.ProduceDCapital(p, act.Labor, a.State.Capital))
		out[i] = math.Min(own+m.TimePreference*dCprimedC*dCprimedC*nextCurvature[i], 0)
	}
	return out, nil
}
