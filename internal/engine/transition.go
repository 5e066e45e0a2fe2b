// Forward transition: applies each agent's action to its state and derives
// next period's capital.
package engine

import (
	"fmt"
	"math"

	"github.com/talgya/econsim/internal/agents"
	"github.com/talgya/econsim/internal/config"
	"github.com/talgya/econsim/internal/economy"
)

// Model holds the economic constants shared by every period.
type Model struct {
	Weights        economy.Weights
	Depreciation   float64 // Share of retained capital that survives to next period
	TimePreference float64 // Discount on next period's value
}

// NewModel builds the model from a configuration.
func NewModel(cfg config.Config) Model {
	return Model{
		Weights:        cfg.Weights(),
		Depreciation:   cfg.CapitalDepreciation,
		TimePreference: cfg.TimePreference,
	}
}

// Outcome is what one agent's action yields in a period. It is computed fresh
// by every transition and never stored on the node.
type Outcome struct {
	Productivity   float64 `json:"productivity"`    // Best held land
	CapitalPlus    float64 `json:"capital_plus"`    // Capital after production
	UtilityYielded float64 `json:"utility_yielded"` // Utility realized this period
	NextCapital    float64 `json:"next_capital"`    // Capital handed to the next period
}

// Transition computes every agent's outcome for node without mutating it.
func (m Model) Transition(node *GameNode) ([]Outcome, error) {
	out := make([]Outcome, len(node.Agents))
	for i, a := range node.Agents {
		if err := checkDomain(i, a); err != nil {
			return nil, err
		}
		p, err := node.Map.BestProductivity(a.State.Lands)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", i, err)
		}
		out[i] = m.outcome(p, a.State.Capital, a.Action)
	}
	return out, nil
}

// Step runs Transition on node and writes the resulting states into next.
// Land holdings carry forward unchanged.
func (m Model) Step(node, next *GameNode) ([]Outcome, error) {
	if len(next.Agents) != len(node.Agents) {
		return nil, fmt.Errorf("step: %w: %d agents into %d", ErrShape, len(node.Agents), len(next.Agents))
	}
	out, err := m.Transition(node)
	if err != nil {
		return nil, err
	}
	for i, a := range node.Agents {
		next.Agents[i].State = agents.AgentState{
			Lands:   append([]int(nil), a.State.Lands...),
			Capital: out[i].NextCapital,
		}
	}
	return out, nil
}

func (m Model) outcome(p, capital float64, act agents.Action) Outcome {
	t, c := act.Labor, act.Savings
	plus := capital + m.Weights.Produce(p, t, c*capital)
	return Outcome{
		Productivity:   p,
		CapitalPlus:    plus,
		UtilityYielded: m.Weights.Consume(1-t, (1-c)*plus),
		NextCapital:    c * plus * m.Depreciation,
	}
}

func checkDomain(i int, a agents.AgentNode) error {
	switch {
	case !agents.InUnit(a.Action.Labor):
		return &DomainError{Agent: i, Field: "t", Value: a.Action.Labor}
	case !agents.InUnit(a.Action.Savings):
		return &DomainError{Agent: i, Field: "c", Value: a.Action.Savings}
	case math.IsNaN(a.State.Capital) || math.IsInf(a.State.Capital, 0) || a.State.Capital < 0:
		return &DomainError{Agent: i, Field: "capital", Value: a.State.Capital}
	}
	return nil
}
