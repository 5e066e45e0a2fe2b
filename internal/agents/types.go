// Package agents provides the per-agent state and policy carried by every period.
package agents

import "math"

// AgentState is what an agent owns at the start of a period.
type AgentState struct {
	Lands   []int   `json:"lands"`   // Indices into the shared world.Map; fixed for the run
	Capital float64 `json:"capital"` // Capital stock, >= 0
}

// Clone returns a copy that shares nothing with s.
func (s AgentState) Clone() AgentState {
	return AgentState{
		Lands:   append([]int(nil), s.Lands...),
		Capital: s.Capital,
	}
}

// Action is an agent's policy choice for one period. Both fields are ratios
// in [0,1].
type Action struct {
	// Labor (t) is the fraction of time spent producing; the rest is leisure.
	Labor float64 `json:"t"`
	// Savings (c) is the fraction of capital retained rather than consumed. It
	// also sets the share of current capital invested in production.
	Savings float64 `json:"c"`
}

// InDomain reports whether both ratios are finite and within [0,1].
func (a Action) InDomain() bool {
	return InUnit(a.Labor) && InUnit(a.Savings)
}

// Clamp projects a onto [0,1]^2 and reports whether anything moved.
// NaN components are reset to zero.
func (a Action) Clamp() (Action, bool) {
	out := Action{Labor: clamp01(a.Labor), Savings: clamp01(a.Savings)}
	return out, out != a
}

// Distance is the squared change from prev: (Δt)² + (Δc)².
func (a Action) Distance(prev Action) float64 {
	dt := a.Labor - prev.Labor
	dc := a.Savings - prev.Savings
	return dt*dt + dc*dc
}

// Toward moves a fraction w of the way from a to target.
func (a Action) Toward(target Action, w float64) Action {
	return Action{
		Labor:   a.Labor + w*(target.Labor-a.Labor),
		Savings: a.Savings + w*(target.Savings-a.Savings),
	}
}

// AgentNode bundles one agent's state and action for one period.
type AgentNode struct {
	State  AgentState `json:"state"`
	Action Action     `json:"action"`
}

// Clone returns a deep copy of n.
func (n AgentNode) Clone() AgentNode {
	return AgentNode{State: n.State.Clone(), Action: n.Action}
}

// InUnit reports whether x is a finite ratio in [0,1].
func InUnit(x float64) bool {
	return !math.IsNaN(x) && x >= 0 && x <= 1
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
