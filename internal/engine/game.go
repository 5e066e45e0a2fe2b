// Package engine solves the multi-period labor and savings problem: forward
// transitions, backward propagation of dV/dC, policy refinement, and the
// horizon solver that ties them into a fixed point.
package engine

import (
	"fmt"

	"github.com/talgya/econsim/internal/agents"
	"github.com/talgya/econsim/internal/world"
)

// GameNode is one period: the shared map plus every agent's node in agent
// index order. Agent identity is position and is stable across periods.
type GameNode struct {
	Map    *world.Map
	Agents []agents.AgentNode
}

// NewGameNode creates a period over m owning the given agents.
func NewGameNode(m *world.Map, ag []agents.AgentNode) *GameNode {
	return &GameNode{Map: m, Agents: ag}
}

// Blank returns a structural clone of g for a new period: same map, same
// agents and land holdings, zero capital and zero action. Holdings are fixed
// for the run, so they carry over.
func (g *GameNode) Blank() *GameNode {
	ag := make([]agents.AgentNode, len(g.Agents))
	for i, a := range g.Agents {
		ag[i].State.Lands = append([]int(nil), a.State.Lands...)
	}
	return &GameNode{Map: g.Map, Agents: ag}
}

// Sequence is the ordered list of periods; index 0 is the initial period and
// the last index is the terminal period.
type Sequence []*GameNode

// Validate checks the sequence invariants: at least one period, one shared
// map, and the same agent count everywhere.
func (s Sequence) Validate() error {
	if len(s) == 0 {
		return ErrEmptySequence
	}
	root := s[0]
	if root == nil || root.Map == nil {
		return fmt.Errorf("period 0: missing map")
	}
	for i, g := range s[1:] {
		if g == nil {
			return fmt.Errorf("period %d: missing node", i+1)
		}
		if g.Map != root.Map {
			return fmt.Errorf("period %d: map differs from period 0", i+1)
		}
		if len(g.Agents) != len(root.Agents) {
			return fmt.Errorf("period %d: %w: %d agents, period 0 has %d",
				i+1, ErrShape, len(g.Agents), len(root.Agents))
		}
	}
	return nil
}

// Last returns the terminal period.
func (s Sequence) Last() *GameNode {
	return s[len(s)-1]
}

// Extend appends a blank copy of the terminal period.
func (s Sequence) Extend() Sequence {
	return append(s, s.Last().Blank())
}
