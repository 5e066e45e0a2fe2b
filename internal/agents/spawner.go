// Agent spawning: builds the period-0 agents from a land assignment.
package agents

import "fmt"

// Spawn creates one agent per land assignment, in assignment order. capital
// gives each agent's starting stock; a missing entry means zero capital.
// Land holdings are copied so callers may reuse their slices.
func Spawn(assignments [][]int, capital []float64) ([]AgentNode, error) {
	if len(capital) > len(assignments) {
		return nil, fmt.Errorf("spawn: %d capital entries for %d agents", len(capital), len(assignments))
	}

	nodes := make([]AgentNode, len(assignments))
	for i, lands := range assignments {
		nodes[i].State.Lands = append([]int(nil), lands...)
		if i < len(capital) {
			nodes[i].State.Capital = capital[i]
		}
	}
	return nodes, nil
}
