// Horizon growth: extends the planning horizon one period at a time and
// re-solves the whole problem from period 0 at every length.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/econsim/internal/agents"
)

// Driver grows the horizon up to Depth periods.
type Driver struct {
	Solver *Solver
	Depth  int // Target sequence length, >= 1

	// OnHorizon, when set, is called after each solve with the sequence
	// length and the root period's dV/dC.
	OnHorizon func(length int, dVdC []float64)
}

// Result is the outcome of a full run.
type Result struct {
	Sequence    Sequence    `json:"-"`
	Sensitivity []float64   `json:"sensitivity"` // Root period dV/dC at the final horizon
	History     [][]float64 `json:"history"`     // Root dV/dC after each horizon length
	Trajectory  Trajectory  `json:"trajectory"`
	Stats       Stats       `json:"stats"`
}

// Run solves the single seed period, then repeatedly appends a blank copy of
// the terminal period and re-solves the entire sequence until it has Depth
// periods. A final forward pass leaves every period consistent with the
// final policy.
func (d *Driver) Run(seed *GameNode) (Result, error) {
	if d.Depth < 1 {
		return Result{}, fmt.Errorf("horizon depth %d: must be at least 1", d.Depth)
	}

	seq := Sequence{seed}
	var res Result
	for {
		dv, err := d.Solver.Solve(seq)
		if err != nil {
			return Result{}, fmt.Errorf("horizon %d: %w", len(seq), err)
		}
		res.Sensitivity = dv
		res.History = append(res.History, dv)

		slog.Info("horizon solved",
			"periods", len(seq),
			"dV_dC", dv,
			"steps", d.Solver.Stats().Steps,
		)
		if d.OnHorizon != nil {
			d.OnHorizon(len(seq), dv)
		}

		if len(seq) >= d.Depth {
			break
		}
		seq = seq.Extend()
	}

	traj, err := d.Solver.Model.Replay(seq)
	if err != nil {
		return Result{}, fmt.Errorf("final pass: %w", err)
	}
	res.Sequence = seq
	res.Trajectory = traj
	res.Stats = d.Solver.Stats()
	return res, nil
}

// Trajectory is the per-period record of a solved sequence.
type Trajectory []PeriodRecord

// PeriodRecord is one period's agents after the final forward pass.
type PeriodRecord struct {
	Period int           `json:"period"`
	Agents []AgentRecord `json:"agents"`
}

// AgentRecord is one agent's state, action and derived outcome in a period.
type AgentRecord struct {
	State   agents.AgentState `json:"state"`
	Action  agents.Action     `json:"action"`
	Outcome Outcome           `json:"outcome"`
}

// Replay runs one forward pass over seq with the current policy, writing
// each period's outcome into the next period's state, and records the whole
// trajectory. Period 0's state is left as seeded.
func (m Model) Replay(seq Sequence) (Trajectory, error) {
	if err := seq.Validate(); err != nil {
		return nil, err
	}

	traj := make(Trajectory, len(seq))
	for i, node := range seq {
		var (
			out []Outcome
			err error
		)
		if i+1 < len(seq) {
			out, err = m.Step(node, seq[i+1])
		} else {
			out, err = m.Transition(node)
		}
		if err != nil {
			return nil, periodError(i, err)
		}

		rec := PeriodRecord{Period: i, Agents: make([]AgentRecord, len(node.Agents))}
		for j, a := range node.Agents {
			rec.Agents[j] = AgentRecord{
				State:   a.State.Clone(),
				Action:  a.Action,
				Outcome: out[j],
			}
		}
		traj[i] = rec
	}
	return traj, nil
}
