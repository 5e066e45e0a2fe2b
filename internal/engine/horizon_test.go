package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/econsim/internal/agents"
	"github.com/talgya/econsim/internal/config"
	"github.com/talgya/econsim/internal/world"
)

func referenceSeed(t *testing.T) *GameNode {
	t.Helper()
	sim, err := NewSimulation(config.Default())
	require.NoError(t, err)
	return sim.Seed
}

func TestSolveSinglePeriod(t *testing.T) {
	m := world.FromProductivities([]float64{2, 2, 1})
	g := node(m,
		agent([]int{0}, 2, 0.5, 0.5),
		agent([]int{1}, 0, 0.2, 0.1),
	)
	before := []agents.AgentNode{g.Agents[0].Clone(), g.Agents[1].Clone()}

	solver := NewSolver(config.Default())
	dv, err := solver.Solve(Sequence{g})
	require.NoError(t, err)

	out, err := solver.Model.Transition(g)
	require.NoError(t, err)
	want, err := solver.Model.MarginalValue(g, out, []float64{0, 0})
	require.NoError(t, err)

	assert.Equal(t, want, dv)
	assert.Equal(t, before, g.Agents, "terminal period must not be stepped or refined")
	assert.Equal(t, 0, solver.Stats().Steps)
	assert.Equal(t, 0, solver.Stats().Refinements)
}

func TestSolveEmpty(t *testing.T) {
	_, err := NewSolver(config.Default()).Solve(nil)
	assert.ErrorIs(t, err, ErrEmptySequence)
}

func TestSolveRejectsMixedMaps(t *testing.T) {
	a := node(world.FromProductivities([]float64{2}), agent([]int{0}, 0, 0, 0))
	b := node(world.FromProductivities([]float64{2}), agent([]int{0}, 0, 0, 0))

	_, err := NewSolver(config.Default()).Solve(Sequence{a, b})
	assert.Error(t, err)
}

func TestSolveTwoPeriods(t *testing.T) {
	seq := Sequence{referenceSeed(t)}
	seq = seq.Extend()

	solver := NewSolver(config.Default())
	dv, err := solver.Solve(seq)
	require.NoError(t, err)
	require.Len(t, dv, 2)
	for i, v := range dv {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "agent %d: %v", i, v)
		assert.Greater(t, v, 0.0, "agent %d", i)
	}

	for i, a := range seq[0].Agents {
		assert.True(t, a.Action.InDomain(), "agent %d action %+v", i, a.Action)
	}
	assert.Equal(t, agents.Action{}, seq[1].Agents[0].Action, "terminal action is never refined")
	assert.Positive(t, solver.Stats().Steps)
}

func TestSolveNotConverged(t *testing.T) {
	seq := Sequence{referenceSeed(t)}.Extend()

	solver := NewSolver(config.Default())
	solver.MaxIterations = 1
	_, err := solver.Solve(seq)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConverged)

	var ce *ConvergenceError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 0, ce.Period)
	assert.Equal(t, 1, ce.Iterations)
	assert.Greater(t, ce.Divergence, solver.Epsilon)
}

func TestSolveStepBudget(t *testing.T) {
	cold := func() Sequence {
		return Sequence{referenceSeed(t)}.Extend().Extend()
	}

	solver := NewSolver(config.Default())
	solver.MaxSteps = 10
	_, err := solver.Solve(cold())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConverged)

	var ce *ConvergenceError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 10, ce.Steps)
	assert.Equal(t, 10, solver.Stats().Steps)
	assert.LessOrEqual(t, ce.Iterations, solver.MaxIterations)

	// The budget spans the whole call, not a single period's visit.
	_, err = NewSolver(config.Default()).Solve(cold())
	require.NoError(t, err)
}

func TestSolveTwoPeriodsInterior(t *testing.T) {
	seq := Sequence{referenceSeed(t)}.Extend()

	solver := NewSolver(config.Default())
	dv, err := solver.Solve(seq)
	require.NoError(t, err)

	for i, a := range seq[0].Agents {
		assert.InDelta(t, 0.2835, a.Action.Labor, 0.01, "agent %d", i)
		assert.InDelta(t, 0.5758, a.Action.Savings, 0.01, "agent %d", i)
		assert.InDelta(t, 0.6689, dv[i], 0.005, "agent %d", i)
	}
	assert.Zero(t, solver.Stats().Clamps)
}

func TestDriverGrowsOnePeriod(t *testing.T) {
	seed := referenceSeed(t)
	d := &Driver{Solver: NewSolver(config.Default()), Depth: 2}

	var lengths []int
	d.OnHorizon = func(n int, _ []float64) { lengths = append(lengths, n) }

	res, err := d.Run(seed)
	require.NoError(t, err)

	require.Len(t, res.Sequence, 2)
	assert.Same(t, res.Sequence[0].Map, res.Sequence[1].Map)
	assert.Len(t, res.Sequence[1].Agents, len(res.Sequence[0].Agents))
	assert.Same(t, seed, res.Sequence[0])
	assert.Equal(t, []int{1, 2}, lengths)
	assert.Len(t, res.History, 2)
	assert.Equal(t, res.History[1], res.Sensitivity)
}

func TestDriverDepthOne(t *testing.T) {
	d := &Driver{Solver: NewSolver(config.Default()), Depth: 1}
	res, err := d.Run(referenceSeed(t))
	require.NoError(t, err)
	assert.Len(t, res.Sequence, 1)
	assert.Len(t, res.Trajectory, 1)

	_, err = (&Driver{Solver: NewSolver(config.Default())}).Run(referenceSeed(t))
	assert.Error(t, err)
}

func TestReferenceRun(t *testing.T) {
	cfg := config.Default()
	cfg.HorizonDepth = 3

	sim, err := NewSimulation(cfg)
	require.NoError(t, err)
	res, err := sim.Run()
	require.NoError(t, err)

	require.Len(t, res.Sensitivity, 2)
	for i, v := range res.Sensitivity {
		assert.Greater(t, v, 0.0, "agent %d", i)
	}
	require.Len(t, res.Trajectory, 3)

	// The final forward pass chains capital from period to period.
	for p := 0; p+1 < len(res.Trajectory); p++ {
		for i, rec := range res.Trajectory[p].Agents {
			next := res.Trajectory[p+1].Agents[i]
			assert.Equal(t, rec.Outcome.NextCapital, next.State.Capital, "period %d agent %d", p, i)
			assert.Equal(t, rec.State.Lands, next.State.Lands)
		}
	}

	// Seeded capital is untouched.
	for _, a := range res.Trajectory[0].Agents {
		assert.Equal(t, 0.0, a.State.Capital)
	}

	// Both agents hold equally productive land, so they act alike.
	a0, a1 := res.Trajectory[0].Agents[0].Action, res.Trajectory[0].Agents[1].Action
	if diff := cmp.Diff(a0, a1, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("symmetric agents diverged (-0 +1):\n%s", diff)
	}
}

func TestReferenceRunDefaultConfig(t *testing.T) {
	sim, err := NewSimulation(config.Default())
	require.NoError(t, err)
	res, err := sim.Run()
	require.NoError(t, err)

	require.Len(t, res.Trajectory, config.DefaultHorizonDepth)
	require.Len(t, res.History, config.DefaultHorizonDepth)
	require.Len(t, res.Sensitivity, 2)
	for i, v := range res.Sensitivity {
		assert.InDelta(t, 0.6749, v, 0.005, "agent %d", i)
	}

	// Every non-terminal period settles strictly inside the box.
	for _, rec := range res.Trajectory[:len(res.Trajectory)-1] {
		for i, a := range rec.Agents {
			assert.Greater(t, a.Action.Labor, 0.0, "period %d agent %d", rec.Period, i)
			assert.Less(t, a.Action.Labor, 1.0, "period %d agent %d", rec.Period, i)
			assert.Greater(t, a.Action.Savings, 0.0, "period %d agent %d", rec.Period, i)
			assert.Less(t, a.Action.Savings, 1.0, "period %d agent %d", rec.Period, i)
		}
	}
	last := res.Trajectory[len(res.Trajectory)-1]
	for _, a := range last.Agents {
		assert.Equal(t, agents.Action{}, a.Action)
		assert.Greater(t, a.State.Capital, 0.0)
	}
	assert.Zero(t, res.Stats.Clamps)
	assert.Equal(t, config.DefaultHorizonDepth, res.Stats.Solves)
}

func TestReferenceRunDeterministic(t *testing.T) {
	cfg := config.Default()
	cfg.HorizonDepth = 2

	run := func() Result {
		sim, err := NewSimulation(cfg)
		require.NoError(t, err)
		res, err := sim.Run()
		require.NoError(t, err)
		return res
	}
	a, b := run(), run()
	if diff := cmp.Diff(a.Trajectory, b.Trajectory); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
	assert.Equal(t, a.Sensitivity, b.Sensitivity)
}

func TestNewSimulationRejectsLandlessAgent(t *testing.T) {
	cfg := config.Default()
	cfg.InitialAgentLandAssignment = [][]int{{0}, {}}

	_, err := NewSimulation(cfg)
	assert.ErrorIs(t, err, world.ErrNoLand)
}
