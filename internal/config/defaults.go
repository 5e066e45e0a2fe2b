// Package config holds the run configuration: economic constants, solver
// limits, the land map and the initial agents.
package config

// Reference constants. A run with no configuration file uses exactly these.
const (
	// DefaultWeight scales time and capital inside production and enjoyment.
	DefaultWeight = 1.0

	// DefaultCapitalDepreciation is the share of retained capital that
	// survives into the next period.
	DefaultCapitalDepreciation = 0.9

	// DefaultTimePreference discounts next period's value.
	DefaultTimePreference = 0.9

	// DefaultPolicyConvergenceEpsilon bounds the squared distance between an
	// action and its optimum, (Δt)² + (Δc)², below which a period's policy
	// has converged.
	DefaultPolicyConvergenceEpsilon = 1e-5

	// DefaultMaxPolicyIterations caps the fixed-point loop of one period.
	DefaultMaxPolicyIterations = 500

	// DefaultMaxSolverSteps caps the forward steps of one whole solve.
	DefaultMaxSolverSteps = 100_000

	// DefaultPolicyRelaxation is the fraction of the way to the optimum an
	// action moves per refinement.
	DefaultPolicyRelaxation = 0.5

	// DefaultHorizonDepth is the number of periods the horizon grows to.
	DefaultHorizonDepth = 5
)

// Default returns the reference configuration: three lands [2, 2, 1], agent 0
// on land 0, agent 1 on land 1, both starting with no capital.
func Default() Config {
	return Config{
		TimeProductivityWeight:     DefaultWeight,
		TimeEnjoymentWeight:        DefaultWeight,
		CapitalProductivityWeight:  DefaultWeight,
		CapitalEnjoymentWeight:     DefaultWeight,
		CapitalDepreciation:        DefaultCapitalDepreciation,
		TimePreference:             DefaultTimePreference,
		PolicyConvergenceEpsilon:   DefaultPolicyConvergenceEpsilon,
		MaxPolicyIterations:        DefaultMaxPolicyIterations,
		MaxSolverSteps:             DefaultMaxSolverSteps,
		PolicyRelaxation:           DefaultPolicyRelaxation,
		HorizonDepth:               DefaultHorizonDepth,
		Lands:                      []float64{2.0, 2.0, 1.0},
		InitialAgentLandAssignment: [][]int{{0}, {1}},
	}
}
