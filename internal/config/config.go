package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/talgya/econsim/internal/economy"
	"github.com/talgya/econsim/internal/world"
)

// ErrInvalid marks a configuration that fails validation.
var ErrInvalid = errors.New("invalid config")

// Config is the full run configuration.
type Config struct {
	TimeProductivityWeight    float64 `yaml:"time_productivity_weight" json:"time_productivity_weight"`
	TimeEnjoymentWeight       float64 `yaml:"time_enjoyment_weight" json:"time_enjoyment_weight"`
	CapitalProductivityWeight float64 `yaml:"capital_productivity_weight" json:"capital_productivity_weight"`
	CapitalEnjoymentWeight    float64 `yaml:"capital_enjoyment_weight" json:"capital_enjoyment_weight"`
	CapitalDepreciation       float64 `yaml:"capital_depreciation" json:"capital_depreciation"`
	TimePreference            float64 `yaml:"time_preference" json:"time_preference"`

	PolicyConvergenceEpsilon float64 `yaml:"policy_convergence_epsilon" json:"policy_convergence_epsilon"`
	MaxPolicyIterations      int     `yaml:"max_policy_iterations" json:"max_policy_iterations"`
	MaxSolverSteps           int     `yaml:"max_solver_steps" json:"max_solver_steps"`
	PolicyRelaxation         float64 `yaml:"policy_relaxation" json:"policy_relaxation"`
	HorizonDepth             int     `yaml:"horizon_depth" json:"horizon_depth"`

	// Lands lists land productivities. Ignored when MapGeneration is set.
	Lands         []float64        `yaml:"lands" json:"lands"`
	MapGeneration *world.GenConfig `yaml:"map_generation,omitempty" json:"map_generation,omitempty"`

	// InitialAgentLandAssignment gives each agent's land indices; its length
	// is the agent count.
	InitialAgentLandAssignment [][]int   `yaml:"initial_agent_land_assignment" json:"initial_agent_land_assignment"`
	InitialCapital             []float64 `yaml:"initial_capital,omitempty" json:"initial_capital,omitempty"`
}

// Weights returns the production and enjoyment weights.
func (c Config) Weights() economy.Weights {
	return economy.Weights{
		TimeProductivity:    c.TimeProductivityWeight,
		TimeEnjoyment:       c.TimeEnjoymentWeight,
		CapitalProductivity: c.CapitalProductivityWeight,
		CapitalEnjoyment:    c.CapitalEnjoymentWeight,
	}
}

// LandCount returns the number of lands the map will have.
func (c Config) LandCount() int {
	if c.MapGeneration != nil {
		return c.MapGeneration.Count
	}
	return len(c.Lands)
}

// BuildMap creates the run's map, generated or from Lands.
func (c Config) BuildMap() *world.Map {
	if c.MapGeneration != nil {
		return world.Generate(*c.MapGeneration)
	}
	return world.FromProductivities(c.Lands)
}

// Validate checks every semantic constraint. An agent without land fails
// with world.ErrNoLand.
func (c Config) Validate() error {
	weights := map[string]float64{
		"time_productivity_weight":    c.TimeProductivityWeight,
		"time_enjoyment_weight":       c.TimeEnjoymentWeight,
		"capital_productivity_weight": c.CapitalProductivityWeight,
		"capital_enjoyment_weight":    c.CapitalEnjoymentWeight,
	}
	for name, w := range weights {
		if !finite(w) || w < 0 {
			return fmt.Errorf("%w: %s=%v must be non-negative", ErrInvalid, name, w)
		}
	}
	if !ratio(c.CapitalDepreciation) {
		return fmt.Errorf("%w: capital_depreciation=%v not in [0,1]", ErrInvalid, c.CapitalDepreciation)
	}
	if !ratio(c.TimePreference) {
		return fmt.Errorf("%w: time_preference=%v not in [0,1]", ErrInvalid, c.TimePreference)
	}
	if !finite(c.PolicyConvergenceEpsilon) || c.PolicyConvergenceEpsilon <= 0 {
		return fmt.Errorf("%w: policy_convergence_epsilon=%v must be positive", ErrInvalid, c.PolicyConvergenceEpsilon)
	}
	if c.MaxPolicyIterations < 1 {
		return fmt.Errorf("%w: max_policy_iterations=%d must be at least 1", ErrInvalid, c.MaxPolicyIterations)
	}
	if c.MaxSolverSteps < 0 {
		return fmt.Errorf("%w: max_solver_steps=%d must not be negative", ErrInvalid, c.MaxSolverSteps)
	}
	if !(c.PolicyRelaxation > 0 && c.PolicyRelaxation <= 1) {
		return fmt.Errorf("%w: policy_relaxation=%v not in (0,1]", ErrInvalid, c.PolicyRelaxation)
	}
	if c.HorizonDepth < 1 {
		return fmt.Errorf("%w: horizon_depth=%d must be at least 1", ErrInvalid, c.HorizonDepth)
	}

	if err := c.validateMap(); err != nil {
		return err
	}

	if len(c.InitialAgentLandAssignment) == 0 {
		return fmt.Errorf("%w: no agents", ErrInvalid)
	}
	lands := c.LandCount()
	for i, held := range c.InitialAgentLandAssignment {
		if len(held) == 0 {
			return fmt.Errorf("%w: agent %d: %w", ErrInvalid, i, world.ErrNoLand)
		}
		for _, idx := range held {
			if idx < 0 || idx >= lands {
				return fmt.Errorf("%w: agent %d: %w: %d (map has %d)", ErrInvalid, i, world.ErrUnknownLand, idx, lands)
			}
		}
	}

	if len(c.InitialCapital) > len(c.InitialAgentLandAssignment) {
		return fmt.Errorf("%w: %d initial_capital entries for %d agents",
			ErrInvalid, len(c.InitialCapital), len(c.InitialAgentLandAssignment))
	}
	for i, k := range c.InitialCapital {
		if !finite(k) || k < 0 {
			return fmt.Errorf("%w: agent %d: initial capital %v must be non-negative", ErrInvalid, i, k)
		}
	}
	return nil
}

func (c Config) validateMap() error {
	if g := c.MapGeneration; g != nil {
		if g.Count < 1 {
			return fmt.Errorf("%w: map_generation.count=%d must be at least 1", ErrInvalid, g.Count)
		}
		if !finite(g.MinProductivity) || g.MinProductivity < 0 || !finite(g.MaxProductivity) || g.MaxProductivity < g.MinProductivity {
			return fmt.Errorf("%w: map_generation productivity range [%v,%v]", ErrInvalid, g.MinProductivity, g.MaxProductivity)
		}
		return nil
	}
	if len(c.Lands) == 0 {
		return fmt.Errorf("%w: no lands", ErrInvalid)
	}
	for i, p := range c.Lands {
		if !finite(p) || p < 0 {
			return fmt.Errorf("%w: land %d productivity %v must be non-negative", ErrInvalid, i, p)
		}
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func ratio(x float64) bool {
	return finite(x) && x >= 0 && x <= 1
}
