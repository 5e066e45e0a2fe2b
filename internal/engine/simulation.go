// Simulation assembles a run from configuration: map, period-0 agents, solver
// and horizon driver.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/econsim/internal/agents"
	"github.com/talgya/econsim/internal/config"
	"github.com/talgya/econsim/internal/world"
)

// Simulation holds everything one run needs.
type Simulation struct {
	Config config.Config
	Map    *world.Map
	Seed   *GameNode // Period 0 as configured
	Solver *Solver
	Driver *Driver
}

// NewSimulation validates cfg and builds the seed period and solver.
func NewSimulation(cfg config.Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := cfg.BuildMap()
	ag, err := agents.Spawn(cfg.InitialAgentLandAssignment, cfg.InitialCapital)
	if err != nil {
		return nil, err
	}
	for i, a := range ag {
		if _, err := m.BestProductivity(a.State.Lands); err != nil {
			return nil, fmt.Errorf("agent %d: %w", i, err)
		}
	}

	solver := NewSolver(cfg)
	sim := &Simulation{
		Config: cfg,
		Map:    m,
		Seed:   NewGameNode(m, ag),
		Solver: solver,
		Driver: &Driver{Solver: solver, Depth: cfg.HorizonDepth},
	}
	slog.Debug("simulation ready",
		"lands", m.Len(),
		"agents", len(ag),
		"depth", cfg.HorizonDepth,
		"map", m.String(),
	)
	return sim, nil
}

// Run grows the horizon from the seed period to the configured depth.
func (s *Simulation) Run() (Result, error) {
	return s.Driver.Run(s.Seed)
}
