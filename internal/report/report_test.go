package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/econsim/internal/agents"
	"github.com/talgya/econsim/internal/engine"
)

func sample() engine.Result {
	rec := func(period int, capital, next float64) engine.PeriodRecord {
		return engine.PeriodRecord{
			Period: period,
			Agents: []engine.AgentRecord{{
				State:  agents.AgentState{Lands: []int{0}, Capital: capital},
				Action: agents.Action{Labor: 0.5, Savings: 0.25},
				Outcome: engine.Outcome{
					Productivity:   2,
					CapitalPlus:    capital + 1,
					UtilityYielded: 0.75,
					NextCapital:    next,
				},
			}},
		}
	}
	return engine.Result{
		Sensitivity: []float64{1.5},
		History:     [][]float64{{0.5}, {1.5}},
		Trajectory:  engine.Trajectory{rec(0, 0, 0.225), rec(1, 0.225, 0)},
		Stats:       engine.Stats{Solves: 2, Steps: 12345, Refinements: 40, Clamps: 1, Corners: 1200},
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sample()))
	out := buf.String()

	assert.Contains(t, out, "Sensitivity to initial capital:")
	assert.Contains(t, out, "dV/dC = 1.500000")
	assert.Contains(t, out, "By horizon length:")
	assert.Contains(t, out, "1 period")
	assert.Contains(t, out, "2 periods")
	assert.Contains(t, out, "Period 0")
	assert.Contains(t, out, "Period 1")
	assert.Contains(t, out, "0.225000")
	assert.Contains(t, out, "12,345 steps")
	assert.Contains(t, out, "1,200 corner optima")
	assert.Contains(t, out, "1 clamped actions")
}

func TestTextSingleHorizonSkipsHistory(t *testing.T) {
	res := sample()
	res.History = res.History[1:]

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, res))
	assert.NotContains(t, buf.String(), "By horizon length:")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sample()))

	var got struct {
		Sensitivity []float64 `json:"sensitivity"`
		Trajectory  []struct {
			Period int `json:"period"`
			Agents []struct {
				Action struct {
					T float64 `json:"t"`
					C float64 `json:"c"`
				} `json:"action"`
				Outcome struct {
					NextCapital float64 `json:"next_capital"`
				} `json:"outcome"`
			} `json:"agents"`
		} `json:"trajectory"`
		Stats struct {
			Steps int `json:"steps"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, []float64{1.5}, got.Sensitivity)
	require.Len(t, got.Trajectory, 2)
	assert.Equal(t, 1, got.Trajectory[1].Period)
	assert.Equal(t, 0.5, got.Trajectory[0].Agents[0].Action.T)
	assert.Equal(t, 0.225, got.Trajectory[0].Agents[0].Outcome.NextCapital)
	assert.Equal(t, 12345, got.Stats.Steps)
	assert.NotContains(t, buf.String(), "Sequence")
}
