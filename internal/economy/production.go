// Package economy provides the production and consumption primitives that turn
// time and capital into new capital or utility, plus their closed-form partials.
package economy

import "math"

// Weights scales time and capital inside the production and consumption transforms.
type Weights struct {
	TimeProductivity    float64 `json:"time_productivity"`    // k_tp
	TimeEnjoyment       float64 `json:"time_enjoyment"`       // k_te
	CapitalProductivity float64 `json:"capital_productivity"` // k_cp
	CapitalEnjoyment    float64 `json:"capital_enjoyment"`    // k_ce
}

// UnitWeights returns the reference weights, all 1.0.
func UnitWeights() Weights {
	return Weights{
		TimeProductivity:    1,
		TimeEnjoyment:       1,
		CapitalProductivity: 1,
		CapitalEnjoyment:    1,
	}
}

// Sln is the saturating transform ln(x+1). It is zero at zero and has
// diminishing returns for positive x.
func Sln(x float64) float64 {
	return math.Log1p(x)
}

// Produce returns the capital produced on land of the given productivity by
// spending time laboring and investing capital:
//
//	p * sln(k_tp*time) * (1 + sln(k_cp*capital))
//
// No labor means no output, whatever the capital.
func (w Weights) Produce(productivity, time, capital float64) float64 {
	return productivity *
		Sln(w.TimeProductivity*time) *
		(1 + Sln(w.CapitalProductivity*capital))
}

// Consume returns the utility generated by enjoying leisure time and
// consuming capital:
//
//	sln(k_te*leisure) * (1 + sln(k_ce*capital))
func (w Weights) Consume(leisure, capital float64) float64 {
	return Sln(w.TimeEnjoyment*leisure) *
		(1 + Sln(w.CapitalEnjoyment*capital))
}

// ProduceDTime is ∂Produce/∂time.
func (w Weights) ProduceDTime(productivity, time, capital float64) float64 {
	return productivity *
		w.TimeProductivity / (w.TimeProductivity*time + 1) *
		(1 + Sln(w.CapitalProductivity*capital))
}

// ProduceDCapital is ∂Produce/∂capital.
func (w Weights) ProduceDCapital(productivity, time, capital float64) float64 {
	return productivity *
		Sln(w.TimeProductivity*time) *
		w.CapitalProductivity / (w.CapitalProductivity*capital + 1)
}

// ConsumeDLeisure is ∂Consume/∂leisure.
func (w Weights) ConsumeDLeisure(leisure, capital float64) float64 {
	return w.TimeEnjoyment / (w.TimeEnjoyment*leisure + 1) *
		(1 + Sln(w.CapitalEnjoyment*capital))
}

// ConsumeDCapital is ∂Consume/∂capital.
func (w Weights) ConsumeDCapital(leisure, capital float64) float64 {
	return Sln(w.TimeEnjoyment*leisure) *
		w.CapitalEnjoyment / (w.CapitalEnjoyment*capital + 1)
}
