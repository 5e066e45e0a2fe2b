// Land generation using layered simplex noise.
// Neighbouring parcels get correlated productivity, like terrain in a region.
package world

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds land generation parameters.
type GenConfig struct {
	Seed            int64   `yaml:"seed" json:"seed"` // Random seed (0 = random)
	Count           int     `yaml:"count" json:"count"`
	Frequency       float64 `yaml:"frequency" json:"frequency"` // Noise frequency per parcel step
	Octaves         int     `yaml:"octaves" json:"octaves"`
	MinProductivity float64 `yaml:"min_productivity" json:"min_productivity"`
	MaxProductivity float64 `yaml:"max_productivity" json:"max_productivity"`
}

// DefaultGenConfig returns a small map in the same productivity range as the
// reference lands.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:            0,
		Count:           3,
		Frequency:       0.35,
		Octaves:         3,
		MinProductivity: 1,
		MaxProductivity: 2,
	}
}

// Generate creates a map of cfg.Count lands with noise-derived productivity
// scaled into [MinProductivity, MaxProductivity].
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	octaves := cfg.Octaves
	if octaves < 1 {
		octaves = 1
	}

	noise := opensimplex.NewNormalized(seed)
	span := cfg.MaxProductivity - cfg.MinProductivity

	lands := make([]Land, cfg.Count)
	for i := range lands {
		v := lineNoise(noise, float64(i), octaves, cfg.Frequency)
		lands[i] = Land{Productivity: cfg.MinProductivity + span*v}
	}
	return &Map{lands: lands}
}

// Octave amplitudes halve; each octave reads its own row of the 2-D field so
// octaves do not share lattice points along the line.
const (
	persistence = 0.5
	rowSpacing  = 17.31
)

// lineNoise samples fractal noise at position x along the parcel line.
// opensimplex has no 1-D evaluator, so the line is a horizontal row of the
// 2-D field. The result stays in [0, 1).
func lineNoise(noise opensimplex.Noise, x float64, octaves int, frequency float64) float64 {
	var total, norm float64
	amplitude := 1.0
	for o := 0; o < octaves; o++ {
		row := rowSpacing*float64(o) + 0.5
		total += amplitude * noise.Eval2(x*frequency, row)
		norm += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / norm
}
