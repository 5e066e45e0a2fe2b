package world

import (
	"testing"

	opensimplex "github.com/ojrac/opensimplex-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestProductivity(t *testing.T) {
	m := FromProductivities([]float64{2.0, 1.0, 3.5})

	tests := []struct {
		name     string
		holdings []int
		want     float64
	}{
		{name: "two lands picks the better", holdings: []int{1, 0}, want: 2.0},
		{name: "single land", holdings: []int{1}, want: 1.0},
		{name: "best anywhere in the list", holdings: []int{0, 2, 1}, want: 3.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.BestProductivity(tt.holdings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBestProductivityNoLand(t *testing.T) {
	m := FromProductivities([]float64{2.0, 1.0})

	_, err := m.BestProductivity(nil)
	require.ErrorIs(t, err, ErrNoLand)
	assert.Equal(t, "agent has no land", err.Error())
}

func TestBestProductivityUnknownLand(t *testing.T) {
	m := FromProductivities([]float64{2.0})

	_, err := m.BestProductivity([]int{0, 3})
	require.ErrorIs(t, err, ErrUnknownLand)

	_, err = m.BestProductivity([]int{-1})
	require.ErrorIs(t, err, ErrUnknownLand)
}

func TestMapIsACopy(t *testing.T) {
	lands := []Land{{Productivity: 2}, {Productivity: 1}}
	m := NewMap(lands...)
	lands[0].Productivity = 99

	got, ok := m.Land(0)
	require.True(t, ok)
	assert.Equal(t, 2.0, got.Productivity)

	ps := m.Productivities()
	ps[1] = 42
	assert.Equal(t, []float64{2, 1}, m.Productivities())

	_, ok = m.Land(2)
	assert.False(t, ok)
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 42
	cfg.Count = 12

	a := Generate(cfg)
	b := Generate(cfg)
	require.Equal(t, 12, a.Len())
	assert.Equal(t, a.Productivities(), b.Productivities())

	for i, p := range a.Productivities() {
		assert.GreaterOrEqual(t, p, cfg.MinProductivity, "land %d", i)
		assert.LessOrEqual(t, p, cfg.MaxProductivity, "land %d", i)
	}
}

func TestGenerateEmpty(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 7
	cfg.Count = 0
	assert.Equal(t, 0, Generate(cfg).Len())
}

func TestLineNoise(t *testing.T) {
	noise := opensimplex.NewNormalized(42)

	// One octave reads the base row of the field directly.
	for i := 0; i < 8; i++ {
		x := float64(i)
		assert.Equal(t, noise.Eval2(x*0.35, 0.5), lineNoise(noise, x, 1, 0.35), "x=%v", x)
	}

	for i := 0; i < 200; i++ {
		v := lineNoise(noise, float64(i)*0.7, 4, 0.35)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}

	one := DefaultGenConfig()
	one.Seed, one.Count, one.Octaves = 42, 12, 1
	many := one
	many.Octaves = 4
	assert.NotEqual(t, Generate(one).Productivities(), Generate(many).Productivities())
}
