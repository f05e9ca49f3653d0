package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePayment(t *testing.T) {
	tests := []struct {
		name     string
		category WasteCategory
		weight   float64
		tier     QualityTier
		want     int64
	}{
		{"plastic good", Plastic, 10, Good, 144},
		{"metal zero weight", Metal, 0, Excellent, 0},
		{"unknown category falls back to other", WasteCategory("unknownCategory"), 5, Fair, 25},
		{"other fair", Other, 5, Fair, 25},
		{"electronic good", Electronic, 2.5, Good, 105},
		{"glass poor rounds", Glass, 1, Poor, 2},
		{"missing tier defaults to fair", Paper, 3, QualityTier(""), 24},
		{"case insensitive", WasteCategory(" Metal "), 1, QualityTier("GOOD"), 30},
		{"negative weight counts as zero", Plastic, -4, Good, 0},
		{"nan weight counts as zero", Plastic, math.NaN(), Good, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputePayment(tt.category, tt.weight, tt.tier))
		})
	}
}

func TestComputePayment_NeverNegative(t *testing.T) {
	for _, c := range Categories() {
		for _, tier := range Tiers() {
			for _, w := range []float64{0, 0.01, 0.5, 1, 7.3, 120} {
				assert.GreaterOrEqual(t, ComputePayment(c, w, tier), int64(0))
			}
		}
	}
}

func TestEstimateTokens_Deterministic(t *testing.T) {
	first := EstimateTokens(Plastic, 12.75, Excellent)
	second := EstimateTokens(Plastic, 12.75, Excellent)

	assert.Equal(t, first, second)
	assert.Equal(t, ComputePayment(Plastic, 12.75, Excellent), first)
}

func TestRateTable(t *testing.T) {
	t.Run("BaseRates", func(t *testing.T) {
		assert.Equal(t, 12.0, BaseRate(Plastic))
		assert.Equal(t, 8.0, BaseRate(Paper))
		assert.Equal(t, 25.0, BaseRate(Metal))
		assert.Equal(t, 3.0, BaseRate(Glass))
		assert.Equal(t, 35.0, BaseRate(Electronic))
		assert.Equal(t, 2.0, BaseRate(Organic))
		assert.Equal(t, 5.0, BaseRate(Other))
		assert.Equal(t, 5.0, BaseRate("cardboard"))
	})

	t.Run("Multipliers", func(t *testing.T) {
		assert.Equal(t, 1.4, QualityMultiplier(Excellent))
		assert.Equal(t, 1.2, QualityMultiplier(Good))
		assert.Equal(t, 1.0, QualityMultiplier(Fair))
		assert.Equal(t, 0.7, QualityMultiplier(Poor))
		assert.Equal(t, 1.0, QualityMultiplier("pristine"))
	})

	t.Run("Parse", func(t *testing.T) {
		assert.Equal(t, Electronic, ParseCategory("ELECTRONIC"))
		assert.Equal(t, Other, ParseCategory(""))
		assert.Equal(t, Fair, ParseTier(""))
		assert.True(t, Good.Valid())
		assert.False(t, QualityTier("great").Valid())
	})
}

func TestEstimate(t *testing.T) {
	q := Estimate("Plastic", 10, "good")

	assert.Equal(t, Plastic, q.Category)
	assert.Equal(t, Good, q.Quality)
	assert.Equal(t, 12.0, q.BaseRate)
	assert.Equal(t, 1.2, q.Multiplier)
	assert.Equal(t, int64(144), q.Payment)
	assert.Equal(t, int64(144), q.Tokens)
}

func TestRateCard(t *testing.T) {
	card := RateCard()
	require.Len(t, card, len(Categories()))

	assert.Equal(t, Plastic, card[0].Category)
	assert.Equal(t, 12.0, card[0].PerKg)
	assert.Equal(t, ComputePayment(Plastic, 1, Good), card[0].ByTier[Good])

	for _, r := range card {
		assert.Len(t, r.ByTier, len(Tiers()))
		if r.Category == Metal {
			assert.Equal(t, int64(25), r.ByTier[Fair])
			assert.Equal(t, int64(35), r.ByTier[Excellent])
		}
	}
}
