// Package valuation holds the one copy of the waste payout formula. The
// collector earnings view, the admin approval queue and the settlement path
// all go through ComputePayment so their figures cannot drift apart.
package valuation

import "math"

// ComputePayment returns the collector payout in whole rupees:
// round(baseRate × weightKg × qualityMultiplier).
func ComputePayment(c WasteCategory, weightKg float64, t QualityTier) int64 {
	w := sanitizeWeight(weightKg)
	if w == 0 {
		return 0
	}
	return int64(math.Round(BaseRate(c) * w * QualityMultiplier(t)))
}

// EstimateTokens returns the EcoTokens a submission is worth. One token is
// awarded per rupee of material value, so it matches ComputePayment.
func EstimateTokens(c WasteCategory, weightKg float64, t QualityTier) int64 {
	return ComputePayment(c, weightKg, t)
}

// Quote bundles both figures for a submission.
type Quote struct {
	Category   WasteCategory `json:"type"`
	WeightKg   float64       `json:"weight"`
	Quality    QualityTier   `json:"quality"`
	BaseRate   float64       `json:"baseRate"`
	Multiplier float64       `json:"multiplier"`
	Payment    int64         `json:"payment"`
	Tokens     int64         `json:"tokens"`
}

func Estimate(c WasteCategory, weightKg float64, t QualityTier) Quote {
	c = ParseCategory(string(c))
	t = ParseTier(string(t))
	return Quote{
		Category:   c,
		WeightKg:   sanitizeWeight(weightKg),
		Quality:    t,
		BaseRate:   BaseRate(c),
		Multiplier: QualityMultiplier(t),
		Payment:    ComputePayment(c, weightKg, t),
		Tokens:     EstimateTokens(c, weightKg, t),
	}
}

// negative and non-finite weights are rejected upstream; here they count as zero
func sanitizeWeight(w float64) float64 {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return 0
	}
	return w
}
