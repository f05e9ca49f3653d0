package valuation

import "strings"

type WasteCategory string

const (
	Plastic    WasteCategory = "plastic"
	Paper      WasteCategory = "paper"
	Metal      WasteCategory = "metal"
	Glass      WasteCategory = "glass"
	Electronic WasteCategory = "electronic"
	Organic    WasteCategory = "organic"
	Other      WasteCategory = "other"
)

type QualityTier string

const (
	Excellent QualityTier = "excellent"
	Good      QualityTier = "good"
	Fair      QualityTier = "fair"
	Poor      QualityTier = "poor"
)

// INR per kilogram.
var baseRates = map[WasteCategory]float64{
	Plastic:    12,
	Paper:      8,
	Metal:      25,
	Glass:      3,
	Electronic: 35,
	Organic:    2,
	Other:      5,
}

var qualityMultipliers = map[QualityTier]float64{
	Excellent: 1.4,
	Good:      1.2,
	Fair:      1.0,
	Poor:      0.7,
}

// Categories lists every known category in display order.
func Categories() []WasteCategory {
	return []WasteCategory{Plastic, Paper, Metal, Glass, Electronic, Organic, Other}
}

func Tiers() []QualityTier {
	return []QualityTier{Excellent, Good, Fair, Poor}
}

// ParseCategory normalizes free-form input. Unknown values map to Other.
func ParseCategory(s string) WasteCategory {
	c := WasteCategory(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := baseRates[c]; ok {
		return c
	}
	return Other
}

// ParseTier normalizes free-form input. Empty or unknown values map to Fair.
func ParseTier(s string) QualityTier {
	t := QualityTier(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := qualityMultipliers[t]; ok {
		return t
	}
	return Fair
}

func (c WasteCategory) Valid() bool {
	_, ok := baseRates[c]
	return ok
}

func (t QualityTier) Valid() bool {
	_, ok := qualityMultipliers[t]
	return ok
}

// Rate is one category's row of the published rate card.
type Rate struct {
	Category WasteCategory         `json:"type"`
	PerKg    float64               `json:"perKg"`
	ByTier   map[QualityTier]int64 `json:"byTier"`
}

// RateCard prices one kilogram of every category at every tier, using the
// same rounding as ComputePayment.
func RateCard() []Rate {
	card := make([]Rate, 0, len(baseRates))
	for _, c := range Categories() {
		r := Rate{Category: c, PerKg: baseRates[c], ByTier: make(map[QualityTier]int64, len(qualityMultipliers))}
		for _, t := range Tiers() {
			r.ByTier[t] = ComputePayment(c, 1, t)
		}
		card = append(card, r)
	}
	return card
}

// BaseRate never fails: unknown categories use the Other rate.
func BaseRate(c WasteCategory) float64 {
	return baseRates[ParseCategory(string(c))]
}

// QualityMultiplier never fails: unknown or missing tiers use Fair.
func QualityMultiplier(t QualityTier) float64 {
	return qualityMultipliers[ParseTier(string(t))]
}
