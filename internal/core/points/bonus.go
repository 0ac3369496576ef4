package points

import "strings"

// tierBonuses maps a card product tier to category-specific multipliers on
// the base conversion rate. Missing tier or category means multiplier 1.0.
var tierBonuses = map[string]map[string]float64{
	"gold": {
		"SUPER": 1.5,
		"COMB":  1.5,
	},
	"platinum": {
		"SUPER":  1.5,
		"REST":   2.0,
		"VIAGEM": 2.0,
	},
	"black": {
		"SUPER":  2.0,
		"REST":   2.0,
		"VIAGEM": 3.0,
		"LAZER":  2.0,
	},
}

// CategoryBonus returns the multiplier for spend of categoryCode on a card
// of the given tier. Defaults to 1.0 when there is no match.
func CategoryBonus(tier, categoryCode string) float64 {
	bonuses, ok := tierBonuses[strings.ToLower(strings.TrimSpace(tier))]
	if !ok {
		return 1.0
	}
	bonus, ok := bonuses[strings.ToUpper(strings.TrimSpace(categoryCode))]
	if !ok {
		return 1.0
	}
	return bonus
}
