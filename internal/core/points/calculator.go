package points

import (
	"math"

	"github.com/faturai/faturai-backend/internal/models"
)

// Calculate returns the loyalty points earned for a charge of amountCents on
// the card, optionally boosted by the category bonus of the card's tier.
// Deterministic and side-effect free; never negative.
//
//	points = floor(amountCents / 100 * conversion_rate * bonus)
func Calculate(amountCents int64, card *models.Card, categoryCode string) int64 {
	if card == nil || amountCents <= 0 {
		return 0
	}

	rate := card.ConversionRate * CategoryBonus(card.Tier, categoryCode)
	points := int64(math.Floor(float64(amountCents) / 100.0 * rate))
	if points < 0 {
		return 0
	}
	return points
}

// CalculateWithRate is Calculate with an explicit conversion rate, used when
// comparing the same spend across reward-program links that carry their own
// rates.
func CalculateWithRate(amountCents int64, rate float64, tier, categoryCode string) int64 {
	if amountCents <= 0 {
		return 0
	}
	points := int64(math.Floor(float64(amountCents) / 100.0 * rate * CategoryBonus(tier, categoryCode)))
	if points < 0 {
		return 0
	}
	return points
}
